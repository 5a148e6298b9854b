package port

import (
	"context"

	"albayan/internal/domain"
)

// ReportStatusEmail is the content of a report completion notice.
type ReportStatusEmail struct {
	To        string
	RequestID string
	Template  string
	Status    domain.ProcessingStatus
	Error     string
	Links     []string
}

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendReportStatus(ctx context.Context, msg ReportStatusEmail) error
}
