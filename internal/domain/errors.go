package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrDefinitionNotFound   = errors.New("report definition not found")
	ErrRequestNotFound      = errors.New("report request not found")
	ErrUnsupportedTemplate  = errors.New("unsupported template type")
	ErrTemplateTooLarge     = errors.New("template exceeds maximum allowed size")
	ErrInvalidOutputFormat  = errors.New("invalid report output format")
	ErrInvalidReportData    = errors.New("report data does not match expected format")
	ErrStatusTransition     = errors.New("invalid processing status transition")
	ErrRequestNotCompleted  = errors.New("report request has not completed")
	ErrUploadFailed         = errors.New("file upload to storage failed")
	ErrEngineUnavailable    = errors.New("document engine unavailable")
	ErrUnsupportedOperation = errors.New("operation not supported by document")
)

// ValidationError reports a report payload that failed shape checks before
// any document was opened.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return ErrInvalidReportData.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidReportData.Error(), strings.Join(e.Details, "; "))
}

// Unwrap lets errors.Is match ErrInvalidReportData.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidReportData
}
