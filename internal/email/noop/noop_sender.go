package noop

import (
	"context"

	"go.uber.org/zap"

	"albayan/internal/port"
)

type noopSender struct {
	log *zap.Logger
}

// NewNoopSender creates an EmailSender that only logs what it would send.
func NewNoopSender(log *zap.Logger) port.EmailSender {
	return &noopSender{log: log.Named("email")}
}

func (s *noopSender) SendReportStatus(_ context.Context, msg port.ReportStatusEmail) error {
	s.log.Info("[NOOP EMAIL] report status",
		zap.String("to", msg.To),
		zap.String("request_id", msg.RequestID),
		zap.String("status", string(msg.Status)),
		zap.Strings("links", msg.Links),
	)
	return nil
}
