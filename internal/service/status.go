package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"albayan/internal/domain"
)

// StatusSink persists a request's terminal status.
type StatusSink interface {
	SetStatus(ctx context.Context, requestID uuid.UUID, status domain.ProcessingStatus, processingError string) error
}

// StatusRecorder moves a request out of pending once its job has finished.
type StatusRecorder struct {
	sink StatusSink
	log  *zap.Logger
}

// NewStatusRecorder creates a new StatusRecorder.
func NewStatusRecorder(sink StatusSink, log *zap.Logger) *StatusRecorder {
	return &StatusRecorder{sink: sink, log: log.Named("status")}
}

// Record writes the status implied by outcome. A failed write is logged and
// reported through the return value only; it never changes the outcome.
func (r *StatusRecorder) Record(ctx context.Context, requestID uuid.UUID, outcome domain.JobOutcome) bool {
	status := outcome.Status()
	if err := r.sink.SetStatus(ctx, requestID, status, outcome.Error); err != nil {
		r.log.Warn("recording job status failed",
			zap.String("request_id", requestID.String()),
			zap.String("status", string(status)),
			zap.Error(err))
		return false
	}
	r.log.Info("job status recorded",
		zap.String("request_id", requestID.String()),
		zap.String("status", string(status)))
	return true
}
