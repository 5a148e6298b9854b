package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"albayan/internal/domain"
	"albayan/internal/port"
)

// ReportProcessor runs one claimed report request.
type ReportProcessor interface {
	Process(ctx context.Context, req *domain.ReportRequest) domain.JobOutcome
}

// ReportQueueConfig holds settings for the report queue worker.
type ReportQueueConfig struct {
	PollInterval time.Duration
	Concurrency  int
	ClaimLease   time.Duration
	JobTimeout   time.Duration
	// MaxAttempts caps how often one request is claimed.
	MaxAttempts int
}

// ReportQueueWorker polls for pending report requests and dispatches them.
type ReportQueueWorker struct {
	reqRepo   port.ReportRequestRepository
	processor ReportProcessor
	cfg       ReportQueueConfig
	log       *zap.Logger
	wg        sync.WaitGroup
}

// NewReportQueueWorker creates a new ReportQueueWorker.
func NewReportQueueWorker(reqRepo port.ReportRequestRepository, processor ReportProcessor, cfg ReportQueueConfig, log *zap.Logger) *ReportQueueWorker {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &ReportQueueWorker{
		reqRepo:   reqRepo,
		processor: processor,
		cfg:       cfg,
		log:       log.Named("report_queue"),
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight jobs have finished.
func (w *ReportQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	w.log.Info("report queue worker started",
		zap.Duration("poll", w.cfg.PollInterval),
		zap.Int("concurrency", w.cfg.Concurrency),
		zap.Duration("claim_lease", w.cfg.ClaimLease),
		zap.Int("max_attempts", w.cfg.MaxAttempts))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("report queue worker shutting down, waiting for in-flight jobs")
			w.wg.Wait()
			w.log.Info("report queue worker stopped")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			reqs, err := w.reqRepo.ClaimPending(ctx, available, w.cfg.ClaimLease, w.cfg.MaxAttempts)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				w.log.Error("claiming pending requests failed", zap.Error(err))
				continue
			}

			for i := range reqs {
				req := reqs[i]

				sem <- struct{}{}
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }()

					// In-flight jobs outlive the poll context so shutdown
					// never leaves a request half exported.
					jobCtx, cancel := context.WithTimeout(context.Background(), w.cfg.JobTimeout)
					defer cancel()

					w.log.Debug("dispatching report request",
						zap.String("request_id", req.ID.String()), zap.Int("attempt", req.Attempts))
					w.processor.Process(jobCtx, &req)
				}()
			}
		}
	}
}
