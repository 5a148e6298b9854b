package fill

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"albayan/internal/domain"
	"albayan/internal/port"
)

// State is a step of the fill pipeline.
type State string

const (
	StateOpened             State = "OPENED"
	StatePlaceholdersFilled State = "PLACEHOLDERS_FILLED"
	StateVariablesFilled    State = "VARIABLES_FILLED"
	StateImagesFilled       State = "IMAGES_FILLED"
	StateTablesFilled       State = "TABLES_FILLED"
	StateRecomputed         State = "RECOMPUTED"
	StateExported           State = "EXPORTED"
	StateFailed             State = "FAILED"
)

// FatalError aborts a job. Phase is the last state reached before the failure.
type FatalError struct {
	Phase State
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fill failed after %s: %v", e.Phase, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Job is one fill run against an opened document.
type Job struct {
	ID         string
	Request    *domain.FillRequest
	Formats    []domain.ExportFormat
	OutputDir  string
	ScratchDir string
}

// Orchestrator runs the fill phases in order against one document and
// exports the result.
type Orchestrator struct {
	filters Filters
	log     *zap.Logger
	onState func(jobID string, s State)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStateHook registers fn to observe every state the pipeline enters.
func WithStateHook(fn func(jobID string, s State)) Option {
	return func(o *Orchestrator) { o.onState = fn }
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(filters Filters, log *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{filters: filters, log: log.Named("fill")}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run fills and exports doc, then closes it. It never panics and never
// retries; the returned outcome is final.
func (o *Orchestrator) Run(ctx context.Context, doc port.Document, job Job) domain.JobOutcome {
	log := o.log.With(zap.String("job_id", job.ID))

	outcome, err := o.run(ctx, doc, job, log)
	if err != nil {
		o.enter(job.ID, StateFailed, log)
		log.Error("fill job failed", zap.Error(err))
		outcome.Success = false
		outcome.Error = err.Error()
	}

	o.closeDocument(doc, log)
	return outcome
}

func (o *Orchestrator) run(ctx context.Context, doc port.Document, job Job, log *zap.Logger) (outcome domain.JobOutcome, err error) {
	state := StateOpened
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic during fill", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			err = &FatalError{Phase: state, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	o.enter(job.ID, state, log)
	req := job.Request
	if req == nil {
		req = &domain.FillRequest{}
	}

	if len(req.Placeholders) > 0 {
		n := FillPlaceholders(doc, req.Placeholders, log)
		log.Debug("placeholders filled", zap.Int("replacements", n))
	}
	state = StatePlaceholdersFilled
	o.enter(job.ID, state, log)

	if len(req.Variables) > 0 {
		n := FillVariables(doc, req.Variables, log)
		log.Debug("variables filled", zap.Int("flattened", n))
	}
	state = StateVariablesFilled
	o.enter(job.ID, state, log)

	if len(req.Images) > 0 {
		n := FillImages(doc, req.Images, job.ScratchDir, log)
		log.Debug("images filled", zap.Int("replaced", n))
	}
	state = StateImagesFilled
	o.enter(job.ID, state, log)

	if len(req.Tables) > 0 {
		if err := FillTables(doc, req.Tables, log); err != nil {
			return outcome, &FatalError{Phase: state, Err: err}
		}
	}
	state = StateTablesFilled
	o.enter(job.ID, state, log)

	Recompute(doc, log)
	state = StateRecomputed
	o.enter(job.ID, state, log)

	targets, err := ResolveTargets(job.ID, job.OutputDir, job.Formats, o.filters)
	if err != nil {
		return outcome, &FatalError{Phase: state, Err: err}
	}
	artifacts, err := Export(ctx, doc, targets, log)
	outcome.Artifacts = artifacts
	if err != nil {
		return outcome, &FatalError{Phase: state, Err: err}
	}

	state = StateExported
	o.enter(job.ID, state, log)
	outcome.Success = true
	return outcome, nil
}

func (o *Orchestrator) enter(jobID string, s State, log *zap.Logger) {
	log.Debug("fill state", zap.String("state", string(s)))
	if o.onState != nil {
		o.onState(jobID, s)
	}
}

func (o *Orchestrator) closeDocument(doc port.Document, log *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic closing document", zap.Any("panic", r))
		}
	}()
	if err := doc.Close(); err != nil {
		log.Warn("closing document failed", zap.Error(err))
	}
}
