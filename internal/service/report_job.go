package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"albayan/internal/config"
	"albayan/internal/domain"
	"albayan/internal/engine"
	"albayan/internal/fill"
	"albayan/internal/port"
)

// defaultFinishTimeout bounds the uploads and writes that close out a job.
const defaultFinishTimeout = 2 * time.Minute

// ReportJobConfig holds the locations a job reads from and writes to.
type ReportJobConfig struct {
	Bucket          string
	OutputDir       string
	ScratchDir      string
	KeepScratch     bool
	PublicOutputURL string
	// FinishTimeout bounds storing artifacts, recording the status and
	// notifying, which run even when the job context has expired.
	FinishTimeout time.Duration
}

// NewReportJobConfig builds a ReportJobConfig from application config.
func NewReportJobConfig(cfg *config.Config) ReportJobConfig {
	return ReportJobConfig{
		Bucket:          cfg.S3.Bucket,
		OutputDir:       cfg.Storage.OutputDir,
		ScratchDir:      cfg.Storage.ScratchDir,
		KeepScratch:     cfg.Storage.KeepScratch,
		PublicOutputURL: cfg.Storage.PublicOutputURL,
	}
}

// ReportJob runs one report request end to end: it fetches the template,
// fills and exports it, stores the artifacts and records the status.
type ReportJob struct {
	defRepo      port.ReportDefinitionRepository
	reqRepo      port.ReportRequestRepository
	storage      port.ObjectStorage
	engine       *engine.Handle
	orchestrator *fill.Orchestrator
	recorder     *StatusRecorder
	email        port.EmailSender
	cfg          ReportJobConfig
	log          *zap.Logger
}

// NewReportJob creates a new ReportJob.
func NewReportJob(
	defRepo port.ReportDefinitionRepository,
	reqRepo port.ReportRequestRepository,
	storage port.ObjectStorage,
	handle *engine.Handle,
	orchestrator *fill.Orchestrator,
	email port.EmailSender,
	cfg ReportJobConfig,
	log *zap.Logger,
) *ReportJob {
	return &ReportJob{
		defRepo:      defRepo,
		reqRepo:      reqRepo,
		storage:      storage,
		engine:       handle,
		orchestrator: orchestrator,
		recorder:     NewStatusRecorder(reqRepo, log),
		email:        email,
		cfg:          cfg,
		log:          log.Named("report_job"),
	}
}

// Process runs req and returns its final outcome. The status is recorded
// before Process returns.
func (j *ReportJob) Process(ctx context.Context, req *domain.ReportRequest) domain.JobOutcome {
	log := j.log.With(zap.String("request_id", req.ID.String()), zap.Int("attempt", req.Attempts))
	log.Info("report job started", zap.String("output_format", string(req.OutputFormat)))

	def, outcome := j.run(ctx, req, log)

	// The request must leave pending even when ctx ran out during the fill.
	timeout := j.cfg.FinishTimeout
	if timeout <= 0 {
		timeout = defaultFinishTimeout
	}
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if outcome.Success {
		if err := j.storeArtifacts(finishCtx, req, &outcome, log); err != nil {
			log.Error("storing artifacts failed", zap.Error(err))
			outcome.Success = false
			outcome.Error = err.Error()
		}
	}

	j.recorder.Record(finishCtx, req.ID, outcome)
	j.notify(finishCtx, req, def, outcome, log)

	log.Info("report job finished", zap.Bool("success", outcome.Success), zap.Int("artifacts", len(outcome.Artifacts)))
	return outcome
}

func (j *ReportJob) run(ctx context.Context, req *domain.ReportRequest, log *zap.Logger) (*domain.ReportDefinition, domain.JobOutcome) {
	def, err := j.defRepo.GetByID(ctx, req.DefinitionID)
	if err != nil {
		log.Warn("resolving report definition failed", zap.Error(err))
		return nil, domain.FailedOutcome(err)
	}

	fillReq, err := domain.ParseFillRequest(req.ReportData)
	if err != nil {
		return def, domain.FailedOutcome(err)
	}
	formats := req.OutputFormat.ExportFormats()
	if len(formats) == 0 {
		return def, domain.FailedOutcome(domain.ErrInvalidOutputFormat)
	}

	scratch := filepath.Join(j.cfg.ScratchDir, req.ID.String())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return def, domain.FailedOutcome(fmt.Errorf("creating scratch dir: %w", err))
	}
	defer j.cleanup(scratch, log)

	templatePath := filepath.Join(scratch, "template.odt")
	if err := j.download(ctx, def, templatePath); err != nil {
		return def, domain.FailedOutcome(err)
	}

	session, err := j.engine.Acquire(ctx)
	if err != nil {
		return def, domain.FailedOutcome(err)
	}
	defer session.Release()

	doc, err := session.Open(ctx, templatePath)
	if err != nil {
		log.Error("opening template failed", zap.String("template", def.TemplateFile), zap.Error(err))
		return def, domain.FailedOutcome(fmt.Errorf("opening template: %w", err))
	}

	return def, j.orchestrator.Run(ctx, doc, fill.Job{
		ID:         req.ID.String(),
		Request:    fillReq,
		Formats:    formats,
		OutputDir:  j.cfg.OutputDir,
		ScratchDir: scratch,
	})
}

func (j *ReportJob) download(ctx context.Context, def *domain.ReportDefinition, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating template file: %w", err)
	}
	if err := j.storage.Download(ctx, def.S3Bucket, def.S3Key, f); err != nil {
		f.Close()
		return fmt.Errorf("downloading template %s: %w", def.S3Key, err)
	}
	return f.Close()
}

// storeArtifacts uploads every exported file and persists the list.
func (j *ReportJob) storeArtifacts(ctx context.Context, req *domain.ReportRequest, outcome *domain.JobOutcome, log *zap.Logger) error {
	stored := make([]domain.StoredArtifact, 0, len(outcome.Artifacts))
	for _, a := range outcome.Artifacts {
		name := filepath.Base(a.Path)
		key := fmt.Sprintf("reports/%s/%s", req.ID, name)
		if err := j.upload(ctx, a.Path, key); err != nil {
			return err
		}
		stored = append(stored, domain.StoredArtifact{
			Format:   a.Format,
			Filter:   a.Filter,
			FileName: name,
			S3Key:    key,
			URL:      j.cfg.PublicOutputURL + "/" + name,
		})
		log.Debug("artifact stored", zap.String("s3_key", key))
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encoding artifacts: %w", err)
	}
	if err := j.reqRepo.SetArtifacts(ctx, req.ID, raw); err != nil {
		return fmt.Errorf("persisting artifacts: %w", err)
	}
	return nil
}

func (j *ReportJob) upload(ctx context.Context, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening artifact: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat artifact: %w", err)
	}
	_, err = j.storage.Upload(ctx, port.UploadInput{
		Bucket:      j.cfg.Bucket,
		Key:         key,
		Body:        f,
		ContentType: contentTypeFor(path),
		Size:        info.Size(),
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrUploadFailed, key, err)
	}
	return nil
}

func (j *ReportJob) notify(ctx context.Context, req *domain.ReportRequest, def *domain.ReportDefinition, outcome domain.JobOutcome, log *zap.Logger) {
	if req.NotifyEmail == "" || j.email == nil {
		return
	}
	msg := port.ReportStatusEmail{
		To:        req.NotifyEmail,
		RequestID: req.ID.String(),
		Status:    outcome.Status(),
		Error:     outcome.Error,
	}
	if def != nil {
		msg.Template = def.Name
	}
	if outcome.Success {
		for _, a := range outcome.Artifacts {
			msg.Links = append(msg.Links, j.cfg.PublicOutputURL+"/"+filepath.Base(a.Path))
		}
	}
	if err := j.email.SendReportStatus(ctx, msg); err != nil {
		log.Warn("sending report notification failed", zap.String("to", req.NotifyEmail), zap.Error(err))
	}
}

func (j *ReportJob) cleanup(scratch string, log *zap.Logger) {
	if j.cfg.KeepScratch {
		return
	}
	if err := os.RemoveAll(scratch); err != nil {
		log.Warn("removing scratch dir failed", zap.String("dir", scratch), zap.Error(err))
	}
}

func contentTypeFor(path string) string {
	switch filepath.Ext(path) {
	case ".pdf":
		return "application/pdf"
	case ".odt":
		return domain.ODTMimeType
	default:
		return "application/octet-stream"
	}
}
