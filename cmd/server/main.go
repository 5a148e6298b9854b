package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"albayan/internal/config"
	"albayan/internal/email/noop"
	"albayan/internal/email/ses"
	"albayan/internal/engine"
	"albayan/internal/engine/odf"
	"albayan/internal/engine/soffice"
	"albayan/internal/fill"
	"albayan/internal/handler"
	"albayan/internal/logger"
	"albayan/internal/port"
	"albayan/internal/repository/postgres"
	"albayan/internal/router"
	"albayan/internal/service"
	s3storage "albayan/internal/storage/s3"
	"albayan/internal/validator"
)

const shutdownGrace = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	defRepo := postgres.NewReportDefinitionRepo(db)
	reqRepo := postgres.NewReportRequestRepo(db)

	// Initialize storage
	storage, err := s3storage.NewClient(ctx, &cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	emailSender, err := newEmailSender(ctx, &cfg.Email, zlog)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	payloads, err := validator.New()
	if err != nil {
		return fmt.Errorf("failed to compile report schemas: %w", err)
	}

	for _, dir := range []string{cfg.Storage.OutputDir, cfg.Storage.ScratchDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	// Document engine: created on first use, then shared.
	converter := soffice.NewConverter(cfg.Engine.ConverterBinary, cfg.Engine.ConverterTimeout, zlog)
	handle := engine.NewHandle(func(ctx context.Context) (port.DocumentEngine, error) {
		if err := converter.Probe(ctx); err != nil {
			return nil, err
		}
		return odf.NewEngine(converter, zlog), nil
	}, cfg.Engine.MaxSessions, zlog)
	defer func() { _ = handle.Close() }()

	filters := fill.Filters{PDF: cfg.Export.PDFFilter, Native: cfg.Export.NativeFilter}
	orchestrator := fill.NewOrchestrator(filters, zlog)

	// Initialize services
	var authSvc service.AuthService
	if cfg.Auth.Enabled() {
		authSvc = service.NewAuthService(cfg.Auth)
	} else {
		zlog.Warn("API authentication disabled; set ALBAYAN_AUTH_SECRET to enable it")
	}
	definitionSvc := service.NewReportDefinitionService(defRepo, storage, &cfg.S3, zlog)
	requestSvc := service.NewReportRequestService(defRepo, reqRepo, storage, payloads, &cfg.S3, zlog)
	job := service.NewReportJob(defRepo, reqRepo, storage, handle, orchestrator, emailSender,
		service.NewReportJobConfig(cfg), zlog)

	worker := service.NewReportQueueWorker(reqRepo, job, service.ReportQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		Concurrency:  cfg.Queue.Concurrency,
		ClaimLease:   cfg.Queue.ClaimLease,
		JobTimeout:   cfg.Queue.JobTimeout,
		MaxAttempts:  cfg.Queue.MaxAttempts,
	}, zlog)

	// Initialize handlers
	definitionH := handler.NewReportDefinitionHandler(definitionSvc, zlog)
	requestH := handler.NewReportRequestHandler(requestSvc, definitionSvc, zlog)
	healthH := handler.NewHealthHandler(db, handle)

	r := router.Setup(zlog, authSvc, cfg.CORS.AllowedOrigins, cfg.Storage.OutputDir, definitionH, requestH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	errChan := make(chan error, 1)
	go func() {
		zlog.Info("server starting", zap.String("addr", cfg.Server.Port), zap.String("environment", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var serveErr error
	select {
	case serveErr = <-errChan:
		stop()
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("http shutdown", zap.Error(err))
	}
	wg.Wait()

	if serveErr != nil {
		return fmt.Errorf("server failed: %w", serveErr)
	}
	return nil
}

func newEmailSender(ctx context.Context, cfg *config.EmailConfig, zlog *zap.Logger) (port.EmailSender, error) {
	switch cfg.Provider {
	case "ses":
		return ses.NewSESSender(ctx, cfg.Region, cfg.FromAddress, cfg.FromName, cfg.FrontendURL)
	case "", "noop":
		return noop.NewNoopSender(zlog), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
