package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"albayan/internal/config"
	"albayan/internal/domain"
	"albayan/internal/engine/odf"
	"albayan/internal/port"
)

// TemplateUpload is an uploaded template file.
type TemplateUpload struct {
	FileName string
	Size     int64
	Body     io.Reader
}

// CreateDefinitionInput is the DTO for report definition creation.
type CreateDefinitionInput struct {
	Name             string
	TemplateFileType string
	Template         TemplateUpload
}

// UpdateDefinitionInput is the DTO for report definition updates. Nil
// fields are left unchanged.
type UpdateDefinitionInput struct {
	Name     *string
	Template *TemplateUpload
}

// ReportDefinitionService defines the report template management contract.
type ReportDefinitionService interface {
	Create(ctx context.Context, input CreateDefinitionInput) (*domain.ReportDefinition, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReportDefinition, error)
	List(ctx context.Context, offset, limit int) ([]domain.ReportDefinition, int, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateDefinitionInput) (*domain.ReportDefinition, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type reportDefinitionService struct {
	defRepo port.ReportDefinitionRepository
	storage port.ObjectStorage
	cfg     *config.S3Config
	log     *zap.Logger
}

// NewReportDefinitionService creates a new ReportDefinitionService implementation.
func NewReportDefinitionService(
	defRepo port.ReportDefinitionRepository,
	storage port.ObjectStorage,
	cfg *config.S3Config,
	log *zap.Logger,
) ReportDefinitionService {
	return &reportDefinitionService{
		defRepo: defRepo,
		storage: storage,
		cfg:     cfg,
		log:     log.Named("report_definitions"),
	}
}

func (s *reportDefinitionService) Create(ctx context.Context, input CreateDefinitionInput) (*domain.ReportDefinition, error) {
	fileType := domain.TemplateFileType(strings.ToLower(strings.TrimSpace(input.TemplateFileType)))
	if fileType == "" {
		fileType = domain.TemplateFileTypeODF
	}
	if fileType != domain.TemplateFileTypeODF {
		return nil, domain.ErrUnsupportedTemplate
	}

	raw, err := s.readTemplate(input.Template)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	def := &domain.ReportDefinition{
		ID:               id,
		Name:             definitionName(input.Name, input.Template.FileName),
		TemplateFileType: fileType,
		TemplateFile:     filepath.Base(input.Template.FileName),
		S3Bucket:         s.cfg.Bucket,
		S3Key:            templateKey(id, input.Template.FileName),
		FileSize:         int64(len(raw)),
	}
	if err := s.upload(ctx, def, raw); err != nil {
		return nil, err
	}

	if err := s.defRepo.Create(ctx, def); err != nil {
		s.log.Error("persisting report definition failed", zap.String("definition_id", id.String()), zap.Error(err))
		if delErr := s.storage.Delete(ctx, def.S3Bucket, def.S3Key); delErr != nil {
			s.log.Warn("removing orphaned template failed", zap.String("s3_key", def.S3Key), zap.Error(delErr))
		}
		return nil, fmt.Errorf("creating report definition: %w", err)
	}

	s.log.Info("report definition created",
		zap.String("definition_id", id.String()), zap.String("template", def.TemplateFile), zap.Int64("size", def.FileSize))
	return def, nil
}

func (s *reportDefinitionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReportDefinition, error) {
	return s.defRepo.GetByID(ctx, id)
}

func (s *reportDefinitionService) List(ctx context.Context, offset, limit int) ([]domain.ReportDefinition, int, error) {
	return s.defRepo.List(ctx, offset, limit)
}

func (s *reportDefinitionService) Update(ctx context.Context, id uuid.UUID, input UpdateDefinitionInput) (*domain.ReportDefinition, error) {
	def, err := s.defRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			def.Name = name
		}
	}

	var oldBucket, oldKey string
	if input.Template != nil {
		raw, err := s.readTemplate(*input.Template)
		if err != nil {
			return nil, err
		}
		oldBucket, oldKey = def.S3Bucket, def.S3Key
		def.TemplateFile = filepath.Base(input.Template.FileName)
		def.S3Bucket = s.cfg.Bucket
		def.S3Key = templateKey(uuid.New(), input.Template.FileName)
		def.FileSize = int64(len(raw))
		if err := s.upload(ctx, def, raw); err != nil {
			return nil, err
		}
	}

	if err := s.defRepo.Update(ctx, def); err != nil {
		return nil, err
	}
	if oldKey != "" && oldKey != def.S3Key {
		if err := s.storage.Delete(ctx, oldBucket, oldKey); err != nil {
			s.log.Warn("removing replaced template failed", zap.String("s3_key", oldKey), zap.Error(err))
		}
	}
	return def, nil
}

func (s *reportDefinitionService) Delete(ctx context.Context, id uuid.UUID) error {
	def, err := s.defRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.defRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, def.S3Bucket, def.S3Key); err != nil {
		s.log.Warn("removing template object failed", zap.String("s3_key", def.S3Key), zap.Error(err))
	}
	s.log.Info("report definition deleted", zap.String("definition_id", id.String()))
	return nil
}

// readTemplate checks the extension and size of an upload and that it is an
// OpenDocument Text package.
func (s *reportDefinitionService) readTemplate(upload TemplateUpload) ([]byte, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(upload.FileName), "."))
	if _, ok := domain.AllowedTemplateExtensions[ext]; !ok {
		return nil, domain.ErrUnsupportedTemplate
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if upload.Size > maxBytes {
		return nil, domain.ErrTemplateTooLarge
	}
	raw, err := io.ReadAll(io.LimitReader(upload.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	if int64(len(raw)) > maxBytes {
		return nil, domain.ErrTemplateTooLarge
	}
	if !odf.IsTextPackage(raw) {
		return nil, domain.ErrUnsupportedTemplate
	}
	return raw, nil
}

func (s *reportDefinitionService) upload(ctx context.Context, def *domain.ReportDefinition, raw []byte) error {
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      def.S3Bucket,
		Key:         def.S3Key,
		Body:        bytes.NewReader(raw),
		ContentType: domain.ODTMimeType,
		Size:        int64(len(raw)),
	})
	if err != nil {
		s.log.Error("template upload failed", zap.String("s3_key", def.S3Key), zap.Error(err))
		return domain.ErrUploadFailed
	}
	return nil
}

func templateKey(id uuid.UUID, fileName string) string {
	return fmt.Sprintf("templates/%s/%s", id, filepath.Base(fileName))
}

func definitionName(name, fileName string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
