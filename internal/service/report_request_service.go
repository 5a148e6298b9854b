package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"albayan/internal/config"
	"albayan/internal/domain"
	"albayan/internal/port"
)

// PayloadValidator checks report request bodies and fill payloads.
type PayloadValidator interface {
	ValidateIssueRequest(data []byte) error
	ValidateReportData(data []byte) error
}

// ReportRequestView is a report request with its artifacts decoded and,
// once stored, reachable through presigned URLs.
type ReportRequestView struct {
	domain.ReportRequest
	Artifacts []domain.StoredArtifact `json:"artifacts"`
}

// ReportRequestService defines the report request contract.
type ReportRequestService interface {
	Issue(ctx context.Context, definitionID uuid.UUID, body []byte) (*domain.ReportRequest, error)
	GetByID(ctx context.Context, definitionID, requestID uuid.UUID) (*ReportRequestView, error)
	ListByDefinition(ctx context.Context, definitionID uuid.UUID, offset, limit int) ([]domain.ReportRequest, int, error)
	Delete(ctx context.Context, definitionID, requestID uuid.UUID) error
}

type issueBody struct {
	ReportOutputFormat string          `json:"report_output_format"`
	ReportData         json.RawMessage `json:"report_data"`
	NotifyEmail        string          `json:"notify_email"`
}

type reportRequestService struct {
	defRepo   port.ReportDefinitionRepository
	reqRepo   port.ReportRequestRepository
	storage   port.ObjectStorage
	validator PayloadValidator
	cfg       *config.S3Config
	log       *zap.Logger
}

// NewReportRequestService creates a new ReportRequestService implementation.
func NewReportRequestService(
	defRepo port.ReportDefinitionRepository,
	reqRepo port.ReportRequestRepository,
	storage port.ObjectStorage,
	validator PayloadValidator,
	cfg *config.S3Config,
	log *zap.Logger,
) ReportRequestService {
	return &reportRequestService{
		defRepo:   defRepo,
		reqRepo:   reqRepo,
		storage:   storage,
		validator: validator,
		cfg:       cfg,
		log:       log.Named("report_requests"),
	}
}

// Issue validates body and queues a pending request. Nothing is opened here;
// the queue worker picks the request up.
func (s *reportRequestService) Issue(ctx context.Context, definitionID uuid.UUID, body []byte) (*domain.ReportRequest, error) {
	if err := s.validator.ValidateIssueRequest(body); err != nil {
		return nil, err
	}
	var in issueBody
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, &domain.ValidationError{Details: []string{err.Error()}}
	}
	format, err := domain.ParseOutputFormat(in.ReportOutputFormat)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateReportData(in.ReportData); err != nil {
		return nil, err
	}

	if _, err := s.defRepo.GetByID(ctx, definitionID); err != nil {
		return nil, err
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, in.ReportData); err != nil {
		return nil, &domain.ValidationError{Details: []string{err.Error()}}
	}

	req := &domain.ReportRequest{
		ID:               uuid.New(),
		DefinitionID:     definitionID,
		OutputFormat:     format,
		ReportData:       compact.Bytes(),
		ProcessingStatus: domain.StatusPending,
		NotifyEmail:      strings.TrimSpace(in.NotifyEmail),
		Artifacts:        json.RawMessage("[]"),
	}
	if err := s.reqRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("creating report request: %w", err)
	}

	s.log.Info("report request queued",
		zap.String("request_id", req.ID.String()),
		zap.String("definition_id", definitionID.String()),
		zap.String("output_format", string(format)))
	return req, nil
}

func (s *reportRequestService) GetByID(ctx context.Context, definitionID, requestID uuid.UUID) (*ReportRequestView, error) {
	req, err := s.reqRepo.GetByID(ctx, definitionID, requestID)
	if err != nil {
		return nil, err
	}
	artifacts, err := req.StoredArtifacts()
	if err != nil {
		return nil, err
	}
	for i := range artifacts {
		if artifacts[i].S3Key == "" {
			continue
		}
		url, err := s.storage.GetPresignedURL(ctx, s.cfg.Bucket, artifacts[i].S3Key, s.cfg.PresignExpiry)
		if err != nil {
			s.log.Warn("presigning artifact failed",
				zap.String("request_id", requestID.String()), zap.String("s3_key", artifacts[i].S3Key), zap.Error(err))
			continue
		}
		artifacts[i].URL = url
	}
	if artifacts == nil {
		artifacts = []domain.StoredArtifact{}
	}
	return &ReportRequestView{ReportRequest: *req, Artifacts: artifacts}, nil
}

func (s *reportRequestService) ListByDefinition(ctx context.Context, definitionID uuid.UUID, offset, limit int) ([]domain.ReportRequest, int, error) {
	if _, err := s.defRepo.GetByID(ctx, definitionID); err != nil {
		return nil, 0, err
	}
	return s.reqRepo.ListByDefinition(ctx, definitionID, offset, limit)
}

// Delete removes a request and, best effort, its stored artifacts.
func (s *reportRequestService) Delete(ctx context.Context, definitionID, requestID uuid.UUID) error {
	req, err := s.reqRepo.GetByID(ctx, definitionID, requestID)
	if err != nil {
		return err
	}
	if err := s.reqRepo.Delete(ctx, definitionID, requestID); err != nil {
		return err
	}

	artifacts, err := req.StoredArtifacts()
	if err != nil {
		s.log.Warn("decoding artifacts of deleted request failed", zap.String("request_id", requestID.String()), zap.Error(err))
		return nil
	}
	var errs []error
	for _, a := range artifacts {
		if a.S3Key == "" {
			continue
		}
		if err := s.storage.Delete(ctx, s.cfg.Bucket, a.S3Key); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.log.Warn("removing artifacts of deleted request failed", zap.String("request_id", requestID.String()), zap.Error(err))
	}
	return nil
}
