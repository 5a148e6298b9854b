package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"albayan/internal/domain"
	"albayan/internal/port"
)

type reportRequestRepo struct {
	db *sqlx.DB
}

// NewReportRequestRepo creates a new PostgreSQL-backed ReportRequestRepository.
func NewReportRequestRepo(db *sqlx.DB) port.ReportRequestRepository {
	return &reportRequestRepo{db: db}
}

func (r *reportRequestRepo) Create(ctx context.Context, req *domain.ReportRequest) error {
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.ProcessingStatus == "" {
		req.ProcessingStatus = domain.StatusPending
	}
	if len(req.Artifacts) == 0 {
		req.Artifacts = json.RawMessage("[]")
	}

	query := `INSERT INTO report_requests
		(id, definition_id, output_format, report_data, processing_status, processing_error,
		 artifacts, notify_email, attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.DefinitionID, req.OutputFormat, []byte(req.ReportData), req.ProcessingStatus,
		req.ProcessingError, []byte(req.Artifacts), req.NotifyEmail, req.Attempts, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("reportRequestRepo.Create: %w", err)
	}
	return nil
}

func (r *reportRequestRepo) GetByID(ctx context.Context, definitionID, requestID uuid.UUID) (*domain.ReportRequest, error) {
	var req domain.ReportRequest
	err := r.db.GetContext(ctx, &req,
		"SELECT * FROM report_requests WHERE id = $1 AND definition_id = $2", requestID, definitionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("reportRequestRepo.GetByID: %w", err)
	}
	return &req, nil
}

func (r *reportRequestRepo) Get(ctx context.Context, requestID uuid.UUID) (*domain.ReportRequest, error) {
	var req domain.ReportRequest
	err := r.db.GetContext(ctx, &req, "SELECT * FROM report_requests WHERE id = $1", requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("reportRequestRepo.Get: %w", err)
	}
	return &req, nil
}

func (r *reportRequestRepo) ListByDefinition(ctx context.Context, definitionID uuid.UUID, offset, limit int) ([]domain.ReportRequest, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM report_requests WHERE definition_id = $1", definitionID)
	if err != nil {
		return nil, 0, fmt.Errorf("reportRequestRepo.ListByDefinition count: %w", err)
	}

	var reqs []domain.ReportRequest
	err = r.db.SelectContext(ctx, &reqs,
		`SELECT * FROM report_requests
		 WHERE definition_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		definitionID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("reportRequestRepo.ListByDefinition: %w", err)
	}
	return reqs, total, nil
}

func (r *reportRequestRepo) Delete(ctx context.Context, definitionID, requestID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM report_requests WHERE id = $1 AND definition_id = $2", requestID, definitionID)
	if err != nil {
		return fmt.Errorf("reportRequestRepo.Delete: %w", err)
	}
	return expectOneRow(result, domain.ErrRequestNotFound, "reportRequestRepo.Delete")
}

// ClaimPending claims the oldest pending requests that are unclaimed or whose
// claim is older than lease. Concurrent claimers never receive the same row.
// Expired claims that already used maxAttempts attempts are failed in the
// same statement instead of being claimed again.
func (r *reportRequestRepo) ClaimPending(ctx context.Context, limit int, lease time.Duration, maxAttempts int) ([]domain.ReportRequest, error) {
	now := time.Now().UTC()
	var reqs []domain.ReportRequest
	err := r.db.SelectContext(ctx, &reqs,
		`WITH exhausted AS (
		     UPDATE report_requests
		     SET processing_status = $5,
		         processing_error = 'gave up after ' || attempts || ' attempts',
		         completed_at = $1, updated_at = $1
		     WHERE processing_status = $2
		       AND claimed_at IS NOT NULL AND claimed_at < $3
		       AND attempts >= $6
		     RETURNING id
		 )
		 UPDATE report_requests
		 SET claimed_at = $1, attempts = attempts + 1, updated_at = $1
		 WHERE id IN (
		     SELECT id FROM report_requests
		     WHERE processing_status = $2
		       AND (claimed_at IS NULL OR claimed_at < $3)
		       AND attempts < $6
		     ORDER BY created_at
		     LIMIT $4
		     FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		now, domain.StatusPending, now.Add(-lease), limit, domain.StatusFailed, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("reportRequestRepo.ClaimPending: %w", err)
	}
	return reqs, nil
}

func (r *reportRequestRepo) SetStatus(ctx context.Context, requestID uuid.UUID, status domain.ProcessingStatus, processingError string) error {
	if !domain.StatusPending.CanTransitionTo(status) {
		return fmt.Errorf("%w: pending to %s", domain.ErrStatusTransition, status)
	}
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE report_requests
		 SET processing_status = $1, processing_error = $2, completed_at = $3, updated_at = $3
		 WHERE id = $4 AND processing_status = $5`,
		status, processingError, now, requestID, domain.StatusPending)
	if err != nil {
		return fmt.Errorf("reportRequestRepo.SetStatus: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reportRequestRepo.SetStatus rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := r.Get(ctx, requestID); err != nil {
			return err
		}
		return fmt.Errorf("%w: request %s is no longer pending", domain.ErrStatusTransition, requestID)
	}
	return nil
}

func (r *reportRequestRepo) SetArtifacts(ctx context.Context, requestID uuid.UUID, artifacts json.RawMessage) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE report_requests SET artifacts = $1, updated_at = $2 WHERE id = $3",
		[]byte(artifacts), time.Now().UTC(), requestID)
	if err != nil {
		return fmt.Errorf("reportRequestRepo.SetArtifacts: %w", err)
	}
	return expectOneRow(result, domain.ErrRequestNotFound, "reportRequestRepo.SetArtifacts")
}
