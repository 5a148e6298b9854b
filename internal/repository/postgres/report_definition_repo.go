package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"albayan/internal/domain"
	"albayan/internal/port"
)

type reportDefinitionRepo struct {
	db *sqlx.DB
}

// NewReportDefinitionRepo creates a new PostgreSQL-backed ReportDefinitionRepository.
func NewReportDefinitionRepo(db *sqlx.DB) port.ReportDefinitionRepository {
	return &reportDefinitionRepo{db: db}
}

func (r *reportDefinitionRepo) Create(ctx context.Context, def *domain.ReportDefinition) error {
	now := time.Now().UTC()
	def.CreatedAt = now
	def.UpdatedAt = now

	query := `INSERT INTO report_definitions
		(id, name, template_file_type, template_file, s3_bucket, s3_key, file_size, created_at, updated_at)
		VALUES (:id, :name, :template_file_type, :template_file, :s3_bucket, :s3_key, :file_size, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, def); err != nil {
		return fmt.Errorf("reportDefinitionRepo.Create: %w", err)
	}
	return nil
}

func (r *reportDefinitionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReportDefinition, error) {
	var def domain.ReportDefinition
	err := r.db.GetContext(ctx, &def, "SELECT * FROM report_definitions WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDefinitionNotFound
		}
		return nil, fmt.Errorf("reportDefinitionRepo.GetByID: %w", err)
	}
	return &def, nil
}

func (r *reportDefinitionRepo) List(ctx context.Context, offset, limit int) ([]domain.ReportDefinition, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM report_definitions"); err != nil {
		return nil, 0, fmt.Errorf("reportDefinitionRepo.List count: %w", err)
	}

	var defs []domain.ReportDefinition
	err := r.db.SelectContext(ctx, &defs,
		`SELECT * FROM report_definitions ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("reportDefinitionRepo.List: %w", err)
	}
	return defs, total, nil
}

func (r *reportDefinitionRepo) Update(ctx context.Context, def *domain.ReportDefinition) error {
	def.UpdatedAt = time.Now().UTC()

	result, err := r.db.NamedExecContext(ctx,
		`UPDATE report_definitions
		 SET name = :name, template_file = :template_file, s3_bucket = :s3_bucket, s3_key = :s3_key,
		     file_size = :file_size, updated_at = :updated_at
		 WHERE id = :id`, def)
	if err != nil {
		return fmt.Errorf("reportDefinitionRepo.Update: %w", err)
	}
	return expectOneRow(result, domain.ErrDefinitionNotFound, "reportDefinitionRepo.Update")
}

func (r *reportDefinitionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM report_definitions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("reportDefinitionRepo.Delete: %w", err)
	}
	return expectOneRow(result, domain.ErrDefinitionNotFound, "reportDefinitionRepo.Delete")
}

// expectOneRow maps a statement that touched no rows to notFound.
func expectOneRow(result sql.Result, notFound error, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
