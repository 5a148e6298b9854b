package port

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"albayan/internal/domain"
)

// ReportDefinitionRepository defines the contract for report template persistence.
type ReportDefinitionRepository interface {
	Create(ctx context.Context, def *domain.ReportDefinition) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReportDefinition, error)
	List(ctx context.Context, offset, limit int) ([]domain.ReportDefinition, int, error)
	Update(ctx context.Context, def *domain.ReportDefinition) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReportRequestRepository defines the contract for report request persistence.
type ReportRequestRepository interface {
	Create(ctx context.Context, req *domain.ReportRequest) error
	GetByID(ctx context.Context, definitionID, requestID uuid.UUID) (*domain.ReportRequest, error)
	// Get loads a request without scoping it to a definition.
	Get(ctx context.Context, requestID uuid.UUID) (*domain.ReportRequest, error)
	ListByDefinition(ctx context.Context, definitionID uuid.UUID, offset, limit int) ([]domain.ReportRequest, int, error)
	Delete(ctx context.Context, definitionID, requestID uuid.UUID) error

	// ClaimPending marks up to limit pending requests as claimed and returns
	// them. Requests claimed longer than lease ago are claimable again unless
	// they were already claimed maxAttempts times; those are marked failed.
	ClaimPending(ctx context.Context, limit int, lease time.Duration, maxAttempts int) ([]domain.ReportRequest, error)
	// SetStatus moves a pending request to a terminal status. It returns
	// domain.ErrStatusTransition if the request is no longer pending.
	SetStatus(ctx context.Context, requestID uuid.UUID, status domain.ProcessingStatus, processingError string) error
	SetArtifacts(ctx context.Context, requestID uuid.UUID, artifacts json.RawMessage) error
}
