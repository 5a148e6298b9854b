package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"albayan/internal/domain"
)

// MockReportDefinitionRepo is a mock implementation of port.ReportDefinitionRepository.
type MockReportDefinitionRepo struct {
	mock.Mock
}

func (m *MockReportDefinitionRepo) Create(ctx context.Context, def *domain.ReportDefinition) error {
	args := m.Called(ctx, def)
	return args.Error(0)
}

func (m *MockReportDefinitionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReportDefinition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportDefinition), args.Error(1)
}

func (m *MockReportDefinitionRepo) List(ctx context.Context, offset, limit int) ([]domain.ReportDefinition, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ReportDefinition), args.Int(1), args.Error(2)
}

func (m *MockReportDefinitionRepo) Update(ctx context.Context, def *domain.ReportDefinition) error {
	args := m.Called(ctx, def)
	return args.Error(0)
}

func (m *MockReportDefinitionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
