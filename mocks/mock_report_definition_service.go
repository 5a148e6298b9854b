package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"albayan/internal/domain"
	"albayan/internal/service"
)

// MockReportDefinitionService is a mock implementation of service.ReportDefinitionService.
type MockReportDefinitionService struct {
	mock.Mock
}

func (m *MockReportDefinitionService) Create(ctx context.Context, input service.CreateDefinitionInput) (*domain.ReportDefinition, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportDefinition), args.Error(1)
}

func (m *MockReportDefinitionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReportDefinition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportDefinition), args.Error(1)
}

func (m *MockReportDefinitionService) List(ctx context.Context, offset, limit int) ([]domain.ReportDefinition, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ReportDefinition), args.Int(1), args.Error(2)
}

func (m *MockReportDefinitionService) Update(ctx context.Context, id uuid.UUID, input service.UpdateDefinitionInput) (*domain.ReportDefinition, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportDefinition), args.Error(1)
}

func (m *MockReportDefinitionService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
