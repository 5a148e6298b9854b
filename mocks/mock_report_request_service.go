package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"albayan/internal/domain"
	"albayan/internal/service"
)

// MockReportRequestService is a mock implementation of service.ReportRequestService.
type MockReportRequestService struct {
	mock.Mock
}

func (m *MockReportRequestService) Issue(ctx context.Context, definitionID uuid.UUID, body []byte) (*domain.ReportRequest, error) {
	args := m.Called(ctx, definitionID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportRequest), args.Error(1)
}

func (m *MockReportRequestService) GetByID(ctx context.Context, definitionID, requestID uuid.UUID) (*service.ReportRequestView, error) {
	args := m.Called(ctx, definitionID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReportRequestView), args.Error(1)
}

func (m *MockReportRequestService) ListByDefinition(ctx context.Context, definitionID uuid.UUID, offset, limit int) ([]domain.ReportRequest, int, error) {
	args := m.Called(ctx, definitionID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ReportRequest), args.Int(1), args.Error(2)
}

func (m *MockReportRequestService) Delete(ctx context.Context, definitionID, requestID uuid.UUID) error {
	args := m.Called(ctx, definitionID, requestID)
	return args.Error(0)
}
