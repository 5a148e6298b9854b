package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"albayan/internal/domain"
)

// MockReportRequestRepo is a mock implementation of port.ReportRequestRepository.
type MockReportRequestRepo struct {
	mock.Mock
}

func (m *MockReportRequestRepo) Create(ctx context.Context, req *domain.ReportRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockReportRequestRepo) GetByID(ctx context.Context, definitionID, requestID uuid.UUID) (*domain.ReportRequest, error) {
	args := m.Called(ctx, definitionID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportRequest), args.Error(1)
}

func (m *MockReportRequestRepo) Get(ctx context.Context, requestID uuid.UUID) (*domain.ReportRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportRequest), args.Error(1)
}

func (m *MockReportRequestRepo) ListByDefinition(ctx context.Context, definitionID uuid.UUID, offset, limit int) ([]domain.ReportRequest, int, error) {
	args := m.Called(ctx, definitionID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ReportRequest), args.Int(1), args.Error(2)
}

func (m *MockReportRequestRepo) Delete(ctx context.Context, definitionID, requestID uuid.UUID) error {
	args := m.Called(ctx, definitionID, requestID)
	return args.Error(0)
}

func (m *MockReportRequestRepo) ClaimPending(ctx context.Context, limit int, lease time.Duration, maxAttempts int) ([]domain.ReportRequest, error) {
	args := m.Called(ctx, limit, lease, maxAttempts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReportRequest), args.Error(1)
}

func (m *MockReportRequestRepo) SetStatus(ctx context.Context, requestID uuid.UUID, status domain.ProcessingStatus, processingError string) error {
	args := m.Called(ctx, requestID, status, processingError)
	return args.Error(0)
}

func (m *MockReportRequestRepo) SetArtifacts(ctx context.Context, requestID uuid.UUID, artifacts json.RawMessage) error {
	args := m.Called(ctx, requestID, artifacts)
	return args.Error(0)
}
