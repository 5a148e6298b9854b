package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"albayan/internal/domain"
)

// MockReportProcessor is a mock implementation of service.ReportProcessor.
type MockReportProcessor struct {
	mock.Mock
}

func (m *MockReportProcessor) Process(ctx context.Context, req *domain.ReportRequest) domain.JobOutcome {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.JobOutcome)
}
