package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"albayan/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendReportStatus(ctx context.Context, msg port.ReportStatusEmail) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
