package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"sevoc/internal/domain"
)

// MockEvaluationService is a mock implementation of service.EvaluationService.
type MockEvaluationService struct {
	mock.Mock
}

func (m *MockEvaluationService) Evaluate(ctx context.Context, req domain.EvaluationRequest) (*domain.EvaluationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EvaluationResponse), args.Error(1)
}

// MockStatusService is a mock implementation of service.StatusService.
type MockStatusService struct {
	mock.Mock
}

func (m *MockStatusService) Health(ctx context.Context) domain.HealthStatus {
	args := m.Called(ctx)
	return args.Get(0).(domain.HealthStatus)
}

func (m *MockStatusService) Status(ctx context.Context) domain.ServiceStatus {
	args := m.Called(ctx)
	return args.Get(0).(domain.ServiceStatus)
}

func (m *MockStatusService) ModelPath() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockStatusService) ModelExists() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockStatusService) InferenceTimeout() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}
