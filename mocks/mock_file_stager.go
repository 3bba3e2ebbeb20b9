package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sevoc/internal/domain"
)

// MockFileStager is a mock implementation of port.FileStager.
type MockFileStager struct {
	mock.Mock
}

func (m *MockFileStager) Stage(ctx context.Context, requestID string, req domain.EvaluationRequest) (*domain.StagedAudioFile, error) {
	args := m.Called(ctx, requestID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StagedAudioFile), args.Error(1)
}

func (m *MockFileStager) Release(staged *domain.StagedAudioFile) error {
	args := m.Called(staged)
	return args.Error(0)
}
