package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"sevoc/internal/domain"
)

// MockInferenceInvoker is a mock implementation of port.InferenceInvoker.
type MockInferenceInvoker struct {
	mock.Mock
}

func (m *MockInferenceInvoker) Run(ctx context.Context, staged *domain.StagedAudioFile, modelPath string, timeout time.Duration) domain.InferenceOutcome {
	args := m.Called(ctx, staged, modelPath, timeout)
	return args.Get(0).(domain.InferenceOutcome)
}

// MockResultParser is a mock implementation of port.ResultParser.
type MockResultParser struct {
	mock.Mock
}

func (m *MockResultParser) Parse(rawText string) domain.ClassificationResult {
	args := m.Called(rawText)
	return args.Get(0).(domain.ClassificationResult)
}
