package port

import (
	"context"

	"sevoc/internal/domain"
)

// FileStager validates an evaluation request and places its audio on disk.
type FileStager interface {
	Stage(ctx context.Context, requestID string, req domain.EvaluationRequest) (*domain.StagedAudioFile, error)
	Release(staged *domain.StagedAudioFile) error
}
