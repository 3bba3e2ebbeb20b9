package port

import (
	"context"
	"time"

	"sevoc/internal/domain"
)

// InferenceInvoker runs the external inference routine against a staged file.
type InferenceInvoker interface {
	Run(ctx context.Context, staged *domain.StagedAudioFile, modelPath string, timeout time.Duration) domain.InferenceOutcome
}

// ResultParser extracts classification summaries from raw inference output.
type ResultParser interface {
	Parse(rawText string) domain.ClassificationResult
}
