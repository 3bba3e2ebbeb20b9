package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrMissingAudio        = errors.New("no audio provided; use a multipart 'audio' upload or a JSON filename")
	ErrAmbiguousRequest    = errors.New("provide either an upload or a filename, not both")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrRequestTooLarge     = errors.New("request body too large")
	ErrFileNotFound        = errors.New("referenced file not found")
	ErrPathTraversal       = errors.New("referenced path escapes the server directory")
	ErrModelNotFound       = errors.New("model file not found")
	ErrInferenceTimeout    = errors.New("inference timed out")
	ErrInferenceFailed     = errors.New("inference failed")
	ErrInferenceBusy       = errors.New("no inference slot became free in time")
)

// IsValidation reports whether err was caused by client input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrMissingAudio) ||
		errors.Is(err, ErrAmbiguousRequest) ||
		errors.Is(err, ErrUnsupportedFileType) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrRequestTooLarge) ||
		errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrPathTraversal)
}

// InferenceError carries the diagnostics of an inference routine that exited abnormally.
type InferenceError struct {
	ExitCode    int
	Diagnostics string
}

func (e *InferenceError) Error() string {
	if e.Diagnostics == "" {
		return fmt.Sprintf("inference failed (exit code %d)", e.ExitCode)
	}
	return fmt.Sprintf("inference failed (exit code %d): %s", e.ExitCode, e.Diagnostics)
}

func (e *InferenceError) Unwrap() error {
	return ErrInferenceFailed
}

// EvaluationFailure records which request failed, in which state and after how long.
type EvaluationFailure struct {
	RequestID string
	State     RequestState
	Elapsed   time.Duration
	Err       error
}

func (e *EvaluationFailure) Error() string {
	return fmt.Sprintf("evaluation %s failed while %s: %v", e.RequestID, e.State, e.Err)
}

func (e *EvaluationFailure) Unwrap() error {
	return e.Err
}
