package domain

import (
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadedAudio is an audio file delivered in the request body.
type UploadedAudio struct {
	Filename string
	Content  io.Reader
	// Size is the declared size in bytes; negative when unknown.
	Size int64
}

// ServerFileReference names a file already present in the server directory.
type ServerFileReference struct {
	Filename string
}

// EvaluationRequest holds exactly one of Upload or Reference.
type EvaluationRequest struct {
	Upload    *UploadedAudio
	Reference *ServerFileReference
}

// Validate enforces the one-variant invariant.
func (r EvaluationRequest) Validate() error {
	switch {
	case r.Upload != nil && r.Reference != nil:
		return ErrAmbiguousRequest
	case r.Upload == nil && r.Reference == nil:
		return ErrMissingAudio
	case r.Upload != nil && strings.TrimSpace(r.Upload.Filename) == "":
		return ErrMissingAudio
	case r.Reference != nil && strings.TrimSpace(r.Reference.Filename) == "":
		return ErrMissingAudio
	}
	return nil
}

// Filename returns the filename of whichever variant is set.
func (r EvaluationRequest) Filename() string {
	if r.Upload != nil {
		return r.Upload.Filename
	}
	if r.Reference != nil {
		return r.Reference.Filename
	}
	return ""
}

// StagedAudioFile is an audio file on disk, ready for inference.
type StagedAudioFile struct {
	Path        string
	SizeBytes   int64
	Extension   string
	ContentType string
	// Ephemeral files were created for this request and are removed on release.
	Ephemeral bool
}

// InferenceOutcome is the tagged result of one inference invocation.
type InferenceOutcome struct {
	Kind        OutcomeKind
	RawText     string
	Duration    time.Duration
	ExitCode    int
	Diagnostics string
}

// ClassificationResult holds the summary lines extracted from inference output.
type ClassificationResult struct {
	MultiClassSummary string
	BinarySummary     string
}

// EvaluationResponse is the successful result of POST /evaluate.
type EvaluationResponse struct {
	RequestID             string    `json:"request_id"`
	Status                string    `json:"status"`
	ProcessingTimeSeconds float64   `json:"processing_time_seconds"`
	RawOutput             string    `json:"raw_output"`
	MultiClassification   string    `json:"multi_classification"`
	BinaryClassification  string    `json:"binary_classification"`
	Timestamp             time.Time `json:"timestamp"`
}

// HealthStatus is the liveness payload of GET /.
type HealthStatus struct {
	Status         string    `json:"status"`
	Service        string    `json:"service"`
	Timestamp      time.Time `json:"timestamp"`
	ModelAvailable bool      `json:"model_available"`
}

// ServiceStatus is the configuration snapshot of GET /status.
type ServiceStatus struct {
	Server                  string    `json:"server"`
	Version                 string    `json:"version"`
	ModelPath               string    `json:"model_path"`
	ModelExists             bool      `json:"model_exists"`
	UploadFolder            string    `json:"upload_folder"`
	MaxFileSizeMB           int64     `json:"max_file_size_mb"`
	AllowedExtensions       []string  `json:"allowed_extensions"`
	InferenceTimeoutSeconds float64   `json:"inference_timeout_seconds"`
	MaxConcurrentInferences int       `json:"max_concurrent_inferences"`
	UptimeSeconds           float64   `json:"uptime_seconds"`
	Timestamp               time.Time `json:"timestamp"`
}

// NewRequestID returns a short opaque correlation token.
func NewRequestID() string {
	return uuid.New().String()[:8]
}
