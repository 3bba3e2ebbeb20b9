package domain

// AudioFormat represents an accepted audio container, keyed by file extension.
type AudioFormat string

const (
	AudioFormatWAV  AudioFormat = "wav"
	AudioFormatMP3  AudioFormat = "mp3"
	AudioFormatFLAC AudioFormat = "flac"
	AudioFormatOGG  AudioFormat = "ogg"
	AudioFormatM4A  AudioFormat = "m4a"
)

// DefaultAudioFormats is the extension allow-set used when none is configured.
var DefaultAudioFormats = []AudioFormat{
	AudioFormatWAV,
	AudioFormatMP3,
	AudioFormatFLAC,
	AudioFormatOGG,
	AudioFormatM4A,
}

// OutcomeKind tags the variant held by an InferenceOutcome.
type OutcomeKind string

const (
	OutcomeSuccess       OutcomeKind = "success"
	OutcomeTimedOut      OutcomeKind = "timed_out"
	OutcomeProcessFailed OutcomeKind = "process_failed"
	OutcomeNotFound      OutcomeKind = "not_found"
	OutcomeBusy          OutcomeKind = "busy"
)

// RequestState tracks where an evaluation request is in its lifecycle.
type RequestState string

const (
	StateReceived   RequestState = "received"
	StateValidating RequestState = "validating"
	StateStaged     RequestState = "staged"
	StateInvoking   RequestState = "invoking"
	StateParsing    RequestState = "parsing"
	StateCompleted  RequestState = "completed"
	StateFailed     RequestState = "failed"
)

// Evaluation response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusHealthy = "healthy"
)
