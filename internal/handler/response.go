package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sevoc/internal/domain"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status    string `json:"status" example:"error"`
	Code      string `json:"code" example:"UNSUPPORTED_FILE_TYPE"`
	Error     string `json:"error" example:"unsupported file type; allowed: wav, mp3, flac, ogg, m4a"`
	RequestID string `json:"request_id,omitempty" example:"3f2a9c1e"`
}

// RespondOK sends a 200 response with the payload as the body.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg, requestID string) {
	c.JSON(status, ErrorResponse{
		Status:    domain.StatusError,
		Code:      code,
		Error:     msg,
		RequestID: requestID,
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var inferenceErr *domain.InferenceError
	switch {
	case errors.Is(err, domain.ErrAmbiguousRequest):
		return http.StatusBadRequest, "INVALID_REQUEST", domain.ErrAmbiguousRequest.Error()
	case errors.Is(err, domain.ErrMissingAudio):
		return http.StatusBadRequest, "INVALID_REQUEST", domain.ErrMissingAudio.Error()
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, "INVALID_REQUEST", "malformed request body"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", userMessage(err)
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrRequestTooLarge):
		return http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "request body too large"
	case errors.Is(err, domain.ErrPathTraversal):
		return http.StatusBadRequest, "INVALID_PATH", "filename must stay within the server directory"
	case errors.Is(err, domain.ErrFileNotFound):
		return http.StatusBadRequest, "FILE_NOT_FOUND", "referenced file not found"
	case errors.Is(err, domain.ErrModelNotFound):
		return http.StatusServiceUnavailable, "MODEL_NOT_FOUND", "model file not found; the service is up but cannot evaluate"
	case errors.Is(err, domain.ErrInferenceBusy):
		return http.StatusServiceUnavailable, "INFERENCE_BUSY", "all inference slots are busy; retry later"
	case errors.Is(err, domain.ErrInferenceTimeout):
		return http.StatusGatewayTimeout, "INFERENCE_TIMEOUT", "inference timed out"
	case errors.As(err, &inferenceErr):
		return http.StatusInternalServerError, "INFERENCE_FAILED", inferenceErr.Error()
	case errors.Is(err, domain.ErrInferenceFailed):
		return http.StatusInternalServerError, "INFERENCE_FAILED", "inference failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// userMessage unwraps an EvaluationFailure so its internal context is not exposed.
func userMessage(err error) string {
	var failure *domain.EvaluationFailure
	if errors.As(err, &failure) {
		return failure.Err.Error()
	}
	return err.Error()
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, log *zap.Logger, err error) {
	status, code, msg := MapDomainError(err)

	requestID := ""
	var failure *domain.EvaluationFailure
	if errors.As(err, &failure) {
		requestID = failure.RequestID
	}

	if status >= 500 {
		traceID, _ := c.Get("trace_id")
		log.Error("request failed",
			zap.Any("trace_id", traceID),
			zap.String("request_id", requestID),
			zap.Int("status", status),
			zap.Error(err))
	}
	RespondError(c, status, code, msg, requestID)
}
