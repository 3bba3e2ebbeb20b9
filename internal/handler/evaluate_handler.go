package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sevoc/internal/domain"
	"sevoc/internal/service"
)

const (
	// AudioField is the multipart form field carrying the uploaded audio.
	AudioField = "audio"
	// multipartOverhead is the body allowance for boundaries and headers on top of the file limit.
	multipartOverhead = 1 << 20
	multipartMemory   = 32 << 20
	// maxJSONBytes caps a JSON reference body, which only carries a filename.
	maxJSONBytes = 64 << 10
)

// EvaluateHandler handles the evaluation endpoint.
type EvaluateHandler struct {
	evaluationService service.EvaluationService
	maxBytes          int64
	writeTimeout      time.Duration
	log               *zap.Logger
}

// NewEvaluateHandler creates a new EvaluateHandler. maxBytes is the per-file size limit.
func NewEvaluateHandler(evaluationService service.EvaluationService, maxBytes int64, log *zap.Logger) *EvaluateHandler {
	return &EvaluateHandler{evaluationService: evaluationService, maxBytes: maxBytes, log: log}
}

// WithWriteTimeout restarts the server write deadline once the request body is read,
// so the time spent receiving an upload does not shorten the inference budget.
func (h *EvaluateHandler) WithWriteTimeout(d time.Duration) *EvaluateHandler {
	h.writeTimeout = d
	return h
}

// Evaluate handles POST /evaluate
// @Summary Evaluate an audio file
// @Description Runs synthetic voice detection on an uploaded file (multipart field "audio") or on a file already in the server directory (JSON body {"filename": "..."}). Exactly one source must be given.
// @Tags evaluation
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param audio formData file false "Audio file (wav, mp3, flac, ogg, m4a)"
// @Param body body EvaluateFileRequest false "Reference to a file in the server directory"
// @Success 200 {object} domain.EvaluationResponse "Evaluation completed"
// @Failure 400 {object} ErrorResponse "Invalid request, unsupported type, missing file or unsafe path"
// @Failure 413 {object} ErrorResponse "File too large"
// @Failure 500 {object} ErrorResponse "Inference failed"
// @Failure 503 {object} ErrorResponse "Model not available or all inference slots busy"
// @Failure 504 {object} ErrorResponse "Inference timed out"
// @Router /evaluate [post]
func (h *EvaluateHandler) Evaluate(c *gin.Context) {
	req, cleanup, err := h.buildRequest(c)
	defer cleanup()
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	h.extendWriteDeadline(c)

	resp, err := h.evaluationService.Evaluate(c.Request.Context(), req)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, resp)
}

// buildRequest decodes the body into an EvaluationRequest. The returned cleanup is always non-nil.
func (h *EvaluateHandler) buildRequest(c *gin.Context) (domain.EvaluationRequest, func(), error) {
	noop := func() {}
	contentType := c.ContentType()

	switch {
	case strings.HasPrefix(contentType, "multipart/"):
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
		if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
			if isBodyTooLarge(err) {
				return domain.EvaluationRequest{}, noop, domain.ErrFileTooLarge
			}
			return domain.EvaluationRequest{}, noop, domain.ErrInvalidRequest
		}
		form := c.Request.MultipartForm
		req, err := multipartRequest(form)
		cleanup := func() {
			if req.Upload != nil {
				if closer, ok := req.Upload.Content.(io.Closer); ok {
					_ = closer.Close()
				}
			}
			if err := form.RemoveAll(); err != nil {
				h.log.Warn("failed to remove multipart temp files", zap.Error(err))
			}
		}
		return req, cleanup, err

	case contentType == "application/json":
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxJSONBytes)
		var body EvaluateFileRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			if isBodyTooLarge(err) {
				return domain.EvaluationRequest{}, noop, domain.ErrRequestTooLarge
			}
			return domain.EvaluationRequest{}, noop, domain.ErrInvalidRequest
		}
		return domain.EvaluationRequest{Reference: &domain.ServerFileReference{Filename: body.Filename}}, noop, nil

	default:
		// No recognizable source; the service reports the missing audio with a request id.
		return domain.EvaluationRequest{}, noop, nil
	}
}

func (h *EvaluateHandler) extendWriteDeadline(c *gin.Context) {
	if h.writeTimeout <= 0 {
		return
	}
	rc := http.NewResponseController(c.Writer)
	if err := rc.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
		h.log.Debug("write deadline not extended", zap.Error(err))
	}
}

func multipartRequest(form *multipart.Form) (domain.EvaluationRequest, error) {
	var req domain.EvaluationRequest

	if files := form.File[AudioField]; len(files) > 0 {
		header := files[0]
		f, err := header.Open()
		if err != nil {
			return req, domain.ErrInvalidRequest
		}
		req.Upload = &domain.UploadedAudio{Filename: header.Filename, Content: f, Size: header.Size}
	}
	if values := form.Value["filename"]; len(values) > 0 {
		req.Reference = &domain.ServerFileReference{Filename: values[0]}
	}
	return req, nil
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
