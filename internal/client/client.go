// Package client is an HTTP client for the evaluation service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sevoc/internal/domain"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
	if e.RequestID != "" {
		msg += " (request " + e.RequestID + ")"
	}
	return msg
}

// Client talks to a running evaluation server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for baseURL. A zero timeout disables the client-side timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Health calls GET /.
func (c *Client) Health(ctx context.Context) (*domain.HealthStatus, error) {
	var out domain.HealthStatus
	if err := c.do(ctx, http.MethodGet, "/", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status calls GET /status.
func (c *Client) Status(ctx context.Context) (*domain.ServiceStatus, error) {
	var out domain.ServiceStatus
	if err := c.do(ctx, http.MethodGet, "/status", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EvaluateReference evaluates a file already present in the server directory.
func (c *Client) EvaluateReference(ctx context.Context, filename string) (*domain.EvaluationResponse, error) {
	body, err := json.Marshal(map[string]string{"filename": filename})
	if err != nil {
		return nil, err
	}
	var out domain.EvaluationResponse
	if err := c.do(ctx, http.MethodPost, "/evaluate", bytes.NewReader(body), "application/json", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EvaluateFile uploads the local file at path and evaluates it.
func (c *Client) EvaluateFile(ctx context.Context, path string) (*domain.EvaluationResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("audio", filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	var out domain.EvaluationResponse
	if err := c.do(ctx, http.MethodPost, "/evaluate", pr, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body struct {
			Code      string `json:"code"`
			Error     string `json:"error"`
			RequestID string `json:"request_id"`
		}
		if json.Unmarshal(data, &body) == nil {
			apiErr.Code, apiErr.Message, apiErr.RequestID = body.Code, body.Error, body.RequestID
		}
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
