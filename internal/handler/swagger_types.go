package handler

// Swagger type definitions for API documentation.

// EvaluateFileRequest references an audio file already present in the server directory.
type EvaluateFileRequest struct {
	Filename string `json:"filename" example:"sample_01.wav"`
}

// NotFoundResponse is returned for unknown routes.
type NotFoundResponse struct {
	Status             string   `json:"status" example:"error"`
	Code               string   `json:"code" example:"NOT_FOUND"`
	Error              string   `json:"error" example:"endpoint not found"`
	AvailableEndpoints []string `json:"available_endpoints" example:"GET /,GET /status,POST /evaluate"`
}
