package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sevoc/internal/service"
)

// Endpoints lists the public routes, reported by the not-found handler.
var Endpoints = []string{
	"GET /",
	"GET /status",
	"POST /evaluate",
}

// HealthHandler handles liveness and status endpoints.
type HealthHandler struct {
	statusService service.StatusService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(statusService service.StatusService) *HealthHandler {
	return &HealthHandler{statusService: statusService}
}

// Root handles GET /
// @Summary Health check
// @Description Reports that the service is up and whether the model file is present.
// @Tags health
// @Produce json
// @Success 200 {object} domain.HealthStatus
// @Router / [get]
func (h *HealthHandler) Root(c *gin.Context) {
	RespondOK(c, h.statusService.Health(c.Request.Context()))
}

// Status handles GET /status
// @Summary Service status
// @Description Returns the read-only service configuration, model availability and uptime.
// @Tags health
// @Produce json
// @Success 200 {object} domain.ServiceStatus
// @Router /status [get]
func (h *HealthHandler) Status(c *gin.Context) {
	RespondOK(c, h.statusService.Status(c.Request.Context()))
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// NotFound answers unknown routes with the list of available endpoints.
func (h *HealthHandler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, NotFoundResponse{
		Status:             "error",
		Code:               "NOT_FOUND",
		Error:              "endpoint not found",
		AvailableEndpoints: Endpoints,
	})
}
