package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"skill-assessment/internal/models"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Success      bool                    `json:"success"`
	Status       string                  `json:"status"`
	Database     string                  `json:"database"`
	Version      string                  `json:"version"`
	Capabilities models.BankCapabilities `json:"capabilities"`
}

// HealthHandler serves liveness and database reachability
type HealthHandler struct {
	db      HealthChecker
	version string
	caps    models.BankCapabilities
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db HealthChecker, version string, caps models.BankCapabilities) *HealthHandler {
	return &HealthHandler{db: db, version: version, caps: caps}
}

// Health pings the database
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Success:      true,
		Status:       "healthy",
		Database:     "ok",
		Version:      h.version,
		Capabilities: h.caps,
	}

	if err := h.db.HealthCheck(r.Context()); err != nil {
		slog.Error("Health check failed", "error", err)
		resp.Success = false
		resp.Status = "unhealthy"
		resp.Database = "error"
		JSONResponse(w, http.StatusServiceUnavailable, resp)
		return
	}

	JSONResponse(w, http.StatusOK, resp)
}
