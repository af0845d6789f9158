package handlers

import (
	"net/http"

	"skill-assessment/internal/service"
)

// AvailabilityRequest sets the availability of a worker
type AvailabilityRequest struct {
	WorkerID string `json:"workerId"`
	Status   string `json:"status"`
}

// AvailabilityResponse wraps one availability record
type AvailabilityResponse struct {
	Success bool `json:"success"`
	*service.Availability
}

// AvailabilityHandler serves the availability fallback store
type AvailabilityHandler struct {
	availabilityService *service.AvailabilityService
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(availabilityService *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: availabilityService}
}

// GetAvailability returns a worker's status; unknown workers are offline
// @Summary Get worker availability
// @Tags Worker
// @Produce json
// @Param workerId query string true "Worker identity"
// @Success 200 {object} AvailabilityResponse
// @Failure 400 {object} ErrorResponse "invalid_workerId"
// @Router /worker/availability [get]
func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	availability, err := h.availabilityService.Get(r.Context(), r.URL.Query().Get("workerId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, AvailabilityResponse{Success: true, Availability: availability})
}

// SetAvailability records a worker's status
// @Summary Set worker availability
// @Tags Worker
// @Accept json
// @Produce json
// @Param availability body AvailabilityRequest true "available, busy or offline"
// @Success 200 {object} AvailabilityResponse
// @Failure 400 {object} ErrorResponse "invalid_workerId or invalid_status"
// @Router /worker/availability [put]
func (h *AvailabilityHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var req AvailabilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidBody)
		return
	}

	availability, err := h.availabilityService.Set(r.Context(), req.WorkerID, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, AvailabilityResponse{Success: true, Availability: availability})
}
