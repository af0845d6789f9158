package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"skill-assessment/internal/middleware"
	"skill-assessment/internal/models"
	"skill-assessment/internal/service"
)

// RoundResponse wraps a single round
type RoundResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Data    *models.Round `json:"data,omitempty"`
}

// RoundListResponse wraps a round listing
type RoundListResponse struct {
	Success bool           `json:"success"`
	Items   []models.Round `json:"items"`
	Count   int            `json:"count"`
}

// HistoryResponse wraps the audit log of a round
type HistoryResponse struct {
	Success bool                  `json:"success"`
	Items   []models.HistoryEntry `json:"items"`
	Count   int                   `json:"count"`
}

// RoundHandler serves round maintenance requests
type RoundHandler struct {
	roundService *service.RoundService
}

// NewRoundHandler creates a new round handler
func NewRoundHandler(roundService *service.RoundService) *RoundHandler {
	return &RoundHandler{roundService: roundService}
}

// ListRounds lists rounds, newest first
// @Summary List rounds
// @Tags Rounds
// @Produce json
// @Param category query string false "Category filter"
// @Param status query string false "Status filter (draft, active, archived)"
// @Param active query bool false "Active flag filter"
// @Success 200 {object} RoundListResponse
// @Failure 400 {object} ErrorResponse "invalid_active"
// @Router /rounds [get]
func (h *RoundHandler) ListRounds(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var filter models.RoundFilter

	if category := strings.TrimSpace(query.Get("category")); category != "" {
		filter.Category = &category
	}
	if status := strings.TrimSpace(query.Get("status")); status != "" {
		filter.Status = &status
	}
	if raw := query.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidActive)
			return
		}
		filter.Active = &active
	}

	rounds, err := h.roundService.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, RoundListResponse{Success: true, Items: rounds, Count: len(rounds)})
}

// GetRound returns one round including its history
// @Summary Get round
// @Tags Rounds
// @Produce json
// @Param id path string true "Round ID"
// @Success 200 {object} RoundResponse
// @Failure 404 {object} ErrorResponse "not_found"
// @Router /rounds/{id} [get]
func (h *RoundHandler) GetRound(w http.ResponseWriter, r *http.Request) {
	round, err := h.roundService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, RoundResponse{Success: true, Data: round})
}

// CreateRound creates a round; absent fields take their defaults
// @Summary Create round
// @Tags Rounds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param round body models.RoundPolicy true "Round policy"
// @Success 201 {object} RoundResponse
// @Failure 400 {object} ErrorResponse "invalid_category, invalid_title or invalid_<field>"
// @Failure 409 {object} ErrorResponse "duplicate_title"
// @Router /rounds [post]
func (h *RoundHandler) CreateRound(w http.ResponseWriter, r *http.Request) {
	var policy models.RoundPolicy
	if err := decodeJSON(w, r, &policy); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidBody)
		return
	}

	round, err := h.roundService.Create(r.Context(), &policy, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusCreated, RoundResponse{Success: true, Message: MsgCreated, Data: round})
}

// UpdateRound applies the supplied fields and appends one history entry
// @Summary Update round
// @Tags Rounds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Round ID"
// @Param round body models.RoundPolicy true "Fields to change"
// @Success 200 {object} RoundResponse
// @Failure 400 {object} ErrorResponse "No fields to update"
// @Failure 404 {object} ErrorResponse "not_found"
// @Router /rounds/{id} [put]
func (h *RoundHandler) UpdateRound(w http.ResponseWriter, r *http.Request) {
	var patch models.RoundPolicy
	if err := decodeJSON(w, r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidBody)
		return
	}

	round, err := h.roundService.Update(r.Context(), r.PathValue("id"), &patch, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, RoundResponse{Success: true, Message: MsgUpdated, Data: round})
}

// DeleteRound archives a round; the row and its history are kept
// @Summary Delete round
// @Tags Rounds
// @Produce json
// @Security BearerAuth
// @Param id path string true "Round ID"
// @Success 200 {object} RoundResponse
// @Failure 404 {object} ErrorResponse "not_found"
// @Router /rounds/{id} [delete]
func (h *RoundHandler) DeleteRound(w http.ResponseWriter, r *http.Request) {
	if err := h.roundService.Delete(r.Context(), r.PathValue("id"), middleware.ActorFromContext(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, RoundResponse{Success: true, Message: MsgDeleted})
}

// GetRoundHistory returns the append-only audit log of a round
// @Summary Get round history
// @Tags Rounds
// @Produce json
// @Param id path string true "Round ID"
// @Success 200 {object} HistoryResponse
// @Failure 404 {object} ErrorResponse "not_found"
// @Router /rounds/{id}/history [get]
func (h *RoundHandler) GetRoundHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.roundService.History(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, HistoryResponse{Success: true, Items: history, Count: len(history)})
}
