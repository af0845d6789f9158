package handlers

import (
	"net/http"
	"strings"

	"skill-assessment/internal/models"
	"skill-assessment/internal/service"
)

// RoundSummary is the worker-facing view of a round
type RoundSummary struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	QuestionCount   int    `json:"questionCount"`
	DurationMinutes int    `json:"durationMinutes"`
	PassingScore    int    `json:"passingScore"`
	ShowScore       bool   `json:"showScore"`
	ShowAnswers     bool   `json:"showAnswers"`
	ShowBreakdown   bool   `json:"showBreakdown"`
}

// QuestionsResponse is the question set of a session
type QuestionsResponse struct {
	Success   bool                       `json:"success"`
	SessionID string                     `json:"sessionId"`
	Round     RoundSummary               `json:"round"`
	Questions []models.DeliveredQuestion `json:"questions"`
}

// SubmitResponse echoes a submission together with its grading result
type SubmitResponse struct {
	Success bool `json:"success"`
	service.Submission
}

// DeliveryHandler serves worker question sets and submissions
type DeliveryHandler struct {
	deliveryService *service.DeliveryService
	gradingService  *service.GradingService
}

// NewDeliveryHandler creates a new delivery handler
func NewDeliveryHandler(deliveryService *service.DeliveryService, gradingService *service.GradingService) *DeliveryHandler {
	return &DeliveryHandler{
		deliveryService: deliveryService,
		gradingService:  gradingService,
	}
}

func summarize(r *models.Round) RoundSummary {
	return RoundSummary{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		Category:        r.Category,
		QuestionCount:   r.QuestionCount,
		DurationMinutes: r.DurationMinutes,
		PassingScore:    r.PassingScore,
		ShowScore:       r.ShowScore,
		ShowAnswers:     r.ShowAnswers,
		ShowBreakdown:   r.ShowBreakdown,
	}
}

func optionalQuery(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil
	}
	return &v
}

// GetQuestions returns the session's questions, sampling them on first access
// @Summary Get session questions
// @Tags Worker
// @Produce json
// @Param id path string true "Round ID"
// @Param sessionId query string false "Session to resume; generated when absent"
// @Param workerId query string false "Worker identity"
// @Param userId query string false "User identity"
// @Success 200 {object} QuestionsResponse
// @Failure 400 {object} ErrorResponse "invalid_session_round or invalid_session_id"
// @Failure 403 {object} ErrorResponse "Round is not active, Round has not started yet or Round has ended"
// @Failure 404 {object} ErrorResponse "not_found or no_questions_available"
// @Router /worker/rounds/{id}/questions [get]
func (h *DeliveryHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	req := service.SessionRequest{
		SessionID: r.URL.Query().Get("sessionId"),
		WorkerID:  optionalQuery(r, "workerId"),
		UserID:    optionalQuery(r, "userId"),
	}

	delivery, err := h.deliveryService.Deliver(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, QuestionsResponse{
		Success:   true,
		SessionID: delivery.SessionID,
		Round:     summarize(delivery.Round),
		Questions: delivery.Questions,
	})
}

// Submit accepts the answers of a session
// @Summary Submit answers
// @Tags Worker
// @Accept json
// @Produce json
// @Param id path string true "Round ID"
// @Param submission body service.SubmitRequest true "Answers keyed by question id"
// @Success 200 {object} SubmitResponse
// @Failure 400 {object} ErrorResponse "invalid_session_round"
// @Failure 404 {object} ErrorResponse "not_found"
// @Router /worker/rounds/{id}/submit [post]
func (h *DeliveryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidBody)
		return
	}

	submission, err := h.gradingService.Submit(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, SubmitResponse{Success: true, Submission: *submission})
}
