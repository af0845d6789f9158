package handlers

import (
	"net/http"
)

// Routes groups the handlers mounted by RegisterRoutes
type Routes struct {
	Rounds       *RoundHandler
	Delivery     *DeliveryHandler
	Availability *AvailabilityHandler
	Health       *HealthHandler
	Metrics      http.Handler // optional
	Docs         http.Handler // optional, serves /swagger/
}

// RegisterRoutes mounts all endpoints on mux. Round maintenance is wrapped by
// maintain, which resolves the acting identity.
func RegisterRoutes(mux *http.ServeMux, routes Routes, maintain func(http.Handler) http.Handler) {
	protect := func(h http.HandlerFunc) http.Handler {
		if maintain == nil {
			return h
		}
		return maintain(h)
	}

	// Round maintenance
	mux.Handle("GET /rounds", protect(routes.Rounds.ListRounds))
	mux.Handle("POST /rounds", protect(routes.Rounds.CreateRound))
	mux.Handle("GET /rounds/{id}", protect(routes.Rounds.GetRound))
	mux.Handle("PUT /rounds/{id}", protect(routes.Rounds.UpdateRound))
	mux.Handle("DELETE /rounds/{id}", protect(routes.Rounds.DeleteRound))
	mux.Handle("GET /rounds/{id}/history", protect(routes.Rounds.GetRoundHistory))

	// Worker delivery
	mux.HandleFunc("GET /worker/rounds/{id}/questions", routes.Delivery.GetQuestions)
	mux.HandleFunc("POST /worker/rounds/{id}/submit", routes.Delivery.Submit)
	mux.HandleFunc("GET /worker/availability", routes.Availability.GetAvailability)
	mux.HandleFunc("PUT /worker/availability", routes.Availability.SetAvailability)

	// System
	mux.HandleFunc("GET /health", routes.Health.Health)
	if routes.Metrics != nil {
		mux.Handle("GET /metrics", routes.Metrics)
	}
	if routes.Docs != nil {
		mux.Handle("GET /swagger/", routes.Docs)
	}
}
