package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts requests by route pattern, method and status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assessment_http_requests_total",
		Help: "Total HTTP requests by route, method and status code",
	}, []string{"route", "method", "status"})

	// HTTPDuration tracks request latency by route pattern
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assessment_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// RoundMutations counts round registry writes by action
	RoundMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assessment_round_mutations_total",
		Help: "Total round writes by action",
	}, []string{"action"})

	// SessionsResolved counts sessions resolved for delivery
	SessionsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assessment_sessions_resolved_total",
		Help: "Total sessions created or resumed for question delivery",
	})

	// SessionsPopulated counts sessions whose question set was sampled and stored
	SessionsPopulated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assessment_sessions_populated_total",
		Help: "Total sessions populated by source table",
	}, []string{"source"})

	// SampledQuestions tracks the size of sampled question sets
	SampledQuestions = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assessment_sampled_questions",
		Help:    "Number of questions sampled per session",
		Buckets: []float64{0, 5, 10, 20, 40, 60, 100, 200},
	}, []string{"source", "strategy"})

	// HydrationMissing counts refs whose content could not be found
	HydrationMissing = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assessment_hydration_missing_total",
		Help: "Total question refs dropped because their content is missing",
	}, []string{"source"})

	// DeliveryErrors counts failed deliveries by error code
	DeliveryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assessment_delivery_errors_total",
		Help: "Total failed question deliveries by error code",
	}, []string{"code"})
)
