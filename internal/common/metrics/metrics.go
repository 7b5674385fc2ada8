// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_requests_routed_total",
			Help: "Total number of requests routed by decision",
		},
		[]string{"decision"},
	)

	RequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_request_errors_total",
			Help: "Total number of requests that surfaced an error",
		},
		[]string{"error_code"},
	)

	LookupFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_lookup_fallbacks_total",
			Help: "Total number of knowledge lookups that fell back to web search",
		},
	)

	TicketsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_tickets_submitted_total",
			Help: "Total number of ticket submissions by outcome",
		},
		[]string{"status"},
	)

	SubmissionAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assistant_submission_attempts",
			Help:    "Number of HTTP attempts per ticket submission",
			Buckets: []float64{1, 2, 3},
		},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_request_duration_seconds",
			Help: "Duration of request handling in seconds",
		},
		[]string{"decision"},
	)
)
