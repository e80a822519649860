package common

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Generation outcomes recorded by the workflow.
const (
	OutcomeSuccess            = "success"
	OutcomeNoAccess           = "no_access"
	OutcomeInvalidInput       = "invalid_input"
	OutcomeInsufficientTokens = "insufficient_tokens"
	OutcomeGenerationFailed   = "generation_failed"
	OutcomeTimeout            = "timeout"
	OutcomeError              = "error"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quillpress_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quillpress_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quillpress_generations_total",
			Help: "Blog post generation attempts by outcome",
		},
		[]string{"outcome"},
	)

	GenerationStepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quillpress_generation_step_duration_seconds",
			Help:    "Latency of the external generation calls",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"step"},
	)

	ImageFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quillpress_image_failures_total",
			Help: "Featured image generations that failed and were skipped",
		},
	)

	TokensDebitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quillpress_tokens_debited_total",
			Help: "Tokens debited by committed generations",
		},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quillpress_rate_limited_total",
			Help: "Generation requests rejected by the rate limiter",
		},
	)
)
