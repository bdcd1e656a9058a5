// Package metrics provides Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Catalog transport
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodbox_catalog_requests_total",
			Help: "Total number of catalog HTTP attempts by status class",
		},
		[]string{"status"}, // "2xx", "4xx", "429", "5xx", "error"
	)

	CatalogRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodbox_catalog_retries_total",
			Help: "Total number of catalog retries by reason",
		},
		[]string{"reason"}, // "rate_limit", "server", "network", "timeout"
	)

	CatalogRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moodbox_catalog_request_duration_seconds",
			Help:    "Duration of catalog HTTP attempts in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moodbox_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodbox_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodbox_circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	// Caches
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodbox_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodbox_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// Pipeline
	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodbox_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
		},
		[]string{"source"},
	)

	RecommendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodbox_recommend_errors_total",
			Help: "Total number of failed recommendation requests",
		},
		[]string{"kind"}, // "bad_input", "auth", "internal"
	)

	PoolSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodbox_pool_size",
			Help:    "Candidate pool size at each pipeline stage",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 200, 400},
		},
		[]string{"stage"}, // "gathered", "filtered", "scored", "language", "final"
	)

	PoolExpansions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodbox_pool_expansions_total",
			Help: "Total number of candidate pool expansions by strategy",
		},
		[]string{"strategy"}, // "related_artists", "fallback_search", "language_hints"
	)
)

// StatusClass buckets an HTTP status code for the request counter.
func StatusClass(code int) string {
	switch {
	case code == 429:
		return "429"
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 200 && code < 300:
		return "2xx"
	default:
		return "other"
	}
}
