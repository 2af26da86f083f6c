// Package metrics defines the Prometheus instrumentation for the
// service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leaderboard"

// Upstream fetch metrics
var (
	// UpstreamFetchesTotal tracks Dota 2 API fetches by region and outcome
	UpstreamFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fetches_total",
			Help:      "Total upstream leaderboard fetches by region and status",
		},
		[]string{"region", "status"},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state_changes_total",
			Help:      "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)
)

// Refresh cycle metrics
var (
	// RefreshCyclesTotal tracks refresh cycles by outcome (ok/empty/error)
	RefreshCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_cycles_total",
			Help:      "Total refresh cycles by outcome",
		},
		[]string{"outcome"},
	)

	// RefreshRowsReplaced tracks rows written per region on the last refresh
	RefreshRowsReplaced = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresh_rows_replaced",
			Help:      "Rows stored per region by the most recent refresh",
		},
		[]string{"region"},
	)

	// LastRefreshTimestamp is the unix time of the last successful refresh
	LastRefreshTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful refresh",
		},
	)
)

// Query cache metrics
var (
	// CacheRequestsTotal tracks cache lookups by result (hit/miss/error/bypass)
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Query cache lookups by result",
		},
		[]string{"result"},
	)
)

// Handler returns an http.Handler that serves the default Prometheus
// registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
