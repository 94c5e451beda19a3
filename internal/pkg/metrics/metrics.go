// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "Number of HTTP requests being served",
		},
	)

	wsClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_ws_clients",
			Help: "Number of connected board clients",
		},
	)

	leadMoves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_lead_moves_total",
			Help: "Lead moves accepted by the pipeline, by destination column",
		},
		[]string{"destination"},
	)

	persistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_persist_failures_total",
			Help: "Lead moves the store failed to persist",
		},
	)

	rollbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_rollbacks_total",
			Help: "Optimistic moves undone after a persistence failure",
		},
		[]string{"mode"},
	)

	conversions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_conversions_total",
			Help: "Lead to user conversions, by outcome",
		},
		[]string{"outcome"},
	)

	reloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_reloads_total",
			Help: "Board reloads from the store, by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordMove(destination string) {
	leadMoves.WithLabelValues(destination).Inc()
}

func RecordPersistFailure() {
	persistFailures.Inc()
}

// RecordRollback takes "revert" or "reload".
func RecordRollback(mode string) {
	rollbacks.WithLabelValues(mode).Inc()
}

func RecordConversion(ok bool) {
	conversions.WithLabelValues(outcome(ok)).Inc()
}

func RecordReload(ok bool) {
	reloads.WithLabelValues(outcome(ok)).Inc()
}

func ClientConnected() {
	wsClients.Inc()
}

func ClientDisconnected() {
	wsClients.Dec()
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
