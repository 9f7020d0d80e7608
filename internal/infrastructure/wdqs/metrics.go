package wdqs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK             = "ok"
	outcomeUpstreamError  = "upstream_error"
	outcomeTransportError = "transport_error"
)

var (
	upstreamCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_queries_total",
			Help: "SPARQL queries sent upstream by outcome",
		},
		[]string{"outcome"},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_query_duration_seconds",
			Help:    "Upstream SPARQL query latency including retries",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(upstreamCalls)
	prometheus.MustRegister(upstreamDuration)
}

// UpstreamCalls exposes the call counter for tests and dashboards.
func UpstreamCalls() *prometheus.CounterVec {
	return upstreamCalls
}

func observeCall(outcome string, start time.Time) {
	upstreamCalls.WithLabelValues(outcome).Inc()
	upstreamDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
