package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search channel Prometheus metrics.
var (
	SearchChannelTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "envdex",
			Name:      "search_channel_total",
			Help:      "Search channel outcomes per retrieval channel",
		},
		[]string{"channel", "status"}, // channel: "semantic" / "lexical", status: "ok" / "error" / "fallback"
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "envdex",
			Name:      "search_request_duration_seconds",
			Help:      "Hybrid search duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"mode"}, // "hybrid" / "semantic" / "keyword"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchChannelTotal)
	prometheus.MustRegister(SearchRequestDuration)
	searchMetricsRegistered = true
}
