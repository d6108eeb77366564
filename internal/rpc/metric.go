package rpc

import (
	"github.com/prometheus/client_golang/prometheus"
)

const MetricNameSpace = "wallet_rpc"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "requests_total",
			Help:      "JSON-RPC requests by coin, method and result",
		},
		[]string{"coin", "method", "result"},
	)

	requestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: MetricNameSpace,
			Name:      "request_seconds",
			Help:      "JSON-RPC round trip latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"coin"},
	)
)

func init() {
	prometheus.MustRegister(
		requestsTotal,
		requestSeconds,
	)
}

func metricRequest(coin, method, result string, seconds float64) {
	if method == "" {
		method = "unknown"
	}
	requestsTotal.WithLabelValues(coin, method, result).Inc()
	requestSeconds.WithLabelValues(coin).Observe(seconds)
}
