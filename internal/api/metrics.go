package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bodega",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests handled, by endpoint, method and status code.",
	}, []string{"handler", "method", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bodega",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, by endpoint and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"handler", "method"})
)
