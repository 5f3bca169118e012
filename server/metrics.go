package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ulog_analysis",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method and status code.",
	}, []string{"method", "code"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ulog_analysis",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	})

	uploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ulog_analysis",
		Name:      "uploads_total",
		Help:      "Accepted log file uploads.",
	})
)
