package http_clients

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	microserviceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microservice_requests_total",
			Help: "Total number of outbound requests to backing microservices.",
		},
		[]string{"service", "method", "path", "status_code"},
	)

	microserviceRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "microservice_request_duration_seconds",
			Help:    "Latency of outbound requests to backing microservices.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
)

func observeCall(service, method, path, status string, elapsed time.Duration) {
	microserviceRequestsTotal.WithLabelValues(service, method, path, status).Inc()
	microserviceRequestDurationSeconds.WithLabelValues(service, method, path).Observe(elapsed.Seconds())
}
