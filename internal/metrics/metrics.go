// Package metrics provides Prometheus metrics for the davbridge gateway.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	storeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "davbridge_store_requests_total",
			Help: "Total storage operations issued by the gateway",
		},
		[]string{"driver", "operation", "result"},
	)

	storeRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "davbridge_store_request_duration_seconds",
			Help:    "Storage operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"driver", "operation"},
	)

	uploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "davbridge_upload_bytes_total",
			Help: "Total bytes uploaded through the gateway",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveStore records one storage operation.
func ObserveStore(driver, operation string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	storeRequestsTotal.WithLabelValues(driver, operation, result).Inc()
	storeRequestDuration.WithLabelValues(driver, operation).Observe(time.Since(start).Seconds())
}

// AddUploadBytes records bytes successfully uploaded.
func AddUploadBytes(n int64) {
	if n > 0 {
		uploadBytesTotal.Add(float64(n))
	}
}
