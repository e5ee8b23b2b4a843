package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/emilianohg/waypoint/internal/planner"
)

var (
	// HTTP request latency in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "waypoint",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "waypoint",
			Name:      "store_operations_total",
			Help:      "Planning store operations by outcome",
		},
		[]string{"operation", "result"}, // result: ok, not_found, invalid, failed
	)
)

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if path == "" {
		path = "unmatched"
	}
	HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordStoreOperation counts one store call under the outcome err maps to.
func RecordStoreOperation(operation string, err error) {
	StoreOperations.WithLabelValues(operation, Result(err)).Inc()
}

func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, planner.ErrNotFound):
		return "not_found"
	case errors.Is(err, planner.ErrValidation):
		return "invalid"
	default:
		return "failed"
	}
}
