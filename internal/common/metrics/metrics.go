package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "pizza-service/internal/common/errors"
)

var (
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total number of data store operations",
		},
		[]string{"store", "operation"},
	)

	StoreOperationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_failed_total",
			Help: "Total number of failed data store operations by status class",
		},
		[]string{"store", "operation", "status"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "store_operation_duration_seconds",
			Help: "Duration of data store operations in seconds",
		},
		[]string{"store", "operation"},
	)
)

// Record updates the operation counters and duration histogram. Failures
// are labeled with the error's status classification.
func Record(store, operation string, start time.Time, err error) {
	StoreOperations.WithLabelValues(store, operation).Inc()
	StoreOperationDuration.WithLabelValues(store, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreOperationsFailed.WithLabelValues(store, operation, string(apperrors.StatusOf(err))).Inc()
	}
}
