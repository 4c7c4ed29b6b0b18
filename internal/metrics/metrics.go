// Package metrics declares the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation results used as the "result" label.
const (
	ResultOK       = "ok"
	ResultInvalid  = "invalid"
	ResultConflict = "conflict"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

var (
	StudentOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "student_operations_total",
			Help: "Student record operations by outcome",
		},
		[]string{"op", "result"},
	)

	StudentsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "students_deleted_total",
			Help: "Student records removed by delete and delete-all",
		},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
