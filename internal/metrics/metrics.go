package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// JobRunsTotal counts completed scheduler job runs by job name.
	JobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_job_runs_total",
			Help: "Total number of scheduler job runs by job",
		},
		[]string{"job"},
	)

	// BackendErrorsTotal counts failed calls to the operations backend by operation.
	BackendErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_errors_total",
			Help: "Total number of failed backend calls by operation",
		},
		[]string{"op"},
	)

	// ExportsTotal counts exports by format (png, pdf) and result (ok, error).
	ExportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Total number of view exports by format and result",
		},
		[]string{"format", "result"},
	)

	// UnreadNotifications is the number of unread notifications in the feed.
	UnreadNotifications = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notifications_unread",
			Help: "Number of unread notifications",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, JobRunsTotal, BackendErrorsTotal, ExportsTotal, UnreadNotifications)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /v1/users/123 -> /v1/users/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

func IncJobRuns(job string) {
	JobRunsTotal.WithLabelValues(job).Inc()
}

func IncBackendErrors(op string) {
	BackendErrorsTotal.WithLabelValues(op).Inc()
}

// RecordExport counts one export attempt; err decides the result label.
func RecordExport(format string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ExportsTotal.WithLabelValues(format, result).Inc()
}

func SetUnreadNotifications(n int) {
	UnreadNotifications.Set(float64(n))
}
