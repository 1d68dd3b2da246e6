// Package observability provides Prometheus metrics for the application.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics.
type Metrics struct {
	// Job metrics
	JobsCreated    prometheus.Counter
	JobsCompleted  prometheus.Counter
	JobsFailed     prometheus.Counter
	JobsInProgress prometheus.Gauge
	JobDuration    prometheus.Histogram

	// Extraction metrics
	ExtractRequestsTotal *prometheus.CounterVec
	ExtractErrors        *prometheus.CounterVec

	// Push channel metrics
	SessionsActive prometheus.Gauge
	EventsSent     *prometheus.CounterVec
	EventsDropped  *prometheus.CounterVec

	// Storage metrics
	CleanupJobsTotal  prometheus.Counter
	CleanupFilesTotal prometheus.Counter
	StoredJobsTotal   prometheus.Gauge

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Summary metrics
	SummariesTotal prometheus.Counter
}

// New creates and registers all application metrics.
func New() *Metrics {
	return &Metrics{
		JobsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "grabtube",
			Subsystem: "jobs",
			Name:      "created_total",
			Help:      "Total number of download jobs created",
		}),
		JobsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "grabtube",
			Subsystem: "jobs",
			Name:      "completed_total",
			Help:      "Total number of jobs completed successfully",
		}),
		JobsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "grabtube",
			Subsystem: "jobs",
			Name:      "failed_total",
			Help:      "Total number of jobs that failed",
		}),
		JobsInProgress: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "grabtube",
			Subsystem: "jobs",
			Name:      "in_progress",
			Help:      "Number of jobs currently in progress",
		}),
		JobDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "grabtube",
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "Histogram of job download duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		}),

		ExtractRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grabtube",
			Subsystem: "extract",
			Name:      "requests_total",
			Help:      "Total number of metadata extraction requests",
		}, []string{"downloader", "status"}),
		ExtractErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grabtube",
			Subsystem: "extract",
			Name:      "errors_total",
			Help:      "Total number of extraction errors",
		}, []string{"downloader", "error_type"}),

		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "grabtube",
			Subsystem: "push",
			Name:      "sessions_active",
			Help:      "Number of connected push-channel sessions",
		}),
		EventsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grabtube",
			Subsystem: "push",
			Name:      "events_sent_total",
			Help:      "Total number of push events delivered",
		}, []string{"event"}),
		EventsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grabtube",
			Subsystem: "push",
			Name:      "events_dropped_total",
			Help:      "Total number of push events dropped (session gone or buffer full)",
		}, []string{"event"}),

		CleanupJobsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "grabtube",
			Subsystem: "storage",
			Name:      "cleanup_jobs_total",
			Help:      "Total number of expired jobs cleaned up",
		}),
		CleanupFilesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "grabtube",
			Subsystem: "storage",
			Name:      "cleanup_files_total",
			Help:      "Total number of expired files cleaned up",
		}),
		StoredJobsTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "grabtube",
			Subsystem: "storage",
			Name:      "jobs_current",
			Help:      "Current number of stored jobs",
		}),

		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grabtube",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "grabtube",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Histogram of HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),

		SummariesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "grabtube",
			Subsystem: "summary",
			Name:      "generated_total",
			Help:      "Total number of summaries generated",
		}),
	}
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// JobTimer returns a function to record job duration.
func (m *Metrics) JobTimer() func() {
	start := time.Now()

	return func() {
		m.JobDuration.Observe(time.Since(start).Seconds())
	}
}

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordJobCreated increments the jobs created counter.
func (m *Metrics) RecordJobCreated() {
	m.JobsCreated.Inc()
	m.JobsInProgress.Inc()
}

// RecordJobCompleted records a completed job.
func (m *Metrics) RecordJobCompleted() {
	m.JobsCompleted.Inc()
	m.JobsInProgress.Dec()
}

// RecordJobFailed records a failed job.
func (m *Metrics) RecordJobFailed() {
	m.JobsFailed.Inc()
	m.JobsInProgress.Dec()
}

// RecordExtractRequest records a metadata extraction request.
func (m *Metrics) RecordExtractRequest(downloader, status string) {
	m.ExtractRequestsTotal.WithLabelValues(downloader, status).Inc()
}

// RecordExtractError records an extraction error.
func (m *Metrics) RecordExtractError(downloader, errorType string) {
	m.ExtractErrors.WithLabelValues(downloader, errorType).Inc()
}

// RecordEventSent records a delivered push event.
func (m *Metrics) RecordEventSent(event string) {
	m.EventsSent.WithLabelValues(event).Inc()
}

// RecordEventDropped records a dropped push event.
func (m *Metrics) RecordEventDropped(event string) {
	m.EventsDropped.WithLabelValues(event).Inc()
}

// RecordCleanup records cleanup metrics.
func (m *Metrics) RecordCleanup(jobs, files int) {
	m.CleanupJobsTotal.Add(float64(jobs))
	m.CleanupFilesTotal.Add(float64(files))
}

// SetStoredJobs sets the number of stored jobs.
func (m *Metrics) SetStoredJobs(count int) {
	m.StoredJobsTotal.Set(float64(count))
}

// SetSessionsActive sets the number of connected sessions.
func (m *Metrics) SetSessionsActive(count int) {
	m.SessionsActive.Set(float64(count))
}

// RecordSummary increments the summaries counter.
func (m *Metrics) RecordSummary() {
	m.SummariesTotal.Inc()
}
