// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Calculation metrics
	ChartsComputed     *prometheus.CounterVec
	CalculationErrors  *prometheus.CounterVec
	CalculationLatency *prometheus.HistogramVec
	HouseFallbacks     prometheus.Counter
	NatalCacheHits     prometheus.Counter
	NatalCacheMisses   prometheus.Counter

	// G-Code metrics
	DailyGCodesComputed prometheus.Counter
	IntensityScores     prometheus.Histogram

	// Job metrics
	JobRunsTotal      *prometheus.CounterVec
	JobDuration       *prometheus.HistogramVec
	RecordsDeleted    prometheus.Counter
	LastSuccessfulJob *prometheus.GaugeVec

	// API metrics
	HTTPRequests     *prometheus.CounterVec
	WebsocketClients prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg registers with the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "spiritual_gcode"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		// Calculation metrics
		ChartsComputed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "astro",
			Name:      "charts_computed_total",
			Help:      "Total number of charts computed by kind",
		}, []string{"kind"}),
		CalculationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "astro",
			Name:      "calculation_errors_total",
			Help:      "Total number of failed calculations by operation",
		}, []string{"op"}),
		CalculationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "astro",
			Name:      "calculation_latency_seconds",
			Help:      "Calculation latency in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"kind"}),
		HouseFallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "astro",
			Name:      "house_fallbacks_total",
			Help:      "Total number of Placidus computations that fell back to equal houses",
		}),
		NatalCacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gcode",
			Name:      "natal_cache_hits_total",
			Help:      "Total number of natal chart cache hits",
		}),
		NatalCacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gcode",
			Name:      "natal_cache_misses_total",
			Help:      "Total number of natal chart cache misses",
		}),

		// G-Code metrics
		DailyGCodesComputed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gcode",
			Name:      "daily_computed_total",
			Help:      "Total number of daily G-Codes computed",
		}),
		IntensityScores: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gcode",
			Name:      "intensity_score",
			Help:      "Distribution of daily intensity scores",
			Buckets:   []float64{25, 50, 75, 100},
		}),

		// Job metrics
		JobRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Total number of job runs by status",
		}, []string{"job", "status"}),
		JobDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "Job execution duration in seconds",
			Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 300},
		}, []string{"job"}),
		RecordsDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "records_deleted_total",
			Help:      "Total number of daily records removed by cleanup",
		}),
		LastSuccessfulJob: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_job_timestamp",
			Help:      "Unix timestamp of last successful job run",
		}, []string{"job"}),

		// API metrics
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests by route and status",
		}, []string{"route", "status"}),
		WebsocketClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "websocket_clients",
			Help:      "Current number of connected dashboard clients",
		}),

		// Database metrics
		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordChart records a successful calculation of the given kind.
func RecordChart(kind string, elapsed time.Duration) {
	DefaultMetrics.ChartsComputed.WithLabelValues(kind).Inc()
	DefaultMetrics.CalculationLatency.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// RecordCalculationError records a failed calculation.
func RecordCalculationError(op string) {
	DefaultMetrics.CalculationErrors.WithLabelValues(op).Inc()
}

// RecordHouseFallback increments the equal-house fallback counter.
func RecordHouseFallback() {
	DefaultMetrics.HouseFallbacks.Inc()
}

// RecordNatalCache records a natal chart cache lookup.
func RecordNatalCache(hit bool) {
	if hit {
		DefaultMetrics.NatalCacheHits.Inc()
		return
	}
	DefaultMetrics.NatalCacheMisses.Inc()
}

// RecordDailyGCode records a computed daily G-Code.
func RecordDailyGCode(score int) {
	DefaultMetrics.DailyGCodesComputed.Inc()
	DefaultMetrics.IntensityScores.Observe(float64(score))
}

// RecordJobRun records a job run.
func RecordJobRun(job, status string, elapsed time.Duration) {
	DefaultMetrics.JobRunsTotal.WithLabelValues(job, status).Inc()
	DefaultMetrics.JobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
	if status == StatusSuccess {
		DefaultMetrics.LastSuccessfulJob.WithLabelValues(job).SetToCurrentTime()
	}
}

// RecordRecordsDeleted adds n to the cleanup counter.
func RecordRecordsDeleted(n int64) {
	DefaultMetrics.RecordsDeleted.Add(float64(n))
}

// RecordHTTPRequest records a served API request.
func RecordHTTPRequest(route string, status int) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, statusClass(status)).Inc()
}

// SetWebsocketClients updates the connected client gauge.
func SetWebsocketClients(n int) {
	DefaultMetrics.WebsocketClients.Set(float64(n))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// Job run statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusSkipped = "skipped"
)

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
