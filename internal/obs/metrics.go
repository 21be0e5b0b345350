package obs

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Statement build metrics.
var (
	statementBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statement_builds_total",
			Help: "Statement builds by report and terminal status.",
		},
		[]string{"report", "status"},
	)

	statementBuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "statement_build_duration_seconds",
			Help:    "Statement build latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"report"},
	)

	statementWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statement_warnings_total",
			Help: "Data-quality warnings attached to statement results.",
		},
		[]string{"kind"},
	)
)

// HTTP metrics.
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

var initOnce sync.Once

// Init registers all metrics with the default registry. Safe to call more
// than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			statementBuilds, statementBuildDuration, statementWarnings,
			httpInFlight, httpRequestsTotal, httpRequestDuration,
		)
	})
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ReportBuild records one statement build reaching a terminal state.
func ReportBuild(report, status string, d time.Duration) {
	statementBuilds.WithLabelValues(report, status).Inc()
	statementBuildDuration.WithLabelValues(report).Observe(d.Seconds())
}

// ReportWarning counts one data-quality warning by kind.
func ReportWarning(kind string) {
	statementWarnings.WithLabelValues(kind).Inc()
}

// Instrument wraps an HTTP handler with RPS, latency, and in-flight gauges.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		start := time.Now()
		rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		status := strconv.Itoa(rec.status)
		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
