// Package obs holds the engine's Prometheus metrics and HTTP
// instrumentation.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ztcore_decisions_total",
			Help: "Access decisions by outcome.",
		},
		[]string{"decision"},
	)

	EvaluationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ztcore_evaluation_duration_seconds",
		Help:    "Access evaluation latencies in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	VerificationCyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ztcore_verification_cycles_total",
		Help: "Completed continuous verification cycles.",
	})

	AnomaliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ztcore_anomalies_total",
			Help: "Anomalies detected during verification, by severity.",
		},
		[]string{"severity"},
	)

	TrackedEntities = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ztcore_tracked_entities",
		Help: "Entities with a trust record.",
	})

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

// Init registers all metrics with the default registry.
func Init() {
	prometheus.MustRegister(
		DecisionsTotal,
		EvaluationDuration,
		VerificationCyclesTotal,
		AnomaliesTotal,
		TrackedEntities,
		httpInFlight,
		httpRequestsTotal,
		httpRequestDuration,
	)
}

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument wraps an HTTP handler with request metrics.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter captures the response code for labeling.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
