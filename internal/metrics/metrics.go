// Package metrics provides Prometheus instrumentation for the solvency
// engine.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QuotesTotal counts quotes issued, partitioned by kind.
	QuotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solvency_quotes_total",
		Help: "Total number of quotes issued",
	}, []string{"kind"})

	// QuoteLatency tracks quote computation latency by kind.
	QuoteLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solvency_quote_latency_seconds",
		Help:    "Quote computation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	// StressScenariosTotal counts stress-test scenarios evaluated.
	StressScenariosTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solvency_stress_scenarios_total",
		Help: "Total stress-test scenarios evaluated",
	})

	// RegisteredProfiles tracks the number of registered entity profiles.
	RegisteredProfiles = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "solvency_registered_profiles",
		Help: "Number of registered entity profiles",
	}, []string{"entity"})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "solvency_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// CapacityRejections counts reinsurance requests rejected by the
	// capacity limiter.
	CapacityRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solvency_capacity_rejections_total",
		Help: "Reinsurance requests rejected by capacity limits",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solvency_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solvency_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the route pattern for path label to avoid high cardinality.
		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack passes connection hijacking through to the underlying writer so
// WebSocket upgrades work behind the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: underlying writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}
