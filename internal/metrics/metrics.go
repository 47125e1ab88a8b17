package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ⭐ SSOT: every scamdunk_* collector is declared here
var (
	scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamdunk_scans_total",
			Help: "Total number of risk scans by asset type, risk level and scoring path",
		},
		[]string{"asset_type", "risk_level", "path"},
	)

	scanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scamdunk_scan_duration_seconds",
			Help:    "Risk scan duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"path"},
	)

	fallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamdunk_ai_fallbacks_total",
			Help: "Total number of scans that fell back to deterministic scoring",
		},
		[]string{"reason"},
	)

	inferenceRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamdunk_inference_requests_total",
			Help: "Total number of inference backend calls by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scamdunk_inference_breaker_state",
			Help: "Inference circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	schemeTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamdunk_scheme_transitions_total",
			Help: "Total number of scheme status transitions",
		},
		[]string{"from", "to"},
	)

	schemesByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scamdunk_schemes",
			Help: "Current number of schemes by status",
		},
		[]string{"status"},
	)

	trackingRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamdunk_tracking_runs_total",
			Help: "Total number of daily tracking runs by result",
		},
		[]string{"result"},
	)

	promotersGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scamdunk_promoters",
			Help: "Promoter database counters",
		},
		[]string{"kind"},
	)

	alertListSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scamdunk_alert_list_size",
			Help: "Number of tickers on the regulatory alert list",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamdunk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scamdunk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"route", "method"},
	)

	regOnce sync.Once
)

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	regOnce.Do(func() {
		prometheus.MustRegister(
			scansTotal, scanDuration, fallbacksTotal,
			inferenceRequests, breakerState,
			schemeTransitions, schemesByStatus, trackingRuns,
			promotersGauge, alertListSize,
			httpRequests, httpDuration,
		)
	})
}

// Handler serves the default registry
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

// RecordScan records one completed scan
func RecordScan(assetType, riskLevel, path string, d time.Duration) {
	scansTotal.WithLabelValues(assetType, riskLevel, path).Inc()
	scanDuration.WithLabelValues(path).Observe(d.Seconds())
}

// RecordFallback records a deterministic fallback with a short reason label
func RecordFallback(reason string) {
	fallbacksTotal.WithLabelValues(reason).Inc()
}

// RecordInference records one inference call outcome ("ok", "timeout", ...)
func RecordInference(endpoint, outcome string) {
	inferenceRequests.WithLabelValues(endpoint, outcome).Inc()
}

// SetBreakerState records the breaker state code for name
func SetBreakerState(name string, state int) {
	breakerState.WithLabelValues(name).Set(float64(state))
}

// RecordTransition records a scheme status change
func RecordTransition(from, to string) {
	schemeTransitions.WithLabelValues(from, to).Inc()
}

// SetSchemeCounts replaces the per-status scheme gauges
func SetSchemeCounts(counts map[string]int) {
	schemesByStatus.Reset()
	for status, n := range counts {
		schemesByStatus.WithLabelValues(status).Set(float64(n))
	}
}

// RecordTrackingRun records a tracking run result ("ok" or "error")
func RecordTrackingRun(result string) {
	trackingRuns.WithLabelValues(result).Inc()
}

// SetPromoterCounts records the promoter database counters
func SetPromoterCounts(total, active, serial int) {
	promotersGauge.WithLabelValues("total").Set(float64(total))
	promotersGauge.WithLabelValues("active").Set(float64(active))
	promotersGauge.WithLabelValues("serial_offender").Set(float64(serial))
}

// SetAlertListSize records the current alert list length
func SetAlertListSize(n int) {
	alertListSize.Set(float64(n))
}

// Middleware records request counts and latency labelled by mux route template
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := routeLabel(r)
		httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(rw.status)).Inc()
		httpDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
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

// Hijack lets websocket upgrades pass through the middleware
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// routeLabel prefers the mux path template to keep label cardinality low
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
