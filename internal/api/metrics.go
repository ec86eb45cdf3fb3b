package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	crowdgate "github.com/e7canasta/crowd-gate"
)

// Metrics holds the server's Prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	evaluationsTotal  prometheus.Counter
	gateStatusTotal   *prometheus.CounterVec
	estimateCount     prometheus.Gauge
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		evaluationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crowdgate_evaluations_total",
			Help: "Total gate evaluations served.",
		}),
		gateStatusTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crowdgate_gate_status_total",
			Help: "Gate classifications by gate and status.",
		}, []string{"gate", "status"}),
		estimateCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "crowdgate_estimate_count",
			Help: "Most recent crowd estimate.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.evaluationsTotal,
		m.gateStatusTotal,
		m.estimateCount,
		m.httpRequestsTotal,
		m.httpDuration,
	)

	return m
}

// ObserveEvaluation counts one evaluation and its per-gate statuses
func (m *Metrics) ObserveEvaluation(eval crowdgate.Evaluation) {
	m.evaluationsTotal.Inc()
	for _, g := range eval.Gates {
		m.gateStatusTotal.WithLabelValues(g.Name, g.Status.String()).Inc()
	}
}

// SetEstimate records the latest estimate
func (m *Metrics) SetEstimate(count int) {
	m.estimateCount.Set(float64(count))
}

// Handler exposes the private registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Middleware records request count and latency labelled by route template
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		route := "unknown"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
