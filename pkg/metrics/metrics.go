package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/amoylab/rentmanager/internal/common/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors of the apiserver. All recording
// methods are safe on a nil receiver so callers may run without metrics.
type Metrics struct {
	registry *prometheus.Registry

	httpReqCnt *prometheus.CounterVec
	httpDur    *prometheus.HistogramVec
	httpInfl   *prometheus.GaugeVec

	roomTransitions     *prometheus.CounterVec
	reconcileCorrected  prometheus.Counter
	reconcileRuns       *prometheus.CounterVec
	eventPublishFailure prometheus.Counter
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: r,
		httpReqCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "http_requests_total",
		}, []string{"method", "route", "status"}),
		httpDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Name: "http_request_duration_seconds", Buckets: buckets,
		}, []string{"method", "route", "status"}),
		httpInfl: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns, Name: "http_requests_inflight",
		}, []string{"route"}),
		roomTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "room_status_transitions_total",
			Help: "Room status changes applied by tenant mutations and reconciliation.",
		}, []string{"from", "to", "reason"}),
		reconcileCorrected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "reconcile_corrections_total",
			Help: "Rooms whose stored status disagreed with their active tenants.",
		}),
		reconcileRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "reconcile_runs_total",
		}, []string{"status"}),
		eventPublishFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "room_event_publish_failures_total",
		}),
	}
	r.MustRegister(m.httpReqCnt, m.httpDur, m.httpInfl)
	r.MustRegister(m.roomTransitions, m.reconcileCorrected, m.reconcileRuns, m.eventPublishFailure)
	return m
}

func (m *Metrics) RoomTransition(from, to, reason string) {
	if m == nil {
		return
	}
	m.roomTransitions.WithLabelValues(from, to, reason).Inc()
}

func (m *Metrics) ReconcileRun(corrections int, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.reconcileRuns.WithLabelValues(status).Inc()
	m.reconcileCorrected.Add(float64(corrections))
}

func (m *Metrics) EventPublishFailed() {
	if m == nil {
		return
	}
	m.eventPublishFailure.Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
