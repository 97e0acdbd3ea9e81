package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the desktop runtime.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Reducer metrics
	ActionsTotal   *prometheus.CounterVec
	ActionErrors   *prometheus.CounterVec
	ReduceDuration prometheus.Histogram

	// Effect metrics
	EffectsTotal   *prometheus.CounterVec
	EffectFailures *prometheus.CounterVec

	// Shell metrics
	WindowsOpen      prometheus.Gauge
	InboxEventsTotal prometheus.Counter
	InboxDropsTotal  prometheus.Counter

	// Session metrics
	SessionsSaved    prometheus.Counter
	SessionsRestored prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time
}

// NewMetrics creates and registers metrics on a private registry.
func NewMetrics() (*Metrics, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	factory := func(c prometheus.Collector) prometheus.Collector {
		registry.MustRegister(c)
		return c
	}

	m := &Metrics{
		startTime: time.Now(),
		RequestsTotal: factory(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktopd_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		)).(*prometheus.CounterVec),
		RequestDuration: factory(prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "desktopd_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		)).(*prometheus.HistogramVec),
		ActionsTotal: factory(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktopd_actions_total",
				Help: "Total reducer actions processed",
			},
			[]string{"action"},
		)).(*prometheus.CounterVec),
		ActionErrors: factory(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktopd_action_errors_total",
				Help: "Reducer actions rejected with an error",
			},
			[]string{"action"},
		)).(*prometheus.CounterVec),
		ReduceDuration: factory(prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "desktopd_reduce_duration_seconds",
				Help:    "State transition duration in seconds",
				Buckets: []float64{.00001, .0001, .001, .01, .1},
			},
		)).(prometheus.Histogram),
		EffectsTotal: factory(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktopd_effects_total",
				Help: "Total effects executed",
			},
			[]string{"effect"},
		)).(*prometheus.CounterVec),
		EffectFailures: factory(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktopd_effect_failures_total",
				Help: "Effects whose execution failed",
			},
			[]string{"effect"},
		)).(*prometheus.CounterVec),
		WindowsOpen: factory(prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "desktopd_windows_open",
				Help: "Number of open windows",
			},
		)).(prometheus.Gauge),
		InboxEventsTotal: factory(prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "desktopd_ipc_inbox_events_total",
				Help: "Total IPC events delivered to window inboxes",
			},
		)).(prometheus.Counter),
		InboxDropsTotal: factory(prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "desktopd_ipc_inbox_drops_total",
				Help: "IPC events evicted from full window inboxes",
			},
		)).(prometheus.Counter),
		SessionsSaved: factory(prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "desktopd_sessions_saved_total",
				Help: "Named sessions saved",
			},
		)).(prometheus.Counter),
		SessionsRestored: factory(prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "desktopd_sessions_restored_total",
				Help: "Named sessions restored",
			},
		)).(prometheus.Counter),
		WSConnections: factory(prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "desktopd_ws_connections",
				Help: "Active WebSocket connections",
			},
		)).(prometheus.Gauge),
		WSMessages: factory(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktopd_ws_messages_total",
				Help: "WebSocket messages by direction and type",
			},
			[]string{"direction", "type"},
		)).(*prometheus.CounterVec),
	}
	return m, registry
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAction records a processed reducer action.
func (m *Metrics) RecordAction(action string, duration time.Duration, err error) {
	m.ActionsTotal.WithLabelValues(action).Inc()
	m.ReduceDuration.Observe(duration.Seconds())
	if err != nil {
		m.ActionErrors.WithLabelValues(action).Inc()
	}
}

// RecordEffect records an executed effect and its outcome.
func (m *Metrics) RecordEffect(effect string, err error) {
	m.EffectsTotal.WithLabelValues(effect).Inc()
	if err != nil {
		m.EffectFailures.WithLabelValues(effect).Inc()
	}
}

// Uptime returns how long this process has been running.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}
