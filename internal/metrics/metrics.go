// Package metrics exposes Prometheus collectors for the command pipeline.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ecsbot"

// Metrics groups the collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	verifications   *prometheus.CounterVec
	commands        *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	collaboratorDur *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
}

// New registers all collectors (plus Go and process collectors) on a fresh registry.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signature_verifications_total",
			Help:      "Webhook signature checks by result",
		}, []string{"result"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Slash commands handled by action and result",
		}, []string{"action", "result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Protected-cluster notifications by result",
		}, []string{"result"}),
		collaboratorDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collaborator_call_duration_seconds",
			Help:      "Latency of orchestration, metrics and notification calls",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by path and status",
		}, []string{"path", "status"}),
	}

	for _, c := range []prometheus.Collector{
		m.verifications,
		m.commands,
		m.notifications,
		m.collaboratorDur,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := registerCollector(m.registry, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// registerCollector registers c, ignoring duplicates.
func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry (for tests and extra collectors).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Verification records one signature check.
func (m *Metrics) Verification(result string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(result).Inc()
}

// Command records one handled command.
func (m *Metrics) Command(action, result string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(action, result).Inc()
}

// Notification records one notification attempt.
func (m *Metrics) Notification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}

// ObserveCall records the latency of a collaborator call started at start.
func (m *Metrics) ObserveCall(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.collaboratorDur.WithLabelValues(operation, result).Observe(time.Since(start).Seconds())
}

// HTTPRequest records one served request.
func (m *Metrics) HTTPRequest(path, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, status).Inc()
}
