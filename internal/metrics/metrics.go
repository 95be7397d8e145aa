package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login results recorded by auth_logins_total.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// Certificate transitions recorded by certificate_transitions_total.
const (
	TransitionCreated  = "created"
	TransitionApproved = "approved"
	TransitionReverted = "reverted"
	TransitionDeleted  = "deleted"
)

// Metrics holds every collector the portal exports.
type Metrics struct {
	RequestCount           *prometheus.CounterVec
	RequestDuration        *prometheus.HistogramVec
	Logins                 *prometheus.CounterVec
	CertificateTransitions *prometheus.CounterVec
	PasswordResetRequests  prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. Collectors that
// are already registered are reused.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		RequestCount: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		)),
		RequestDuration: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		)),
		Logins: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		)),
		CertificateTransitions: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certificate_transitions_total",
				Help: "Certificate workflow transitions",
			},
			[]string{"transition"},
		)),
		PasswordResetRequests: register(reg, prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "password_reset_requests_total",
				Help: "Password reset requests received",
			},
		)),
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m.gatherer == nil || m.gatherer == prometheus.DefaultGatherer {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Login records a login attempt. Safe on a nil receiver.
func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(result).Inc()
}

// CertificateTransition records a workflow transition. Safe on a nil receiver.
func (m *Metrics) CertificateTransition(transition string) {
	if m == nil {
		return
	}
	m.CertificateTransitions.WithLabelValues(transition).Inc()
}

// PasswordResetRequested records a reset request. Safe on a nil receiver.
func (m *Metrics) PasswordResetRequested() {
	if m == nil {
		return
	}
	m.PasswordResetRequests.Inc()
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
