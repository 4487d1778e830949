// Package metrics collects and exposes Prometheus metrics for the
// authentication flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Flow labels for auth attempt metrics.
const (
	FlowSignup = "signup"
	FlowLogin  = "login"
	FlowOAuth  = "oauth"
)

// Collector records authentication outcomes. The login counters carry
// the internally distinguished failure reasons that the wire responses
// deliberately collapse.
type Collector struct {
	registry     *prometheus.Registry
	authAttempts *prometheus.CounterVec
	sessionGate  *prometheus.CounterVec
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "identity_auth_attempts_total",
			Help: "Authentication attempts by flow and outcome",
		}, []string{"flow", "outcome"}),
		sessionGate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "identity_session_verifications_total",
			Help: "Session verifier decisions by outcome",
		}, []string{"outcome"}),
	}

	c.registry.MustRegister(c.authAttempts, c.sessionGate)

	return c
}

// RecordAuthAttempt records the outcome of one signup/login/oauth flow.
// Safe to call on a nil Collector.
func (c *Collector) RecordAuthAttempt(flow, outcome string) {
	if c == nil {
		return
	}
	c.authAttempts.WithLabelValues(flow, outcome).Inc()
}

// RecordSessionVerification records one session verifier decision.
// Safe to call on a nil Collector.
func (c *Collector) RecordSessionVerification(outcome string) {
	if c == nil {
		return
	}
	c.sessionGate.WithLabelValues(outcome).Inc()
}

// Handler returns the HTTP handler exposing the collected metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
