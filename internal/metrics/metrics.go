// Package metrics exposes Prometheus counters for authentication outcomes.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records authentication metrics on a Prometheus registry.
type Collector struct {
	registrations prometheus.Counter
	logins        *prometheus.CounterVec
	refreshes     *prometheus.CounterVec
	httpStatus    *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidtube_registrations_total",
			Help: "Number of successful user registrations.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidtube_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidtube_token_refreshes_total",
			Help: "Refresh token exchanges by outcome.",
		}, []string{"outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidtube_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(c.registrations, c.logins, c.refreshes, c.httpStatus)
	return c
}

// RecordRegistration counts a successful registration.
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordLogin counts a login attempt.
func (c *Collector) RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.logins.WithLabelValues(result).Inc()
}

// RecordRefresh counts a refresh attempt with the given outcome.
func (c *Collector) RecordRefresh(outcome string) {
	c.refreshes.WithLabelValues(outcome).Inc()
}

// RecordHTTPStatus counts a response status code.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}
