// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// HTTPRequests counts handled requests by method, route pattern and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mainda_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPDuration tracks request latency by method and route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mainda_http_request_duration_seconds",
		Help:    "Histogram of HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// AuthEvents counts account flows by event and outcome.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mainda_auth_events_total",
		Help: "Total number of authentication and account events",
	}, []string{"event", "outcome"})

	// Notifications counts outgoing emails by kind and delivery outcome.
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mainda_notifications_total",
		Help: "Total number of notification deliveries",
	}, []string{"kind", "outcome"})
)

// ObserveHTTP records one completed request.
func ObserveHTTP(method, route, status string, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// AuthEvent records the outcome of an account flow. A nil err is a success.
func AuthEvent(event string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	AuthEvents.WithLabelValues(event, outcome).Inc()
}

// Notification records the delivery outcome of one email.
func Notification(kind string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	Notifications.WithLabelValues(kind, outcome).Inc()
}
