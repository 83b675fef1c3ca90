// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncify_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "syncify_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syncify_api_active_requests",
			Help: "Number of requests currently being served",
		},
	)

	// Guard Metrics
	GuardDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncify_guard_decisions_total",
			Help: "Authentication and authorization outcomes",
		},
		[]string{"stage", "outcome"}, // stage: authenticate|authorize
	)

	// Relay Metrics
	RelayConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syncify_relay_connections",
			Help: "Current number of open realtime connections",
		},
	)

	RelayRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syncify_relay_rooms",
			Help: "Number of allocated rooms, including empty ones",
		},
	)

	RelayEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncify_relay_events_total",
			Help: "Inbound realtime events by type",
		},
		[]string{"event"},
	)

	RelayDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syncify_relay_dropped_messages_total",
			Help: "Outbound frames dropped because a peer's send buffer was full",
		},
	)

	RelayThrottled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syncify_relay_throttled_frames_total",
			Help: "Inbound frames discarded by the per-connection rate limit",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "syncify_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncify_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Reminder Metrics
	RemindersSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncify_reminders_total",
			Help: "Task reminders processed by result",
		},
		[]string{"result"}, // sent|skipped|failed
	)

	ReminderRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "syncify_reminder_run_duration_seconds",
			Help:    "Duration of one reminder sweep",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RecordAPIRequest records one served request.
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordGuardDecision counts one guard outcome, e.g. ("authorize", "insufficient_role").
func RecordGuardDecision(stage, outcome string) {
	GuardDecisions.WithLabelValues(stage, outcome).Inc()
}

// RecordRelayEvent counts one inbound realtime event.
func RecordRelayEvent(event string) {
	RelayEvents.WithLabelValues(event).Inc()
}
