package uametrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// -------------------------------------------------------------------------
// Prometheus Metric Constants
// -------------------------------------------------------------------------

const (
	namespace = "opcua"
	subsystem = "server"
)

// Label names for OPC UA server metrics.
const (
	labelSecurityPolicy = "security_policy"
	labelServiceName    = "service"
	labelStatusCode     = "status_code"
)

// -------------------------------------------------------------------------
// Collector — Prometheus OPC UA Server Metrics
// -------------------------------------------------------------------------

// Collector holds all OPC UA server Prometheus metrics.
//
// Metrics are designed for production monitoring of an OPC UA server:
//   - Channel/session gauges track currently live secure channels and
//     sessions.
//   - Decode error counters flag malformed or oversized wire messages
//     (spec §6 encoding limit violations).
//   - Security check counters flag certificate/signature verification
//     failures per security policy.
//   - Service call counters and latency histograms track per-service
//     (Browse, Read, Write, ...) call volume and duration.
type Collector struct {
	// ActiveChannels tracks the number of currently open secure channels.
	ActiveChannels prometheus.Gauge

	// ActiveSessions tracks the number of currently active sessions.
	ActiveSessions prometheus.Gauge

	// DecodeErrors counts wire-decode failures (malformed messages,
	// encoding limit violations per spec §6).
	DecodeErrors prometheus.Counter

	// SecurityCheckFailures counts certificate/signature verification
	// failures per security policy.
	SecurityCheckFailures *prometheus.CounterVec

	// ServiceCalls counts service invocations per service name and
	// resulting status code (Good/Bad*).
	ServiceCalls *prometheus.CounterVec

	// ServiceLatency records service call duration in seconds, labeled
	// by service name.
	ServiceLatency *prometheus.HistogramVec
}

// NewCollector creates a Collector with all OPC UA server metrics
// registered against the provided prometheus.Registerer. If reg is nil,
// prometheus.DefaultRegisterer is used.
//
// All metrics are created with the "opcua_server_" prefix
// (namespace_subsystem) to avoid collisions with other exporters.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := newMetrics()

	reg.MustRegister(
		c.ActiveChannels,
		c.ActiveSessions,
		c.DecodeErrors,
		c.SecurityCheckFailures,
		c.ServiceCalls,
		c.ServiceLatency,
	)

	return c
}

// newMetrics creates all Prometheus metrics without registering them.
func newMetrics() *Collector {
	return &Collector{
		ActiveChannels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_channels",
			Help:      "Number of currently open OPC UA secure channels.",
		}),

		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_sessions",
			Help:      "Number of currently active OPC UA sessions.",
		}),

		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "decode_errors_total",
			Help:      "Total wire-decode failures (malformed messages or encoding limit violations).",
		}),

		SecurityCheckFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "security_check_failures_total",
			Help:      "Total certificate or signature verification failures, by security policy.",
		}, []string{labelSecurityPolicy}),

		ServiceCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "service_calls_total",
			Help:      "Total OPC UA service calls, by service name and resulting status code.",
		}, []string{labelServiceName, labelStatusCode}),

		ServiceLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "service_latency_seconds",
			Help:      "OPC UA service call duration in seconds, by service name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{labelServiceName}),
	}
}

// -------------------------------------------------------------------------
// Channel Lifecycle
// -------------------------------------------------------------------------

// ChannelOpened increments the active channels gauge. Called when a
// secure channel transitions from Closed to Open.
func (c *Collector) ChannelOpened() {
	c.ActiveChannels.Inc()
}

// ChannelClosed decrements the active channels gauge. Called when a
// secure channel transitions to Closed.
func (c *Collector) ChannelClosed() {
	c.ActiveChannels.Dec()
}

// -------------------------------------------------------------------------
// Session Lifecycle
// -------------------------------------------------------------------------

// SessionCreated increments the active sessions gauge.
func (c *Collector) SessionCreated() {
	c.ActiveSessions.Inc()
}

// SessionClosed decrements the active sessions gauge.
func (c *Collector) SessionClosed() {
	c.ActiveSessions.Dec()
}

// -------------------------------------------------------------------------
// Decode Errors
// -------------------------------------------------------------------------

// IncDecodeErrors increments the decode error counter. Called whenever
// the wire codec rejects a message (truncated buffer, limit violation,
// malformed structure).
func (c *Collector) IncDecodeErrors() {
	c.DecodeErrors.Inc()
}

// -------------------------------------------------------------------------
// Security
// -------------------------------------------------------------------------

// IncSecurityCheckFailures increments the security check failure
// counter for the given security policy URI.
func (c *Collector) IncSecurityCheckFailures(securityPolicy string) {
	c.SecurityCheckFailures.WithLabelValues(securityPolicy).Inc()
}

// -------------------------------------------------------------------------
// Service Calls
// -------------------------------------------------------------------------

// RecordServiceCall increments the service call counter for the given
// service name and status code, and observes the call's duration in
// the latency histogram.
func (c *Collector) RecordServiceCall(serviceName, statusCode string, durationSeconds float64) {
	c.ServiceCalls.WithLabelValues(serviceName, statusCode).Inc()
	c.ServiceLatency.WithLabelValues(serviceName).Observe(durationSeconds)
}
