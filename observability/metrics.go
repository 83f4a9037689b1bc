/*
Package observability provides Prometheus metrics and OpenTelemetry
tracing for the buttplug server. Both are optional: a nil *Metrics and
the global no-op TracerProvider are valid zero values, so core device
and session logic never requires either to be configured.
*/
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics wraps the counters and histograms the device manager and
// server emit into. Every method is nil-safe so a *Metrics can be left
// unset anywhere a caller doesn't care about instrumentation.
type Metrics struct {
	messagesTotal       *prometheus.CounterVec
	devicesAddedTotal   prometheus.Counter
	devicesRemovedTotal prometheus.Counter
	scanningStartsTotal prometheus.Counter
	scanningStopsTotal  prometheus.Counter
	gcmSuppressedTotal  prometheus.Counter
	pingTimeoutsTotal   prometheus.Counter
}

// NewMetrics registers a fresh set of collectors against reg. Pass
// prometheus.DefaultRegisterer for the process-global registry, or a
// throwaway registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		messagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buttplug_messages_dispatched_total",
				Help: "Total number of client messages dispatched, by message type and outcome.",
			},
			[]string{"type", "outcome"}, // outcome: ok, error
		),
		devicesAddedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "buttplug_devices_added_total",
			Help: "Total number of devices added to a session.",
		}),
		devicesRemovedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "buttplug_devices_removed_total",
			Help: "Total number of devices removed from a session.",
		}),
		scanningStartsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "buttplug_scanning_starts_total",
			Help: "Total number of StartScanning requests handled.",
		}),
		scanningStopsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "buttplug_scanning_stops_total",
			Help: "Total number of times scanning finished across all communication managers.",
		}),
		gcmSuppressedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "buttplug_gcm_writes_suppressed_total",
			Help: "Total number of generic-command writes suppressed because the requested value didn't change.",
		}),
		pingTimeoutsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "buttplug_ping_timeouts_total",
			Help: "Total number of sessions that hit their ping deadline.",
		}),
	}
}

// RecordMessage records the outcome of dispatching one client message.
func (m *Metrics) RecordMessage(messageType, outcome string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(messageType, outcome).Inc()
}

// RecordDeviceAdded increments the device-added counter.
func (m *Metrics) RecordDeviceAdded() {
	if m == nil {
		return
	}
	m.devicesAddedTotal.Inc()
}

// RecordDeviceRemoved increments the device-removed counter.
func (m *Metrics) RecordDeviceRemoved() {
	if m == nil {
		return
	}
	m.devicesRemovedTotal.Inc()
}

// RecordScanningStarted increments the scanning-starts counter.
func (m *Metrics) RecordScanningStarted() {
	if m == nil {
		return
	}
	m.scanningStartsTotal.Inc()
}

// RecordScanningFinished increments the scanning-stops counter.
func (m *Metrics) RecordScanningFinished() {
	if m == nil {
		return
	}
	m.scanningStopsTotal.Inc()
}

// RecordGCMSuppressed increments the suppressed-write counter by n.
func (m *Metrics) RecordGCMSuppressed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.gcmSuppressedTotal.Add(float64(n))
}

// RecordPingTimeout increments the ping-timeout counter.
func (m *Metrics) RecordPingTimeout() {
	if m == nil {
		return
	}
	m.pingTimeoutsTotal.Inc()
}
