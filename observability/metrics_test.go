package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordDeviceAdded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordDeviceAdded()
	m.RecordDeviceAdded()

	if got := testutil.ToFloat64(m.devicesAddedTotal); got != 2 {
		t.Fatalf("got %v, want 2", got)
	}
}

func TestMetricsRecordMessageByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordMessage("VibrateCmd", "ok")
	m.RecordMessage("VibrateCmd", "ok")
	m.RecordMessage("VibrateCmd", "error")

	if got := testutil.ToFloat64(m.messagesTotal.WithLabelValues("VibrateCmd", "ok")); got != 2 {
		t.Fatalf("got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.messagesTotal.WithLabelValues("VibrateCmd", "error")); got != 1 {
		t.Fatalf("got %v, want 1", got)
	}
}

func TestMetricsRecordGCMSuppressedIgnoresNonPositive(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordGCMSuppressed(0)
	m.RecordGCMSuppressed(-1)
	m.RecordGCMSuppressed(3)

	if got := testutil.ToFloat64(m.gcmSuppressedTotal); got != 3 {
		t.Fatalf("got %v, want 3", got)
	}
}

func TestNilMetricsIsANoop(t *testing.T) {
	var m *Metrics
	m.RecordMessage("VibrateCmd", "ok")
	m.RecordDeviceAdded()
	m.RecordDeviceRemoved()
	m.RecordScanningStarted()
	m.RecordScanningFinished()
	m.RecordGCMSuppressed(5)
	m.RecordPingTimeout()
}
