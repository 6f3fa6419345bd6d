package uametrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	uametrics "github.com/industrial-go/opcua/internal/metrics"
)

func TestNewCollector(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := uametrics.NewCollector(reg)

	if c.ActiveChannels == nil {
		t.Error("ActiveChannels is nil")
	}
	if c.ActiveSessions == nil {
		t.Error("ActiveSessions is nil")
	}
	if c.DecodeErrors == nil {
		t.Error("DecodeErrors is nil")
	}
	if c.SecurityCheckFailures == nil {
		t.Error("SecurityCheckFailures is nil")
	}
	if c.ServiceCalls == nil {
		t.Error("ServiceCalls is nil")
	}
	if c.ServiceLatency == nil {
		t.Error("ServiceLatency is nil")
	}

	// Verify all metrics are registered by gathering them.
	if _, err := reg.Gather(); err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
}

func TestChannelLifecycleGauge(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := uametrics.NewCollector(reg)

	c.ChannelOpened()
	c.ChannelOpened()
	c.ChannelClosed()

	if got := testutilGaugeValue(t, c.ActiveChannels); got != 1 {
		t.Errorf("ActiveChannels = %v, want 1", got)
	}
}

func TestSessionLifecycleGauge(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := uametrics.NewCollector(reg)

	c.SessionCreated()
	c.SessionCreated()
	c.SessionCreated()
	c.SessionClosed()

	if got := testutilGaugeValue(t, c.ActiveSessions); got != 2 {
		t.Errorf("ActiveSessions = %v, want 2", got)
	}
}

func TestIncDecodeErrors(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := uametrics.NewCollector(reg)

	c.IncDecodeErrors()
	c.IncDecodeErrors()

	if got := testutilCounterValue(t, c.DecodeErrors); got != 2 {
		t.Errorf("DecodeErrors = %v, want 2", got)
	}
}

func TestIncSecurityCheckFailures(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := uametrics.NewCollector(reg)

	c.IncSecurityCheckFailures("Basic256Sha256")
	c.IncSecurityCheckFailures("Basic256Sha256")
	c.IncSecurityCheckFailures("None")

	metric, err := c.SecurityCheckFailures.GetMetricWithLabelValues("Basic256Sha256")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	if got := testutilCounterValue(t, metric); got != 2 {
		t.Errorf("SecurityCheckFailures[Basic256Sha256] = %v, want 2", got)
	}
}

func TestRecordServiceCall(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := uametrics.NewCollector(reg)

	c.RecordServiceCall("Browse", "Good", 0.012)
	c.RecordServiceCall("Browse", "Good", 0.034)
	c.RecordServiceCall("Browse", "BadNodeIdUnknown", 0.001)

	metric, err := c.ServiceCalls.GetMetricWithLabelValues("Browse", "Good")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	if got := testutilCounterValue(t, metric); got != 2 {
		t.Errorf("ServiceCalls[Browse,Good] = %v, want 2", got)
	}
}

// testutilGaugeValue reads the current value of a prometheus.Gauge
// without pulling in the promtest helper module.
func testutilGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetGauge().GetValue()
}

// testutilCounterValue reads the current value of a prometheus.Counter.
func testutilCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}
