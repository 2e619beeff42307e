package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistersCollectors(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordFrameEncoded()
	m.RecordFrameSent()
	m.RecordFrameDropped()
	m.RecordSessionStarted()
	m.RecordSessionFinished(true)
	m.RecordStageRetry("transcription")
	m.RecordStageFailure("analysis")
	m.ObserveStageDuration("transcription", 1.5)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Fatalf("expected registered metric families")
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.RecordFrameEncoded()
	m.RecordFrameSent()
	m.RecordFrameDropped()
	m.RecordSessionStarted()
	m.RecordSessionFinished(false)
	m.RecordSessionDiscarded()
	m.RecordStageRetry("transcription")
	m.RecordStageFailure("transcription")
	m.ObserveStageDuration("analysis", 0.1)
}
