package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics for the recording pipeline.
type Metrics struct {
	FramesEncoded prometheus.Counter
	FramesSent    prometheus.Counter
	FramesDropped prometheus.Counter

	SessionsStarted   prometheus.Counter
	SessionsCompleted prometheus.Counter
	SessionsFailed    prometheus.Counter
	ActiveSessions    prometheus.Gauge

	StageRetries  *prometheus.CounterVec
	StageFailures *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
}

// New creates and registers all metrics against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FramesEncoded: factory.NewCounter(prometheus.CounterOpts{
			Name: "meetscribe_frames_encoded_total",
			Help: "Total number of audio frames encoded for the live channel",
		}),
		FramesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "meetscribe_frames_sent_total",
			Help: "Total number of frames delivered to the live channel",
		}),
		FramesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "meetscribe_frames_dropped_total",
			Help: "Total number of frames dropped under backpressure or send failure",
		}),
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "meetscribe_sessions_started_total",
			Help: "Total number of recording sessions started",
		}),
		SessionsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "meetscribe_sessions_completed_total",
			Help: "Total number of sessions that produced a completed meeting",
		}),
		SessionsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "meetscribe_sessions_failed_total",
			Help: "Total number of sessions that ended in a failed state",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "meetscribe_active_sessions",
			Help: "Current number of active recording sessions",
		}),
		StageRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "meetscribe_stage_retries_total",
			Help: "Total number of post-processing stage retries",
		}, []string{"stage"}),
		StageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "meetscribe_stage_failures_total",
			Help: "Total number of post-processing stage failures after retry exhaustion",
		}, []string{"stage"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meetscribe_stage_duration_seconds",
			Help:    "Duration of post-processing stages",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"stage"}),
	}
}

// RecordFrameEncoded increments the encoded-frame counter.
func (m *Metrics) RecordFrameEncoded() {
	if m == nil {
		return
	}
	m.FramesEncoded.Inc()
}

// RecordFrameSent increments the sent-frame counter.
func (m *Metrics) RecordFrameSent() {
	if m == nil {
		return
	}
	m.FramesSent.Inc()
}

// RecordFrameDropped increments the dropped-frame counter.
func (m *Metrics) RecordFrameDropped() {
	if m == nil {
		return
	}
	m.FramesDropped.Inc()
}

// RecordSessionStarted tracks a new active session.
func (m *Metrics) RecordSessionStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
	m.ActiveSessions.Inc()
}

// RecordSessionFinished tracks a session reaching a terminal state.
func (m *Metrics) RecordSessionFinished(completed bool) {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
	if completed {
		m.SessionsCompleted.Inc()
	} else {
		m.SessionsFailed.Inc()
	}
}

// RecordSessionDiscarded tracks a session discarded without processing.
func (m *Metrics) RecordSessionDiscarded() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

// RecordStageRetry counts one retried attempt for a named stage.
func (m *Metrics) RecordStageRetry(stage string) {
	if m == nil {
		return
	}
	m.StageRetries.WithLabelValues(stage).Inc()
}

// RecordStageFailure counts a stage failing after retry exhaustion.
func (m *Metrics) RecordStageFailure(stage string) {
	if m == nil {
		return
	}
	m.StageFailures.WithLabelValues(stage).Inc()
}

// ObserveStageDuration records how long a stage took.
func (m *Metrics) ObserveStageDuration(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(seconds)
}
