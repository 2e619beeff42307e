package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"meetscribe/internal/domain"
	"meetscribe/internal/metrics"
	"meetscribe/internal/ports"
)

var (
	ErrNoActiveSession = errors.New("no active recording session")
	ErrSessionActive   = errors.New("a recording session is already active")
)

// Config controls recording behavior.
type Config struct {
	Audio     ports.AudioConfig
	Streaming ports.StreamingConfig
}

// Orchestrator coordinates the device session and the live channel,
// drives the session state machine, and hands finished recordings to the
// post-processing pipeline.
//
// States: Idle -> Recording -> Stopping -> Processing -> {Completed|Failed}.
// Idle is the only state a new recording may start from.
type Orchestrator struct {
	capture ports.AudioCapture
	live    ports.LiveTranscriber
	post    *PostProcessor
	events  ports.EventSink
	logger  *slog.Logger
	metrics *metrics.Metrics
	cfg     Config

	mu      sync.Mutex
	current *recordingSession
	last    *sessionOutcome
}

func NewOrchestrator(
	capture ports.AudioCapture,
	live ports.LiveTranscriber,
	post *PostProcessor,
	events ports.EventSink,
	logger *slog.Logger,
	m *metrics.Metrics,
	cfg Config,
) *Orchestrator {
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.FrameSize < 256 {
		cfg.Audio.FrameSize = 4096
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		capture: capture,
		live:    live,
		post:    post,
		events:  events,
		logger:  logger,
		metrics: m,
		cfg:     cfg,
	}
}

// Start begins a new recording session. Rejected while a session is in
// progress, without disturbing it. A device failure aborts the transition
// and leaves the orchestrator Idle; a live-channel failure is tolerated
// and the preview degrades to silence.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.current != nil {
		o.mu.Unlock()
		return ErrSessionActive
	}
	o.mu.Unlock()

	sessionCtx, cancel := context.WithCancel(ctx)

	audioSession, err := o.capture.Open(sessionCtx, o.cfg.Audio)
	if err != nil {
		cancel()
		o.events.SessionError(domain.ErrorCodeFor(err), err.Error())
		return err
	}

	liveSession, liveErr := o.live.Open(sessionCtx, o.cfg.Streaming)
	if liveErr != nil {
		o.logger.Warn("live transcription unavailable, recording continues", "error", liveErr)
		o.events.SessionError(domain.ErrorCodeLiveSession, liveErr.Error())
		liveSession = nil
	}

	session := &recordingSession{
		cancel:    cancel,
		audio:     audioSession,
		live:      liveSession,
		startedAt: time.Now(),
		preview:   newLivePreview(),
		state:     domain.SessionStateRecording,
		pumpDone:  make(chan struct{}),
		feedDone:  make(chan struct{}),
	}

	o.mu.Lock()
	if o.current != nil {
		o.mu.Unlock()
		if liveSession != nil {
			_ = liveSession.Close()
		}
		_, _ = audioSession.Stop()
		cancel()
		return ErrSessionActive
	}
	o.current = session
	o.mu.Unlock()

	go pumpFrames(session, o.cfg.Audio.SampleRate, o.cfg.Audio.FrameSize, o.events, o.logger, o.metrics)
	if liveSession != nil {
		go consumeLiveEvents(liveSession, session.preview, o.events, session.feedDone)
	} else {
		close(session.feedDone)
	}

	o.metrics.RecordSessionStarted()
	reason := domain.SessionReasonRecordingStarted
	if liveErr != nil {
		reason = domain.SessionReasonLiveUnavailable
	}
	o.events.SessionStateChanged(domain.SessionStateRecording, reason)
	return nil
}

// Stop tears down the session in strict order, runs post-processing, and
// returns the finished Meeting. Idempotent: a second call returns the
// first call's outcome without releasing anything twice.
func (o *Orchestrator) Stop(ctx context.Context) (domain.Meeting, error) {
	o.mu.Lock()
	session := o.current
	last := o.last
	o.mu.Unlock()

	if session == nil {
		if last != nil {
			return last.meeting, last.err
		}
		return domain.Meeting{}, ErrNoActiveSession
	}

	session.stopOnce.Do(func() {
		session.outcome = o.finishRecording(ctx, session)
	})

	if session.discarded.Load() {
		return domain.Meeting{}, ErrNoActiveSession
	}

	o.mu.Lock()
	if o.current == session {
		o.current = nil
		o.last = &session.outcome
	}
	o.mu.Unlock()

	return session.outcome.meeting, session.outcome.err
}

// Discard stops and drops an active session without post-processing,
// returning the orchestrator to Idle.
func (o *Orchestrator) Discard() error {
	o.mu.Lock()
	session := o.current
	o.mu.Unlock()

	if session == nil {
		return ErrNoActiveSession
	}

	session.stopOnce.Do(func() {
		session.discarded.Store(true)
		session.setState(domain.SessionStateStopping)
		o.teardown(session)
		session.setState(domain.SessionStateIdle)
	})

	o.mu.Lock()
	if o.current == session {
		o.current = nil
	}
	o.mu.Unlock()

	if session.discarded.Load() {
		o.metrics.RecordSessionDiscarded()
		o.events.SessionStateChanged(domain.SessionStateIdle, domain.SessionReasonRecordingDiscarded)
		return nil
	}
	// Raced with Stop: the session already ran to a terminal state.
	return nil
}

// Status returns the current runtime status, including live preview text.
func (o *Orchestrator) Status() domain.Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return domain.Status{State: domain.SessionStateIdle, Active: false}
	}
	state := o.current.getState()
	return domain.Status{
		State:          state,
		Active:         true,
		ElapsedSeconds: int(time.Since(o.current.startedAt).Seconds()),
		LivePreview:    o.current.preview.Text(),
	}
}

// teardown releases the session's resources in the mandated order:
// frames first, live channel second, then the device chain.
func (o *Orchestrator) teardown(session *recordingSession) domain.Recording {
	session.framesStopped.Store(true)

	if session.live != nil {
		_ = session.live.Close()
	}

	rec, stopErr := session.audio.Stop()
	if stopErr != nil {
		o.logger.Warn("audio session did not stop cleanly", "error", stopErr)
	}

	<-session.pumpDone
	<-session.feedDone
	session.cancel()
	return rec
}

func (o *Orchestrator) finishRecording(ctx context.Context, session *recordingSession) sessionOutcome {
	session.setState(domain.SessionStateStopping)
	o.events.SessionStateChanged(domain.SessionStateStopping, domain.SessionReasonStopRequested)

	rec := o.teardown(session)

	if capErr := session.captureError(); capErr != nil && rec.Samples == 0 {
		session.setState(domain.SessionStateFailed)
		o.events.SessionStateChanged(domain.SessionStateFailed, domain.SessionReasonDeviceLost)
		o.metrics.RecordSessionFinished(false)
		return sessionOutcome{err: capErr}
	}

	session.setState(domain.SessionStateProcessing)
	o.events.SessionStateChanged(domain.SessionStateProcessing, domain.SessionReasonTranscribing)

	duration := time.Duration(rec.DurationSeconds() * float64(time.Second))
	if duration <= 0 {
		duration = time.Since(session.startedAt)
	}

	meeting, err := o.post.Run(ctx, rec, session.startedAt, duration)
	if err != nil {
		session.setState(domain.SessionStateFailed)
		reason := domain.SessionReasonTranscriptionFail
		if errors.Is(err, domain.ErrAnalysisFailed) {
			reason = domain.SessionReasonAnalysisFail
		}
		o.events.SessionError(domain.ErrorCodeFor(err), err.Error())
		o.events.SessionStateChanged(domain.SessionStateFailed, reason)
		o.metrics.RecordSessionFinished(false)
		return sessionOutcome{err: err}
	}

	session.setState(domain.SessionStateCompleted)
	o.events.SessionStateChanged(domain.SessionStateCompleted, domain.SessionReasonMeetingCompleted)
	o.events.MeetingCompleted(meeting)
	o.metrics.RecordSessionFinished(true)
	return sessionOutcome{meeting: meeting}
}
