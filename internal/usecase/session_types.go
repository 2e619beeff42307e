package usecase

import (
	"sync"
	"sync/atomic"
	"time"

	"meetscribe/internal/domain"
	"meetscribe/internal/ports"
)

// sessionOutcome is the terminal result of a recording session.
type sessionOutcome struct {
	meeting domain.Meeting
	err     error
}

type recordingSession struct {
	cancel    func()
	audio     ports.AudioSession
	live      ports.LiveSession // nil when the live channel is unavailable
	startedAt time.Time
	preview   *livePreview

	framesStopped atomic.Bool
	discarded     atomic.Bool

	pumpDone chan struct{}
	feedDone chan struct{}

	stateMu sync.Mutex
	state   domain.SessionState

	captureMu  sync.Mutex
	captureErr error

	stopOnce sync.Once
	outcome  sessionOutcome
}

func (s *recordingSession) setState(state domain.SessionState) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.state = state
}

func (s *recordingSession) getState() domain.SessionState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *recordingSession) setCaptureErr(err error) {
	s.captureMu.Lock()
	defer s.captureMu.Unlock()
	if s.captureErr == nil {
		s.captureErr = err
	}
}

func (s *recordingSession) captureError() error {
	s.captureMu.Lock()
	defer s.captureMu.Unlock()
	return s.captureErr
}
