package ports

import (
	"context"

	"meetscribe/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	FrameSize   int // samples per frame
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session. ReadFrame fills buf with
// normalized samples in [-1, 1] and returns the count read. All captured
// audio also accumulates in an append-only recording buffer; Stop releases
// the device and returns the finalized recording. Stop is idempotent:
// repeated calls return the previously finalized recording.
type AudioSession interface {
	ReadFrame(buf []float32) (int, error)
	Stop() (domain.Recording, error)
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Open(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// StreamingConfig describes provider-agnostic live streaming settings.
type StreamingConfig struct {
	SampleRate int
	QueueSize  int
}

// LiveSession is an active bidirectional transcription stream. Send is
// fire-and-forget: frames queue in a bounded buffer until the connection
// resolves, and delivery failures never abort the session. Events carries
// append-only partial-transcript text. Close never fails, even if the
// session was never fully opened.
type LiveSession interface {
	Send(frame domain.EncodedFrame) error
	Events() <-chan string
	Close() error
}

// LiveTranscriber opens live transcription sessions.
type LiveTranscriber interface {
	Open(ctx context.Context, cfg StreamingConfig) (LiveSession, error)
}

// Transcriber produces the authoritative transcript from a full recording.
type Transcriber interface {
	Transcribe(ctx context.Context, rec domain.Recording) ([]domain.TranscriptEntry, error)
}

// Analyzer turns a transcript into structured meeting minutes.
type Analyzer interface {
	Analyze(ctx context.Context, transcript string) (domain.Analysis, error)
}

// MeetingStore persists finished meeting records.
type MeetingStore interface {
	Save(ctx context.Context, meeting domain.Meeting) error
	List(ctx context.Context) ([]domain.Meeting, error)
}

// MeetingSyncer pushes a finished record to the remote collaborator and
// returns it with Synced set.
type MeetingSyncer interface {
	Sync(ctx context.Context, meeting domain.Meeting) (domain.Meeting, error)
}

// EventSink emits session state and progress to the user surface.
type EventSink interface {
	SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason)
	PartialTranscript(text string)
	SessionError(code domain.ErrorCode, detail string)
	MeetingCompleted(meeting domain.Meeting)
}
