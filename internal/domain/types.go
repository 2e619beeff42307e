package domain

import "time"

// MeetingStatus models the lifecycle of a persisted meeting record.
type MeetingStatus string

const (
	MeetingStatusRecording  MeetingStatus = "recording"
	MeetingStatusProcessing MeetingStatus = "processing"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusFailed     MeetingStatus = "failed"
)

// Priority ranks an action item.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// TranscriptEntry is one timestamped line of the authoritative transcript.
// Timestamps are non-decreasing within a transcript.
type TranscriptEntry struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// ActionItem is a structured task extracted from the meeting transcript.
type ActionItem struct {
	Task     string   `json:"task"`
	Owner    string   `json:"owner"`
	Priority Priority `json:"priority"`
}

// Meeting is the persisted record of a completed recording session.
// Immutable once Completed, except for Synced which flips false->true
// exactly once after a successful remote sync.
type Meeting struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Date            time.Time         `json:"date"`
	DurationSeconds int               `json:"durationSeconds"`
	Transcript      []TranscriptEntry `json:"transcript"`
	Summary         string            `json:"summary,omitempty"`
	ActionItems     []ActionItem      `json:"actionItems"`
	Status          MeetingStatus     `json:"status"`
	Synced          bool              `json:"synced"`
}

// Analysis is the structured output of the analysis stage.
type Analysis struct {
	Title       string       `json:"title"`
	Summary     string       `json:"summary"`
	ActionItems []ActionItem `json:"actionItems"`
}

// Recording is the finalized audio blob produced when a device session closes.
type Recording struct {
	Data       []byte
	MimeType   string
	SampleRate int
	Samples    int
}

// DurationSeconds derives the recording length from its sample count.
func (r Recording) DurationSeconds() float64 {
	if r.SampleRate <= 0 {
		return 0
	}
	return float64(r.Samples) / float64(r.SampleRate)
}

// EncodedFrame is one transport-ready audio frame for the live channel.
type EncodedFrame struct {
	MimeType string
	Data     string
}

// SessionState models the recording session lifecycle.
type SessionState string

const (
	SessionStateIdle       SessionState = "idle"
	SessionStateRecording  SessionState = "recording"
	SessionStateStopping   SessionState = "stopping"
	SessionStateProcessing SessionState = "processing"
	SessionStateCompleted  SessionState = "completed"
	SessionStateFailed     SessionState = "failed"
)

// SessionStateReason provides a structured reason for state transitions.
type SessionStateReason string

const (
	SessionReasonRecordingStarted   SessionStateReason = "recording_started"
	SessionReasonLiveUnavailable    SessionStateReason = "live_channel_unavailable"
	SessionReasonStopRequested      SessionStateReason = "stop_requested"
	SessionReasonTranscribing       SessionStateReason = "transcribing"
	SessionReasonMeetingCompleted   SessionStateReason = "meeting_completed"
	SessionReasonRecordingDiscarded SessionStateReason = "recording_discarded"
	SessionReasonDeviceLost         SessionStateReason = "device_lost"
	SessionReasonTranscriptionFail  SessionStateReason = "transcription_failed"
	SessionReasonAnalysisFail       SessionStateReason = "analysis_failed"
)

// ErrorCode identifies non-fatal and fatal session errors for the UI.
type ErrorCode string

const (
	ErrorCodePermission    ErrorCode = "permission_denied"
	ErrorCodeDeviceMissing ErrorCode = "device_not_found"
	ErrorCodeDeviceBusy    ErrorCode = "device_busy"
	ErrorCodeCapture       ErrorCode = "capture"
	ErrorCodeFrameDelivery ErrorCode = "frame_delivery"
	ErrorCodeLiveSession   ErrorCode = "live_session"
	ErrorCodeTranscription ErrorCode = "transcription"
	ErrorCodeAnalysis      ErrorCode = "analysis"
	ErrorCodeStore         ErrorCode = "store"
	ErrorCodeSync          ErrorCode = "sync"
)

// Status summarizes the current runtime status of the orchestrator.
type Status struct {
	State          SessionState `json:"state"`
	Active         bool         `json:"active"`
	ElapsedSeconds int          `json:"elapsedSeconds"`
	LivePreview    string       `json:"livePreview,omitempty"`
}
