package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"meetscribe/internal/domain"
)

// Formatter writes user-facing progress to the terminal. It doubles as
// the session event sink, so state transitions and partial transcripts
// surface as they happen.
type Formatter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) printf(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintf(f.w, format, args...)
}

func (f *Formatter) SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason) {
	switch state {
	case domain.SessionStateRecording:
		if reason == domain.SessionReasonLiveUnavailable {
			f.printf("🎙️  Recording (live preview unavailable)\n")
			return
		}
		f.printf("🎙️  Recording... press Ctrl+C to stop\n")
	case domain.SessionStateStopping:
		f.printf("⏹️  Stopping recording\n")
	case domain.SessionStateProcessing:
		f.printf("📝 Transcribing and analyzing...\n")
	case domain.SessionStateCompleted:
		f.printf("✅ Meeting processed\n")
	case domain.SessionStateFailed:
		f.printf("❌ Session failed (%s)\n", reason)
	case domain.SessionStateIdle:
		if reason == domain.SessionReasonRecordingDiscarded {
			f.printf("🗑️  Recording discarded\n")
		}
	}
}

func (f *Formatter) PartialTranscript(text string) {
	f.printf("  … %s\n", text)
}

func (f *Formatter) SessionError(code domain.ErrorCode, message string) {
	f.printf("⚠️  [%s] %s\n", code, message)
}

func (f *Formatter) MeetingCompleted(meeting domain.Meeting) {
	f.printf("\n📋 %s\n", meeting.Title)
	f.printf("   %s, %s\n", meeting.Date.Format("2006-01-02 15:04"), formatSeconds(meeting.DurationSeconds))
	if meeting.Summary != "" {
		f.printf("\n%s\n", meeting.Summary)
	}
	if len(meeting.ActionItems) > 0 {
		f.printf("\nAction items:\n")
		for _, item := range meeting.ActionItems {
			owner := item.Owner
			if owner == "" {
				owner = "unassigned"
			}
			f.printf("  [%s] %s (%s)\n", item.Priority, item.Task, owner)
		}
	}
}

func (f *Formatter) Error(msg string) {
	f.printf("❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	f.printf("ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	f.printf("✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	f.printf("⚠️  %s\n", msg)
}

func (f *Formatter) MeetingListHeader() {
	f.printf("📁 Meetings:\n\n")
}

func (f *Formatter) MeetingListItem(meeting domain.Meeting) {
	synced := ""
	if meeting.Synced {
		synced = " ☁️"
	}
	f.printf("  %s  %s  %s%s\n",
		meeting.Date.Format("2006-01-02 15:04"),
		formatSeconds(meeting.DurationSeconds),
		meeting.Title,
		synced,
	)
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		f.printf("  ✅ %s: %s\n", name, detail)
	} else {
		f.printf("  ❌ %s: %s\n", name, detail)
	}
}

func formatSeconds(seconds int) string {
	return formatDuration(time.Duration(seconds) * time.Second)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
