package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodeFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"permission", fmt.Errorf("wrapped: %w", ErrPermissionDenied), ErrorCodePermission},
		{"device missing", ErrDeviceNotFound, ErrorCodeDeviceMissing},
		{"device busy", ErrDeviceBusy, ErrorCodeDeviceBusy},
		{"frame delivery", ErrFrameDelivery, ErrorCodeFrameDelivery},
		{"live session", ErrLiveSession, ErrorCodeLiveSession},
		{"transcription", ErrTranscriptionFailed, ErrorCodeTranscription},
		{"analysis", ErrAnalysisFailed, ErrorCodeAnalysis},
		{"unknown", errors.New("mystery"), ErrorCodeCapture},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ErrorCodeFor(tc.err); got != tc.want {
				t.Fatalf("ErrorCodeFor(%v) = %s, want %s", tc.err, got, tc.want)
			}
		})
	}
}

func TestPriorityValid(t *testing.T) {
	t.Parallel()

	for _, p := range []Priority{PriorityHigh, PriorityMedium, PriorityLow} {
		if !p.Valid() {
			t.Fatalf("%s should be valid", p)
		}
	}
	if Priority("Urgent").Valid() {
		t.Fatalf("unknown priority must be invalid")
	}
}

func TestRecordingDurationSeconds(t *testing.T) {
	t.Parallel()

	rec := Recording{SampleRate: 16000, Samples: 48000}
	if got := rec.DurationSeconds(); got != 3 {
		t.Fatalf("duration = %v, want 3", got)
	}
	if got := (Recording{}).DurationSeconds(); got != 0 {
		t.Fatalf("empty recording duration = %v, want 0", got)
	}
}
