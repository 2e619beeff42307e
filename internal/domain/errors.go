package domain

import "errors"

// Device acquisition failures. Fatal to session start, user-actionable.
var (
	ErrPermissionDenied = errors.New("microphone permission denied")
	ErrDeviceNotFound   = errors.New("no audio input device found")
	ErrDeviceBusy       = errors.New("audio device unavailable")
)

// Live channel failures. Non-fatal: the live preview degrades to silence.
var (
	ErrFrameDelivery = errors.New("frame delivery failed")
	ErrLiveSession   = errors.New("live transcription session error")
)

// Post-processing failures. Retried with bounded backoff; fatal to the
// session only after retry exhaustion.
var (
	ErrTranscriptionFailed = errors.New("transcription failed")
	ErrAnalysisFailed      = errors.New("analysis failed")
)

// ErrorCodeFor maps an error to its UI-facing code so a terminal failure
// keeps enough detail to distinguish "retry" from "re-record".
func ErrorCodeFor(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return ErrorCodePermission
	case errors.Is(err, ErrDeviceNotFound):
		return ErrorCodeDeviceMissing
	case errors.Is(err, ErrDeviceBusy):
		return ErrorCodeDeviceBusy
	case errors.Is(err, ErrFrameDelivery):
		return ErrorCodeFrameDelivery
	case errors.Is(err, ErrLiveSession):
		return ErrorCodeLiveSession
	case errors.Is(err, ErrTranscriptionFailed):
		return ErrorCodeTranscription
	case errors.Is(err, ErrAnalysisFailed):
		return ErrorCodeAnalysis
	default:
		return ErrorCodeCapture
	}
}
