package usecase

import (
	"errors"
	"io"
	"log/slog"

	"meetscribe/internal/audio"
	"meetscribe/internal/domain"
	"meetscribe/internal/metrics"
	"meetscribe/internal/ports"
)

// pumpFrames drains the device frame source, encodes each frame, and
// hands it to the live channel. Sends are fire-and-forget: a delivery
// failure is logged and the pump keeps running, because the recording
// buffer accumulates independently inside the audio session. A device
// read error other than EOF marks the session's capture as failed.
func pumpFrames(
	s *recordingSession,
	sampleRate int,
	frameSize int,
	events ports.EventSink,
	logger *slog.Logger,
	m *metrics.Metrics,
) {
	defer close(s.pumpDone)

	if frameSize < 256 {
		frameSize = audio.DefaultFrameSize
	}

	buf := make([]float32, frameSize)
	for {
		n, err := s.audio.ReadFrame(buf)
		if n > 0 && s.live != nil && !s.framesStopped.Load() {
			frame := audio.EncodeFrame(buf[:n], sampleRate)
			m.RecordFrameEncoded()
			if sendErr := s.live.Send(frame); sendErr != nil {
				m.RecordFrameDropped()
				logger.Warn("live frame not delivered", "error", sendErr)
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.setCaptureErr(err)
				events.SessionError(domain.ErrorCodeFor(err), err.Error())
			}
			return
		}
	}
}
