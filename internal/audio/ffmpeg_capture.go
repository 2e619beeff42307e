package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"meetscribe/internal/domain"
	"meetscribe/internal/ports"
)

// FFMPEGCapture acquires the microphone through ffmpeg and streams
// normalized float samples while accumulating the full recording.
type FFMPEGCapture struct {
	command string
}

func NewFFMPEGCapture(command string) *FFMPEGCapture {
	if command == "" {
		command = "ffmpeg"
	}
	return &FFMPEGCapture{command: command}
}

func (c *FFMPEGCapture) Open(ctx context.Context, cfg ports.AudioConfig) (ports.AudioSession, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-f", "f32le",
		"-",
	}

	cmd := exec.CommandContext(ctx, c.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s is not installed", domain.ErrDeviceNotFound, c.command)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrDeviceBusy, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	// ffmpeg exits almost immediately when the device cannot be acquired;
	// give it a short probe window before declaring the session live.
	select {
	case <-waitErr:
		return nil, classifyAcquireErr(stderr.String())
	case <-time.After(250 * time.Millisecond):
	}

	return &ffmpegSession{
		stdout:     stdout,
		stderr:     &stderr,
		process:    cmd.Process,
		waitErr:    waitErr,
		sampleRate: cfg.SampleRate,
	}, nil
}

type ffmpegSession struct {
	stdout io.ReadCloser
	stderr *bytes.Buffer

	process *os.Process
	waitErr <-chan error

	sampleRate int
	scratch    []byte

	recMu   sync.Mutex
	rec     bytes.Buffer // little-endian PCM16, append-only
	samples int

	stopping atomic.Bool
	stopOnce sync.Once
	final    domain.Recording
	stopErr  error
}

// ReadFrame fills buf with normalized samples and tees the captured audio
// into the recording buffer. Called only by the frame pump goroutine.
func (s *ffmpegSession) ReadFrame(buf []float32) (int, error) {
	want := len(buf) * 4
	if cap(s.scratch) < want {
		s.scratch = make([]byte, want)
	}
	raw := s.scratch[:want]

	n, err := io.ReadFull(s.stdout, raw)
	count := n / 4
	for i := 0; i < count; i++ {
		buf[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	if count > 0 {
		s.recMu.Lock()
		s.rec.Write(EncodePCM16(buf[:count]))
		s.samples += count
		s.recMu.Unlock()
	}

	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, os.ErrClosed) {
			if s.stopping.Load() {
				return count, io.EOF
			}
			// The process died under us: permission revoked mid-session or
			// the device disappeared. Surface it instead of dropping audio.
			return count, classifyAcquireErr(s.stderrText())
		}
		return count, err
	}
	return count, nil
}

// Stop releases the device and finalizes the recording buffer. Idempotent:
// subsequent calls return the previously finalized recording.
func (s *ffmpegSession) Stop() (domain.Recording, error) {
	s.stopOnce.Do(func() {
		s.stopping.Store(true)

		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-s.waitErr:
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		case <-time.After(1200 * time.Millisecond):
			if s.process != nil {
				_ = s.process.Kill()
			}
			err, ok := <-s.waitErr
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		}

		if closeErr := s.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			if s.stopErr == nil {
				s.stopErr = closeErr
			}
		}

		s.final = s.finalize()
	})

	return s.final, s.stopErr
}

func (s *ffmpegSession) finalize() domain.Recording {
	s.recMu.Lock()
	defer s.recMu.Unlock()

	rec := domain.Recording{
		MimeType:   WAVMimeType,
		SampleRate: s.sampleRate,
		Samples:    s.samples,
	}
	if s.rec.Len() == 0 {
		return rec
	}
	data, err := EncodeWAV(s.rec.Bytes(), s.sampleRate)
	if err != nil {
		// Container framing failed; hand back the raw PCM rather than
		// losing the session audio.
		rec.Data = append([]byte(nil), s.rec.Bytes()...)
		rec.MimeType = PCMMimeType(s.sampleRate)
		return rec
	}
	rec.Data = data
	return rec
}

func (s *ffmpegSession) stderrText() string {
	return strings.TrimSpace(s.stderr.String())
}

func classifyAcquireErr(stderr string) error {
	detail := strings.TrimSpace(stderr)
	lower := strings.ToLower(detail)
	switch {
	case strings.Contains(lower, "permission denied"),
		strings.Contains(lower, "access denied"),
		strings.Contains(lower, "not authorized"):
		return fmt.Errorf("%w: %s", domain.ErrPermissionDenied, detail)
	case strings.Contains(lower, "no such"),
		strings.Contains(lower, "not found"),
		strings.Contains(lower, "cannot find"),
		strings.Contains(lower, "unknown input"):
		return fmt.Errorf("%w: %s", domain.ErrDeviceNotFound, detail)
	default:
		if detail == "" {
			return fmt.Errorf("%w: capture process exited before recording started", domain.ErrDeviceBusy)
		}
		return fmt.Errorf("%w: %s", domain.ErrDeviceBusy, detail)
	}
}

func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
