package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"meetscribe/internal/domain"
	"meetscribe/internal/metrics"
	"meetscribe/internal/ports"
)

const defaultQueueSize = 32

// Live opens best-effort bidirectional streaming sessions for partial
// transcription feedback.
type Live struct {
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewLive(cfg Config, logger *slog.Logger, m *metrics.Metrics) *Live {
	if logger == nil {
		logger = slog.Default()
	}
	return &Live{cfg: cfg, logger: logger, metrics: m}
}

// Open returns a session immediately; the websocket dial resolves in the
// background and frames queue in a bounded buffer until it does. A failed
// dial leaves the session silent, never broken.
func (l *Live) Open(ctx context.Context, cfg ports.StreamingConfig) (ports.LiveSession, error) {
	if strings.TrimSpace(l.cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not configured", domain.ErrLiveSession)
	}

	wsURL, err := buildLiveURL(l.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLiveSession, err)
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	s := &liveSession{
		queue:   make(chan domain.EncodedFrame, queueSize),
		events:  make(chan string, 64),
		closed:  make(chan struct{}),
		done:    make(chan struct{}),
		logger:  l.logger,
		metrics: l.metrics,
	}
	go s.run(ctx, wsURL)
	return s, nil
}

type mediaPayload struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type mediaMessage struct {
	Media mediaPayload `json:"media"`
}

type serverMessage struct {
	TranscriptionText string `json:"transcriptionText"`
}

type liveSession struct {
	queue  chan domain.EncodedFrame
	events chan string

	closed chan struct{}
	done   chan struct{}

	closeOnce sync.Once

	logger  *slog.Logger
	metrics *metrics.Metrics

	errMu sync.Mutex
	err   error
}

// Send queues a frame for delivery. When the buffer is full the oldest
// frame is dropped: live feedback favors recency over completeness.
func (s *liveSession) Send(frame domain.EncodedFrame) error {
	select {
	case <-s.closed:
		return fmt.Errorf("%w: session closed", domain.ErrFrameDelivery)
	default:
	}

	select {
	case s.queue <- frame:
		return nil
	default:
	}

	select {
	case <-s.queue:
		s.metrics.RecordFrameDropped()
		s.logger.Debug("live channel backpressure, dropped oldest frame")
	default:
	}
	select {
	case s.queue <- frame:
	default:
		s.metrics.RecordFrameDropped()
	}
	return nil
}

// Events surfaces incoming partial-transcript text. Strictly append-only;
// the channel closes when the session ends.
func (s *liveSession) Events() <-chan string {
	return s.events
}

// Close terminates the session and releases all resources. Safe to call
// before the dial resolves, and never returns an error.
func (s *liveSession) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	<-s.done
	return nil
}

// Err reports the first session-level error, if any.
func (s *liveSession) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *liveSession) run(ctx context.Context, wsURL string) {
	defer close(s.done)
	defer close(s.events)

	dialCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.closed:
			cancel()
		case <-dialCtx.Done():
		}
	}()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, wsURL, nil)
	if err != nil {
		s.setErr(fmt.Errorf("%w: dial failed: %v", domain.ErrLiveSession, err))
		s.logger.Warn("live transcription unavailable", "error", err)
		return
	}

	go func() {
		<-s.closed
		_ = conn.Close()
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writeLoop(conn)
	}()

	s.readLoop(conn)

	_ = conn.Close()
	wg.Wait()
}

func (s *liveSession) writeLoop(conn *websocket.Conn) {
	for {
		select {
		case frame := <-s.queue:
			msg := mediaMessage{Media: mediaPayload{MimeType: frame.MimeType, Data: frame.Data}}
			if err := conn.WriteJSON(msg); err != nil {
				s.metrics.RecordFrameDropped()
				s.logger.Warn("frame delivery failed", "error", err)
				s.setErr(fmt.Errorf("%w: %v", domain.ErrFrameDelivery, err))
				return
			}
			s.metrics.RecordFrameSent()
		case <-s.closed:
			return
		}
	}
}

func (s *liveSession) readLoop(conn *websocket.Conn) {
	for {
		var msg serverMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !isExpectedCloseErr(err) {
				s.setErr(fmt.Errorf("%w: %v", domain.ErrLiveSession, err))
				s.logger.Warn("live channel read failed", "error", err)
			}
			return
		}
		if msg.TranscriptionText == "" {
			continue
		}
		select {
		case s.events <- msg.TranscriptionText:
		default:
		}
	}
}

func (s *liveSession) setErr(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func isExpectedCloseErr(err error) bool {
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) {
		return true
	}
	return errors.Is(err, context.Canceled)
}

func buildLiveURL(cfg Config) (string, error) {
	base := strings.TrimSpace(cfg.LiveEndpoint)
	if base == "" {
		base = strings.TrimRight(cfg.BaseURL, "/") + "/v1beta/live"
		if base == "/v1beta/live" {
			base = "https://generativelanguage.googleapis.com/v1beta/live"
		}
	}

	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}

	liveURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid live endpoint: %w", err)
	}

	query := liveURL.Query()
	query.Set("key", cfg.APIKey)
	liveURL.RawQuery = query.Encode()
	return liveURL.String(), nil
}
