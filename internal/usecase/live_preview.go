package usecase

import (
	"strings"
	"sync"

	"meetscribe/internal/ports"
)

// livePreview accumulates best-effort partial transcript text for
// on-screen feedback. Append-only: there is no correction protocol, and
// the accumulated text is discarded on stop. It is never the source of
// truth for the persisted transcript.
type livePreview struct {
	mu sync.Mutex
	sb strings.Builder
}

func newLivePreview() *livePreview {
	return &livePreview{}
}

func (p *livePreview) Append(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sb.Len() > 0 {
		p.sb.WriteByte(' ')
	}
	p.sb.WriteString(text)
}

func (p *livePreview) Text() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sb.String()
}

func consumeLiveEvents(
	live ports.LiveSession,
	preview *livePreview,
	events ports.EventSink,
	done chan struct{},
) {
	defer close(done)

	for text := range live.Events() {
		if strings.TrimSpace(text) == "" {
			continue
		}
		preview.Append(text)
		events.PartialTranscript(text)
	}
}
