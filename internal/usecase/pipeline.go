package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"meetscribe/internal/domain"
	"meetscribe/internal/metrics"
	"meetscribe/internal/ports"
	"meetscribe/internal/retry"
)

const (
	stageTranscription = "transcription"
	stageAnalysis      = "analysis"
)

// PostProcessor turns a finalized recording into a persisted Meeting:
// final transcription, then analysis, each wrapped by the retry executor
// and strictly sequential.
type PostProcessor struct {
	transcriber ports.Transcriber
	analyzer    ports.Analyzer
	store       ports.MeetingStore
	events      ports.EventSink
	retrier     *retry.Executor
	logger      *slog.Logger
	metrics     *metrics.Metrics

	now   func() time.Time
	newID func() string
}

func NewPostProcessor(
	transcriber ports.Transcriber,
	analyzer ports.Analyzer,
	store ports.MeetingStore,
	events ports.EventSink,
	retrier *retry.Executor,
	logger *slog.Logger,
	m *metrics.Metrics,
) *PostProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	if retrier == nil {
		retrier = retry.New(2, 400*time.Millisecond)
	}
	return &PostProcessor{
		transcriber: transcriber,
		analyzer:    analyzer,
		store:       store,
		events:      events,
		retrier:     retrier,
		logger:      logger,
		metrics:     m,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Run executes both stages and hands the finished Meeting to the store.
// A store failure is non-fatal: the completed meeting is still returned,
// unsynced. Stage failures propagate after retry exhaustion with their
// kind preserved, and no partial Meeting is persisted.
func (p *PostProcessor) Run(
	ctx context.Context,
	rec domain.Recording,
	startedAt time.Time,
	duration time.Duration,
) (domain.Meeting, error) {
	var entries []domain.TranscriptEntry
	err := p.runStage(ctx, stageTranscription, func(ctx context.Context) error {
		var stageErr error
		entries, stageErr = p.transcriber.Transcribe(ctx, rec)
		return stageErr
	})
	if err != nil {
		return domain.Meeting{}, err
	}

	var analysis domain.Analysis
	err = p.runStage(ctx, stageAnalysis, func(ctx context.Context) error {
		var stageErr error
		analysis, stageErr = p.analyzer.Analyze(ctx, transcriptText(entries))
		return stageErr
	})
	if err != nil {
		return domain.Meeting{}, err
	}

	meeting := domain.Meeting{
		ID:              p.newID(),
		Title:           analysis.Title,
		Date:            startedAt,
		DurationSeconds: int(duration.Seconds()),
		Transcript:      entries,
		Summary:         analysis.Summary,
		ActionItems:     analysis.ActionItems,
		Status:          domain.MeetingStatusCompleted,
		Synced:          false,
	}

	if p.store != nil {
		if saveErr := p.store.Save(ctx, meeting); saveErr != nil {
			p.logger.Error("failed to persist meeting", "meeting_id", meeting.ID, "error", saveErr)
			p.events.SessionError(domain.ErrorCodeStore, saveErr.Error())
		}
	}

	return meeting, nil
}

func (p *PostProcessor) runStage(ctx context.Context, stage string, op func(ctx context.Context) error) error {
	start := p.now()
	attempt := 0
	err := p.retrier.Do(ctx, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			p.metrics.RecordStageRetry(stage)
			p.logger.Info("retrying stage", "stage", stage, "attempt", attempt)
		}
		return op(ctx)
	})
	p.metrics.ObserveStageDuration(stage, p.now().Sub(start).Seconds())
	if err != nil {
		p.metrics.RecordStageFailure(stage)
		return err
	}
	return nil
}

func transcriptText(entries []domain.TranscriptEntry) string {
	var sb strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&sb, "[%s] %s\n", entry.Timestamp, entry.Text)
	}
	return sb.String()
}
