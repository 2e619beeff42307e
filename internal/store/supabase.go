package store

import (
	"context"
	"fmt"

	supabase "github.com/supabase-community/supabase-go"

	"meetscribe/internal/domain"
)

const meetingsTable = "meetings"

// SupabaseConfig holds configuration required to reach a Supabase project.
type SupabaseConfig struct {
	// URL example: "https://[project-ref].supabase.co"
	URL string

	// Key is the project API key. Use the service_role key for server-side
	// sync; the anon key cannot bypass row-level security.
	Key string
}

// SupabaseSyncer pushes completed meetings to a Supabase project over the
// REST API and flips their synced flag on success.
type SupabaseSyncer struct {
	sdk *supabase.Client
}

func NewSupabaseSyncer(cfg SupabaseConfig) (*SupabaseSyncer, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, fmt.Errorf("supabase URL and key are required")
	}
	sdk, err := supabase.NewClient(cfg.URL, cfg.Key, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize supabase SDK: %w", err)
	}
	return &SupabaseSyncer{sdk: sdk}, nil
}

// meetingRow mirrors the remote meetings table. Transcript and action
// items travel as JSON columns, same shape as the local store.
type meetingRow struct {
	ID              string                   `json:"id"`
	Title           string                   `json:"title"`
	Date            string                   `json:"date"`
	DurationSeconds int                      `json:"duration_seconds"`
	Transcript      []domain.TranscriptEntry `json:"transcript"`
	Summary         string                   `json:"summary"`
	ActionItems     []domain.ActionItem      `json:"action_items"`
	Status          string                   `json:"status"`
}

// Sync upserts the meeting remotely and returns a copy with Synced set.
// The SDK does not accept a context; cancellation is checked up front.
func (s *SupabaseSyncer) Sync(ctx context.Context, meeting domain.Meeting) (domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return meeting, err
	}

	row := meetingRow{
		ID:              meeting.ID,
		Title:           meeting.Title,
		Date:            meeting.Date.Format("2006-01-02T15:04:05Z07:00"),
		DurationSeconds: meeting.DurationSeconds,
		Transcript:      meeting.Transcript,
		Summary:         meeting.Summary,
		ActionItems:     meeting.ActionItems,
		Status:          string(meeting.Status),
	}
	if row.Transcript == nil {
		row.Transcript = []domain.TranscriptEntry{}
	}
	if row.ActionItems == nil {
		row.ActionItems = []domain.ActionItem{}
	}

	_, _, err := s.sdk.From(meetingsTable).Insert(row, true, "id", "minimal", "").Execute()
	if err != nil {
		return meeting, fmt.Errorf("sync meeting %s: %w", meeting.ID, err)
	}

	meeting.Synced = true
	return meeting, nil
}
