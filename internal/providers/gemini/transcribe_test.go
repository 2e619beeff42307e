package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"meetscribe/internal/domain"
)

func candidateResponse(t *testing.T, text string) []byte {
	t.Helper()
	payload := map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]any{{"text": text}},
			},
		}},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return data
}

func testRecording() domain.Recording {
	return domain.Recording{
		MimeType:   "audio/wav",
		SampleRate: 16000,
		Samples:    16000,
		Data:       []byte("RIFF....WAVEfake-audio"),
	}
}

func TestTranscribeSuccess(t *testing.T) {
	t.Parallel()

	var captured generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/test-model:generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write(candidateResponse(t, `[{"timestamp":"00:01","text":"hello"},{"timestamp":"00:05","text":"world"}]`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, TranscribeModel: "test-model"}, nil)

	entries, err := client.Transcribe(context.Background(), testRecording())
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Text != "hello" || entries[1].Timestamp != "00:05" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	if len(captured.Contents) != 1 || len(captured.Contents[0].Parts) != 2 {
		t.Fatalf("unexpected request shape: %+v", captured)
	}
	audioPart := captured.Contents[0].Parts[1]
	if audioPart.InlineData == nil || audioPart.InlineData.MimeType != "audio/wav" {
		t.Fatalf("audio part missing inline data: %+v", audioPart)
	}
	if captured.GenerationConfig == nil || captured.GenerationConfig.ResponseMimeType != "application/json" {
		t.Fatalf("expected JSON response mime type, got %+v", captured.GenerationConfig)
	}
}

func TestTranscribeEmptyRecording(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{APIKey: "test-key"}, nil)
	_, err := client.Transcribe(context.Background(), domain.Recording{})
	if !errors.Is(err, domain.ErrTranscriptionFailed) {
		t.Fatalf("expected transcription failure, got %v", err)
	}
}

func TestTranscribeServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL}, nil)
	_, err := client.Transcribe(context.Background(), testRecording())
	if !errors.Is(err, domain.ErrTranscriptionFailed) {
		t.Fatalf("expected transcription failure, got %v", err)
	}
}

func TestTranscribeRejectsMalformedPayload(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
	}{
		{"not json", "this is prose, not JSON"},
		{"empty array", "[]"},
		{"missing text", `[{"timestamp":"00:01","text":""}]`},
		{"missing timestamp", `[{"timestamp":"","text":"hi"}]`},
		{"out of order", `[{"timestamp":"00:10","text":"b"},{"timestamp":"00:05","text":"a"}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write(candidateResponse(t, tc.text))
			}))
			defer server.Close()

			client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL}, nil)
			_, err := client.Transcribe(context.Background(), testRecording())
			if !errors.Is(err, domain.ErrTranscriptionFailed) {
				t.Fatalf("expected transcription failure, got %v", err)
			}
		})
	}
}

func TestTranscribeRequiresAPIKey(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{}, nil)
	_, err := client.Transcribe(context.Background(), testRecording())
	if !errors.Is(err, domain.ErrTranscriptionFailed) {
		t.Fatalf("expected transcription failure, got %v", err)
	}
}
