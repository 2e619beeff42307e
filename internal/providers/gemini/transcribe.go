package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"meetscribe/internal/domain"
)

const transcribePrompt = `Transcribe this meeting recording. Respond with only a JSON array of objects, each with a "timestamp" field (format "MM:SS" from the start of the recording) and a "text" field containing the spoken words. Order entries chronologically. Do not include any other output.`

// Transcribe submits the full recording and returns the schema-validated
// authoritative transcript. All failures carry ErrTranscriptionFailed.
func (c *Client) Transcribe(ctx context.Context, rec domain.Recording) ([]domain.TranscriptEntry, error) {
	if len(rec.Data) == 0 {
		return nil, fmt.Errorf("%w: recording is empty", domain.ErrTranscriptionFailed)
	}

	req := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: transcribePrompt},
				{InlineData: &inlineData{
					MimeType: rec.MimeType,
					Data:     base64.StdEncoding.EncodeToString(rec.Data),
				}},
			},
		}},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	}

	text, err := c.generate(ctx, c.cfg.TranscribeModel, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTranscriptionFailed, err)
	}

	var entries []domain.TranscriptEntry
	if err := json.Unmarshal([]byte(text), &entries); err != nil {
		return nil, fmt.Errorf("%w: response is not a transcript array: %v", domain.ErrTranscriptionFailed, err)
	}
	if err := validateTranscript(entries); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTranscriptionFailed, err)
	}
	return entries, nil
}

func validateTranscript(entries []domain.TranscriptEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("transcript is empty")
	}
	prev := ""
	for i, entry := range entries {
		if entry.Text == "" {
			return fmt.Errorf("entry %d has empty text", i)
		}
		if entry.Timestamp == "" {
			return fmt.Errorf("entry %d has empty timestamp", i)
		}
		if entry.Timestamp < prev {
			return fmt.Errorf("entry %d timestamp %q is before %q", i, entry.Timestamp, prev)
		}
		prev = entry.Timestamp
	}
	return nil
}
