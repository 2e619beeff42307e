package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"meetscribe/internal/domain"
)

const analyzePrompt = `You are given a meeting transcript. Respond with only a JSON object containing: "title" (a short descriptive meeting title), "summary" (a concise free-text summary of the discussion and decisions), and "actionItems" (an array of objects with "task", "owner" and "priority" fields, priority being one of "High", "Medium" or "Low"). Do not include any other output.

Transcript:
`

// Analyze submits the transcript and returns schema-validated structured
// minutes. All failures carry ErrAnalysisFailed.
func (c *Client) Analyze(ctx context.Context, transcript string) (domain.Analysis, error) {
	if strings.TrimSpace(transcript) == "" {
		return domain.Analysis{}, fmt.Errorf("%w: transcript is empty", domain.ErrAnalysisFailed)
	}

	genCfg := &generationConfig{ResponseMimeType: "application/json"}
	if c.cfg.ThinkingBudget > 0 {
		genCfg.ThinkingConfig = &thinkingConfig{ThinkingBudget: c.cfg.ThinkingBudget}
	}

	req := generateRequest{
		Contents: []content{{
			Parts: []part{{Text: analyzePrompt + transcript}},
		}},
		GenerationConfig: genCfg,
	}

	text, err := c.generate(ctx, c.cfg.AnalysisModel, req)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}

	var analysis domain.Analysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: response is not an analysis object: %v", domain.ErrAnalysisFailed, err)
	}
	if err := validateAnalysis(analysis); err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}
	return analysis, nil
}

func validateAnalysis(a domain.Analysis) error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("missing title")
	}
	if strings.TrimSpace(a.Summary) == "" {
		return fmt.Errorf("missing summary")
	}
	for i, item := range a.ActionItems {
		if strings.TrimSpace(item.Task) == "" {
			return fmt.Errorf("action item %d has empty task", i)
		}
		if !item.Priority.Valid() {
			return fmt.Errorf("action item %d has invalid priority %q", i, item.Priority)
		}
	}
	return nil
}
