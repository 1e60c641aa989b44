package extraction

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ShravaniAWanjari/parser-pipeline/internal/llm"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/observability"
)

// Summarizer turns the complete per-sheet insight map into an opaque overall
// summary object. Its input contract is the saved insight artifact.
type Summarizer struct {
	logger    *observability.Logger
	completer llm.Completer
}

// NewSummarizer creates a summarizer using the given provider client.
func NewSummarizer(logger *observability.Logger, completer llm.Completer) *Summarizer {
	return &Summarizer{logger: logger, completer: completer}
}

// Summarize issues one call over the whole insight map and returns the raw
// JSON object produced. The summary is best-effort: callers treat an error as
// a missing artifact, not a failed run.
func (s *Summarizer) Summarize(ctx context.Context, insights map[string][]string) (json.RawMessage, error) {
	payload, err := json.Marshal(insights)
	if err != nil {
		return nil, fmt.Errorf("marshal insights: %w", err)
	}

	content, err := s.completer.Complete(ctx, llm.CompletionRequest{
		System:      summarySystemPrompt,
		User:        buildSummaryPrompt(payload),
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("summary call: %w", err)
	}

	raw, err := llm.ExtractJSONObject(content)
	if err != nil {
		return nil, fmt.Errorf("summary response: %w", err)
	}

	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("summary response is not valid JSON")
	}

	return json.RawMessage(raw), nil
}
