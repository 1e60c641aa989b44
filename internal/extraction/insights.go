package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/ShravaniAWanjari/parser-pipeline/internal/llm"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/observability"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/workbook"
)

// InsightConfig holds the retry and concurrency policy for insight calls.
type InsightConfig struct {
	// MaxAttempts is the total number of tries per sheet, rate-limit only.
	MaxAttempts int
	// BaseDelay doubles on each retry; jitter in [0,1)s is added per wait.
	BaseDelay time.Duration
	// CallTimeout bounds each provider call.
	CallTimeout time.Duration
	// Workers caps the fan-out pool; fewer sheets means fewer workers.
	Workers int
}

// DefaultInsightConfig returns the production retry policy.
func DefaultInsightConfig() InsightConfig {
	return InsightConfig{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		CallTimeout: 30 * time.Second,
		Workers:     4,
	}
}

// InsightGenerator produces the per-sheet insight sets. Sheets fan out over a
// bounded worker pool of independent provider calls; results are merged only
// after every task returns.
type InsightGenerator struct {
	logger    *observability.Logger
	completer llm.Completer
	cfg       InsightConfig

	// sleep is swapped out in tests to observe waits without waiting.
	sleep func(time.Duration)
}

// NewInsightGenerator creates an insight generator using the given provider client.
func NewInsightGenerator(logger *observability.Logger, completer llm.Completer, cfg InsightConfig) *InsightGenerator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &InsightGenerator{
		logger:    logger,
		completer: completer,
		cfg:       cfg,
		sleep:     time.Sleep,
	}
}

// GenerateAll extracts insight sets for all sheets and returns them keyed by
// the original worksheet name. A sheet whose call ultimately fails is simply
// absent from the map; the run is never aborted.
func (g *InsightGenerator) GenerateAll(ctx context.Context, sheets []workbook.CanonicalSheet) map[string][]string {
	workers := g.cfg.Workers
	if len(sheets) < workers {
		workers = len(sheets)
	}
	if workers < 1 {
		return map[string][]string{}
	}

	g.logger.Info().
		Int("sheets", len(sheets)).
		Int("workers", workers).
		Msg("Starting insight generation")

	jobs := make(chan workbook.CanonicalSheet)

	var mu sync.Mutex
	results := make(map[string][]string)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sheet := range jobs {
				insights, err := g.generate(ctx, sheet)
				if err != nil {
					g.logger.WithSheet(sheet.OriginalName).Error().Err(err).Msg("Insight generation failed")
					continue
				}
				mu.Lock()
				results[sheet.OriginalName] = insights
				mu.Unlock()
			}
		}()
	}

	for _, sheet := range sheets {
		jobs <- sheet
	}
	close(jobs)
	wg.Wait()

	g.logger.Info().
		Int("succeeded", len(results)).
		Int("total", len(sheets)).
		Msg("Insight generation completed")

	return results
}

// generate runs the retry loop for one sheet. Only a rate-limit signal is
// retried; any other failure is permanent for this sheet.
func (g *InsightGenerator) generate(ctx context.Context, sheet workbook.CanonicalSheet) ([]string, error) {
	log := g.logger.WithSheet(sheet.OriginalName)

	var lastErr error
	for attempt := 0; attempt < g.cfg.MaxAttempts; attempt++ {
		start := time.Now()
		content, err := g.complete(ctx, sheet.Text)
		if err == nil {
			log.Debug().Dur("elapsed", time.Since(start)).Msg("Insight call completed")
			return parseInsights(content)
		}

		lastErr = err
		if !errors.Is(err, llm.ErrRateLimited) || attempt == g.cfg.MaxAttempts-1 {
			return nil, err
		}

		delay := backoffDelay(g.cfg.BaseDelay, attempt)
		log.Warn().
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Rate limited, backing off")
		g.sleep(delay)
	}

	return nil, lastErr
}

func (g *InsightGenerator) complete(ctx context.Context, tableText string) (string, error) {
	callCtx := ctx
	if g.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.cfg.CallTimeout)
		defer cancel()
	}

	return g.completer.Complete(callCtx, llm.CompletionRequest{
		System:      insightSystemPrompt,
		User:        buildInsightPrompt(tableText),
		Temperature: 0,
		MaxTokens:   800,
	})
}

// backoffDelay computes base*2^attempt plus random jitter in [0,1) seconds.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	exp := float64(base) * math.Pow(2, float64(attempt))
	jitter := time.Duration(rand.Float64() * float64(time.Second))
	return time.Duration(exp) + jitter
}

// parseInsights decodes the expected five-string JSON array.
func parseInsights(content string) ([]string, error) {
	raw, err := llm.ExtractJSONArray(content)
	if err != nil {
		return nil, err
	}

	var insights []string
	if err := json.Unmarshal([]byte(raw), &insights); err != nil {
		return nil, err
	}
	return insights, nil
}
