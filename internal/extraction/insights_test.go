package extraction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShravaniAWanjari/parser-pipeline/internal/llm"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/observability"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/workbook"
)

const insightsJSON = `["one","two","three","four","five"]`

func newTestGenerator(fake *fakeCompleter, cfg InsightConfig) (*InsightGenerator, *[]time.Duration) {
	g := NewInsightGenerator(observability.Nop(), fake, cfg)

	var mu sync.Mutex
	sleeps := &[]time.Duration{}
	g.sleep = func(d time.Duration) {
		mu.Lock()
		*sleeps = append(*sleeps, d)
		mu.Unlock()
	}
	return g, sleeps
}

func TestGenerateAllKeyedByOriginalName(t *testing.T) {
	fake := &fakeCompleter{
		respond: func(req llm.CompletionRequest, call int) (string, error) {
			return insightsJSON, nil
		},
	}
	g, _ := newTestGenerator(fake, DefaultInsightConfig())

	results := g.GenerateAll(context.Background(), []workbook.CanonicalSheet{
		{Identifier: "Acme_Corp", OriginalName: "Acme Corp", Text: "| t |"},
		{Identifier: "Beta_Industries", OriginalName: "Beta Industries", Text: "| t |"},
	})

	require.Len(t, results, 2)
	assert.Contains(t, results, "Acme Corp", "results use the worksheet name, not the identifier")
	assert.Contains(t, results, "Beta Industries")
	assert.Equal(t, []string{"one", "two", "three", "four", "five"}, results["Acme Corp"])
}

func TestGenerateRetriesOnlyOnRateLimit(t *testing.T) {
	t.Run("rate limits retry up to the attempt cap", func(t *testing.T) {
		fake := &fakeCompleter{
			errs: []error{llm.ErrRateLimited, llm.ErrRateLimited, llm.ErrRateLimited},
		}
		g, sleeps := newTestGenerator(fake, InsightConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			Workers:     1,
		})

		results := g.GenerateAll(context.Background(), []workbook.CanonicalSheet{
			{OriginalName: "Acme Corp", Text: "| t |"},
		})

		assert.Empty(t, results)
		assert.Equal(t, 3, fake.callCount())
		assert.Len(t, *sleeps, 2, "no wait after the final attempt")
	})

	t.Run("waits grow with each attempt", func(t *testing.T) {
		fake := &fakeCompleter{
			errs:      []error{llm.ErrRateLimited, llm.ErrRateLimited, nil},
			responses: []string{"", "", insightsJSON},
		}
		g, sleeps := newTestGenerator(fake, InsightConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			Workers:     1,
		})

		results := g.GenerateAll(context.Background(), []workbook.CanonicalSheet{
			{OriginalName: "Acme Corp", Text: "| t |"},
		})

		require.Len(t, results, 1)
		require.Len(t, *sleeps, 2)
		first, second := (*sleeps)[0], (*sleeps)[1]
		assert.GreaterOrEqual(t, first, 2*time.Second)
		assert.Less(t, first, 3*time.Second, "base plus sub-second jitter")
		assert.GreaterOrEqual(t, second, 4*time.Second)
		assert.Less(t, second, 5*time.Second)
		assert.Greater(t, second, first)
	})

	t.Run("other errors fail immediately", func(t *testing.T) {
		fake := &fakeCompleter{
			errs: []error{errors.New("boom")},
		}
		g, sleeps := newTestGenerator(fake, InsightConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			Workers:     1,
		})

		results := g.GenerateAll(context.Background(), []workbook.CanonicalSheet{
			{OriginalName: "Acme Corp", Text: "| t |"},
		})

		assert.Empty(t, results)
		assert.Equal(t, 1, fake.callCount())
		assert.Empty(t, *sleeps)
	})
}

func TestGenerateAllPartialFailure(t *testing.T) {
	fake := &fakeCompleter{
		respond: func(req llm.CompletionRequest, call int) (string, error) {
			if call == 0 {
				return "", errors.New("boom")
			}
			return insightsJSON, nil
		},
	}
	g, _ := newTestGenerator(fake, InsightConfig{MaxAttempts: 1, Workers: 1})

	results := g.GenerateAll(context.Background(), []workbook.CanonicalSheet{
		{OriginalName: "Acme Corp", Text: "| t |"},
		{OriginalName: "Beta Industries", Text: "| t |"},
	})

	assert.NotContains(t, results, "Acme Corp", "failed sheet is absent, not nil")
	assert.Contains(t, results, "Beta Industries")
}

func TestGenerateAllEmptyInput(t *testing.T) {
	g, _ := newTestGenerator(&fakeCompleter{}, DefaultInsightConfig())

	results := g.GenerateAll(context.Background(), nil)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestParseInsights(t *testing.T) {
	got, err := parseInsights("```json\n" + insightsJSON + "\n```")
	require.NoError(t, err)
	assert.Len(t, got, 5)

	_, err = parseInsights("not json at all")
	assert.Error(t, err)

	_, err = parseInsights(`[1, 2, 3]`)
	assert.Error(t, err, "array of non-strings does not decode")
}

func TestBackoffDelayBounds(t *testing.T) {
	for attempt := 0; attempt < 3; attempt++ {
		d := backoffDelay(2*time.Second, attempt)
		base := 2 * time.Second << attempt
		assert.GreaterOrEqual(t, d, base)
		assert.Less(t, d, base+time.Second)
	}
}
