// Package pipeline wires the workbook reader, region locator, normalizer and
// extraction components into one end-to-end run over an uploaded workbook.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ShravaniAWanjari/parser-pipeline/internal/artifacts"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/config"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/extraction"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/llm"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/observability"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/workbook"
)

// Input errors: the upload is unusable and the pipeline does not proceed.
// Handlers map these to client-side failures.
var (
	ErrNoSheets            = errors.New("pipeline: no sheets found in workbook")
	ErrNoProcessableSheets = errors.New("pipeline: no sheets could be processed")
)

// Pipeline runs the full extraction flow for one workbook.
type Pipeline struct {
	logger     *observability.Logger
	cfg        config.ExtractionConfig
	store      *artifacts.Store
	kpis       *extraction.KPIExtractor
	insights   *extraction.InsightGenerator
	summarizer *extraction.Summarizer
}

// New creates a pipeline. The provider client is injected so the pipeline
// stays testable with a substitute.
func New(logger *observability.Logger, cfg config.ExtractionConfig, store *artifacts.Store, completer llm.Completer) *Pipeline {
	return &Pipeline{
		logger: logger,
		cfg:    cfg,
		store:  store,
		kpis:   extraction.NewKPIExtractor(logger, completer),
		insights: extraction.NewInsightGenerator(logger, completer, extraction.InsightConfig{
			MaxAttempts: cfg.InsightRetries,
			BaseDelay:   cfg.InsightBaseDelay,
			CallTimeout: cfg.InsightTimeout,
			Workers:     cfg.InsightWorkers,
		}),
		summarizer: extraction.NewSummarizer(logger, completer),
	}
}

// RunResult bundles everything one run produced.
type RunResult struct {
	RunID           uuid.UUID
	ProcessedSheets []string
	SkippedSheets   []string
	KPIAggregate    *extraction.KPIAggregate
	Insights        map[string][]string
	GeneralSummary  json.RawMessage
	Duration        time.Duration
}

// Run executes the pipeline over the workbook at path. A single bad sheet is
// logged and omitted; the run fails only for unusable input or an artifact
// write failure.
func (p *Pipeline) Run(ctx context.Context, path string) (*RunResult, error) {
	runID := uuid.New()
	start := time.Now()
	log := p.logger.With().Str("run_id", runID.String()).Logger()

	wb, err := workbook.Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	names := wb.SheetNames()
	if len(names) == 0 {
		return nil, ErrNoSheets
	}

	targets := excludeSummarySheets(names)
	log.Info().
		Strs("sheets", targets).
		Int("excluded", len(names)-len(targets)).
		Msg("Selected sheets for processing")

	sheets, skipped := p.normalizeSheets(wb, targets, log)
	if len(sheets) == 0 {
		return nil, ErrNoProcessableSheets
	}

	result := &RunResult{
		RunID:         runID,
		SkippedSheets: skipped,
	}
	for _, sheet := range sheets {
		result.ProcessedSheets = append(result.ProcessedSheets, sheet.OriginalName)
	}

	// KPI extraction: one call per sheet, strictly sequential, no retry.
	result.KPIAggregate = p.kpis.ExtractAll(ctx, sheets)
	if err := p.store.WriteKPIAggregate(result.KPIAggregate); err != nil {
		return nil, fmt.Errorf("write kpi aggregate: %w", err)
	}

	// Insight extraction: fan-out over the bounded worker pool.
	result.Insights = p.insights.GenerateAll(ctx, sheets)
	if err := p.store.WriteInsights(result.Insights); err != nil {
		return nil, fmt.Errorf("write insights: %w", err)
	}

	// The general summary consumes the complete insight map; a failure here
	// leaves the artifact absent rather than failing the run.
	summary, err := p.summarizer.Summarize(ctx, result.Insights)
	if err != nil {
		log.Warn().Err(err).Msg("General summary generation failed")
	} else {
		result.GeneralSummary = summary
		if err := p.store.WriteGeneralSummary(summary); err != nil {
			return nil, fmt.Errorf("write general summary: %w", err)
		}
	}

	result.Duration = time.Since(start)
	log.Info().
		Int("processed", len(result.ProcessedSheets)).
		Int("skipped", len(result.SkippedSheets)).
		Dur("duration", result.Duration).
		Msg("Run completed")

	return result, nil
}

// normalizeSheets converts each target worksheet into canonical text,
// reusing an existing artifact when one is already on disk for the sheet's
// identifier. Per-sheet failures are reported, never raised.
func (p *Pipeline) normalizeSheets(wb *workbook.Workbook, targets []string, log *observability.Logger) ([]workbook.CanonicalSheet, []string) {
	mapping := workbook.BuildNameMapping(targets)
	seen := make(map[string]bool, len(targets))

	var sheets []workbook.CanonicalSheet
	var skipped []string

	for _, name := range targets {
		slog := log.WithSheet(name)
		id := workbook.EncodeSheetName(name)

		// Cached-artifact short-circuit: skip locate/normalize entirely and
		// report under the name recovered via the mapping. The cache never
		// detects that a different sheet produced the artifact; see DESIGN.md.
		if !seen[id] && p.store.SheetTextExists(id) {
			text, err := p.store.ReadSheetText(id)
			if err != nil {
				slog.Error().Err(err).Msg("Failed to read cached sheet text")
				skipped = append(skipped, name)
				continue
			}

			original := id
			if resolved, ok := mapping.Resolve(id); ok {
				original = resolved
			}

			seen[id] = true
			sheets = append(sheets, workbook.CanonicalSheet{
				Identifier:   id,
				OriginalName: original,
				Supplier:     workbook.SupplierName(original),
				Text:         text,
				Cached:       true,
			})
			slog.Info().Str("identifier", id).Msg("Reusing cached sheet text")
			continue
		}

		rows, err := wb.Rows(name)
		if err != nil {
			slog.Error().Err(err).Msg("Failed to read sheet rows")
			skipped = append(skipped, name)
			continue
		}

		headerRow, monthCols, ok := workbook.FindHeaderRow(rows, p.cfg.HeaderSearchWindow)
		if !ok {
			slog.Warn().Msg("No month header found, skipping sheet")
			skipped = append(skipped, name)
			continue
		}
		slog.Debug().
			Int("header_row", headerRow).
			Int("month_columns", len(monthCols)).
			Msg("Located header row")

		region := workbook.FindDataBoundaries(rows, p.cfg.DataStartRow)
		grid := workbook.Normalize(region, p.cfg.MaxEmptyRows)
		if len(grid) == 0 {
			slog.Warn().Msg("No meaningful content in sheet, skipping")
			skipped = append(skipped, name)
			continue
		}

		text := workbook.CapBlankLines(workbook.Render(grid), p.cfg.MaxEmptyRows)

		finalID, err := p.store.WriteSheetText(id, text, func(candidate string) bool {
			return seen[candidate]
		})
		if err != nil {
			slog.Error().Err(err).Msg("Failed to write sheet text")
			skipped = append(skipped, name)
			continue
		}

		seen[finalID] = true
		sheets = append(sheets, workbook.CanonicalSheet{
			Identifier:   finalID,
			OriginalName: name,
			Supplier:     workbook.SupplierName(name),
			Text:         text,
		})
		slog.Info().Str("identifier", finalID).Msg("Generated sheet text")
	}

	return sheets, skipped
}

// excludeSummarySheets drops the leading summary worksheets by position: with
// more than two sheets the first two are skipped, with exactly two the first,
// and a single sheet is processed as-is.
func excludeSummarySheets(names []string) []string {
	switch {
	case len(names) > 2:
		return names[2:]
	case len(names) == 2:
		return names[1:]
	default:
		return names
	}
}
