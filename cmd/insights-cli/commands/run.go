package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ShravaniAWanjari/parser-pipeline/cmd/insights-cli/ui"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/artifacts"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/config"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/llm"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/observability"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run <workbook.xlsx>",
	Short: "Run the extraction pipeline over a workbook",
	Long:  "Process an Excel workbook end to end and write the KPI, insight and summary artifacts.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtraction,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runExtraction(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	_ = godotenv.Load()

	path := args[0]
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return fmt.Errorf("only .xlsx files are supported: %s", path)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ui.InitUI(noColor)
	ui.Section("Sheet Extraction")
	ui.Info("Workbook: %s", path)
	ui.Info("Results: %s", cfg.Storage.ResultsDir)
	ui.Newline()

	// The CLI logs quietly; the spinner carries the progress story.
	logger := observability.NewLogger(observability.LogConfig{
		Level:       "warn",
		Format:      "console",
		ServiceName: "insights-cli",
	})

	store := artifacts.NewStore(cfg.Storage.UploadDir, cfg.Storage.ResultsDir, cfg.Storage.SheetTextDir)
	if err := store.EnsureDirs(); err != nil {
		return fmt.Errorf("create artifact directories: %w", err)
	}

	client := llm.NewClient(llm.ClientConfig{
		Endpoint:   cfg.LLM.Endpoint,
		APIKey:     cfg.LLM.APIKey,
		Deployment: cfg.LLM.Deployment,
		APIVersion: cfg.LLM.APIVersion,
		Timeout:    cfg.LLM.Timeout,
	})

	p := pipeline.New(logger, cfg.Extraction, store, client)

	spinner := ui.NewSpinner("Extracting KPIs and insights...")
	spinner.Start()

	result, err := p.Run(ctx, path)
	spinner.Stop()

	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	ui.Success("Extraction completed in %s", result.Duration.Round(time.Millisecond))
	ui.Newline()

	for _, name := range result.ProcessedSheets {
		ui.Success("Processed: %s", name)
	}
	for _, name := range result.SkippedSheets {
		ui.Warning("Skipped: %s", name)
	}

	ui.Newline()
	ui.Info("KPI aggregate: %s", store.KPIAggregatePath())
	ui.Info("Insights: %d sheet(s)", len(result.Insights))
	if result.GeneralSummary == nil {
		ui.Warning("General summary unavailable for this run")
	}

	return nil
}
