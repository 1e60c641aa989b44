// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ShravaniAWanjari/parser-pipeline/cmd/insights-api/handlers"
	"github.com/ShravaniAWanjari/parser-pipeline/cmd/insights-api/middleware"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/artifacts"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/config"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/llm"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/observability"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/pipeline"
)

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(cfg.Server.ReadTimeout))

	// Health check (unauthenticated)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"sheet-insights"}`))
	})

	// Create service dependencies
	store := artifacts.NewStore(cfg.Storage.UploadDir, cfg.Storage.ResultsDir, cfg.Storage.SheetTextDir)
	client := llm.NewClient(llm.ClientConfig{
		Endpoint:   cfg.LLM.Endpoint,
		APIKey:     cfg.LLM.APIKey,
		Deployment: cfg.LLM.Deployment,
		APIVersion: cfg.LLM.APIVersion,
		Timeout:    cfg.LLM.Timeout,
	})

	p := pipeline.New(logger, cfg.Extraction, store, client)

	// Initialize handlers
	extractionHandler := handlers.NewExtractionHandler(logger, store, p, cfg.Server.MaxUploadBytes)

	r.Post("/upload_excel/", extractionHandler.Upload)
	r.Get("/download/supplier_kpi_file", extractionHandler.DownloadKPIs)

	return r
}
