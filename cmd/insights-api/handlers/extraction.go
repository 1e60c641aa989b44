// Package handlers provides HTTP handlers for the insights API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ShravaniAWanjari/parser-pipeline/internal/artifacts"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/observability"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/pipeline"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/workbook"
)

// ExtractionHandler handles workbook uploads and artifact downloads.
type ExtractionHandler struct {
	logger         *observability.Logger
	store          *artifacts.Store
	pipeline       *pipeline.Pipeline
	maxUploadBytes int64
}

// NewExtractionHandler creates a new extraction handler.
func NewExtractionHandler(logger *observability.Logger, store *artifacts.Store, p *pipeline.Pipeline, maxUploadBytes int64) *ExtractionHandler {
	return &ExtractionHandler{
		logger:         logger,
		store:          store,
		pipeline:       p,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadResponseDTO represents the API response for a completed run.
type UploadResponseDTO struct {
	Message         string              `json:"message"`
	ProcessedSheets []string            `json:"processed_sheets"`
	SkippedSheets   []string            `json:"skipped_sheets,omitempty"`
	Insights        map[string][]string `json:"insights"`
	GeneralInsights json.RawMessage     `json:"general-insights,omitempty"`
}

// Upload handles POST /upload_excel/. The pipeline runs synchronously; the
// response carries the insight payload while the KPI aggregate is served via
// the download route.
func (h *ExtractionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "file is required", err.Error())
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		h.writeError(w, http.StatusBadRequest, "only .xlsx files are supported", "")
		return
	}

	path, err := h.store.SaveUpload(header.Filename, file)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", header.Filename).Msg("Failed to save upload")
		h.writeError(w, http.StatusInternalServerError, "failed to save upload", "")
		return
	}

	h.logger.Info().
		Str("filename", header.Filename).
		Int64("size", header.Size).
		Msg("Processing uploaded workbook")

	result, err := h.pipeline.Run(ctx, path)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, workbook.ErrWorkbookOpen),
			errors.Is(err, pipeline.ErrNoSheets),
			errors.Is(err, pipeline.ErrNoProcessableSheets):
			status = http.StatusBadRequest
		}
		h.writeError(w, status, "extraction failed", err.Error())
		return
	}

	resp := UploadResponseDTO{
		Message:         "Workbook processed successfully",
		ProcessedSheets: result.ProcessedSheets,
		SkippedSheets:   result.SkippedSheets,
		Insights:        result.Insights,
		GeneralInsights: result.GeneralSummary,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// DownloadKPIs handles GET /download/supplier_kpi_file. It serves the KPI
// aggregate produced by the most recent run.
func (h *ExtractionHandler) DownloadKPIs(w http.ResponseWriter, r *http.Request) {
	path := h.store.KPIAggregatePath()
	if _, err := os.Stat(path); err != nil {
		h.writeError(w, http.StatusNotFound, "no KPI file available", "run an extraction first")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	http.ServeFile(w, r, path)
}

func (h *ExtractionHandler) writeError(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	json.NewEncoder(w).Encode(resp)
}
