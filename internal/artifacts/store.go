// Package artifacts manages the on-disk results of extraction runs: per-sheet
// canonical text files plus the aggregate JSON artifacts, each overwritten on
// every run.
package artifacts

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	kpiAggregateFile   = "final_supplier_kpis.json"
	insightsFile       = "insights.json"
	generalSummaryFile = "general-info.json"
	sheetTextExt       = ".md"
)

// Store reads and writes run artifacts under fixed directories.
type Store struct {
	uploadDir    string
	resultsDir   string
	sheetTextDir string
}

// NewStore creates a store over the given directories.
func NewStore(uploadDir, resultsDir, sheetTextDir string) *Store {
	return &Store{
		uploadDir:    uploadDir,
		resultsDir:   resultsDir,
		sheetTextDir: sheetTextDir,
	}
}

// EnsureDirs creates the upload and result directories if missing.
func (s *Store) EnsureDirs() error {
	for _, dir := range []string{s.uploadDir, s.resultsDir, s.sheetTextDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return nil
}

// SaveUpload writes an uploaded workbook into the upload directory and
// returns its path.
func (s *Store) SaveUpload(filename string, r io.Reader) (string, error) {
	path := filepath.Join(s.uploadDir, filepath.Base(filename))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return path, nil
}

// SheetTextPath returns the canonical text path for an identifier.
func (s *Store) SheetTextPath(id string) string {
	return filepath.Join(s.sheetTextDir, id+sheetTextExt)
}

// SheetTextExists reports whether a canonical text artifact is already on
// disk for the identifier. Existence alone triggers the regeneration
// short-circuit; content is not re-validated.
func (s *Store) SheetTextExists(id string) bool {
	_, err := os.Stat(s.SheetTextPath(id))
	return err == nil
}

// WriteSheetText stores canonical text under the identifier, disambiguating
// with a counter suffix when the path is already taken by a different sheet
// in the same run. It returns the identifier actually used.
func (s *Store) WriteSheetText(id, text string, taken func(string) bool) (string, error) {
	final := id
	for n := 1; taken(final) || s.SheetTextExists(final); n++ {
		final = fmt.Sprintf("%s_%d", id, n)
	}

	if err := os.WriteFile(s.SheetTextPath(final), []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write sheet text %s: %w", final, err)
	}
	return final, nil
}

// ReadSheetText loads a previously generated canonical text artifact.
func (s *Store) ReadSheetText(id string) (string, error) {
	data, err := os.ReadFile(s.SheetTextPath(id))
	if err != nil {
		return "", fmt.Errorf("read sheet text %s: %w", id, err)
	}
	return string(data), nil
}

// KPIAggregatePath returns the path of the KPI aggregate artifact.
func (s *Store) KPIAggregatePath() string {
	return filepath.Join(s.resultsDir, kpiAggregateFile)
}

// WriteKPIAggregate serializes the KPI aggregate artifact.
func (s *Store) WriteKPIAggregate(v interface{}) error {
	return s.writeJSON(s.KPIAggregatePath(), v)
}

// WriteInsights serializes the per-sheet insight map keyed by original
// worksheet name.
func (s *Store) WriteInsights(insights map[string][]string) error {
	return s.writeJSON(filepath.Join(s.resultsDir, insightsFile), insights)
}

// WriteGeneralSummary stores the opaque summary object.
func (s *Store) WriteGeneralSummary(summary json.RawMessage) error {
	return s.writeJSON(filepath.Join(s.resultsDir, generalSummaryFile), summary)
}

func (s *Store) writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
