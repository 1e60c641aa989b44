package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	base := t.TempDir()
	s := NewStore(
		filepath.Join(base, "uploads"),
		filepath.Join(base, "results"),
		filepath.Join(base, "results", "sheet_text"),
	)
	require.NoError(t, s.EnsureDirs())
	return s
}

func TestEnsureDirsIdempotent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.EnsureDirs())
}

func TestSaveUpload(t *testing.T) {
	s := newTestStore(t)

	path, err := s.SaveUpload("suppliers.xlsx", strings.NewReader("content"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestSaveUploadStripsDirectories(t *testing.T) {
	s := newTestStore(t)

	path, err := s.SaveUpload("../outside/suppliers.xlsx", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "suppliers.xlsx", filepath.Base(path))
	assert.Equal(t, s.uploadDir, filepath.Dir(path))
}

func TestWriteSheetTextRoundTrip(t *testing.T) {
	s := newTestStore(t)

	id, err := s.WriteSheetText("Acme_Corp", "| trips | 30 |\n", func(string) bool { return false })
	require.NoError(t, err)
	assert.Equal(t, "Acme_Corp", id)

	assert.True(t, s.SheetTextExists("Acme_Corp"))

	text, err := s.ReadSheetText("Acme_Corp")
	require.NoError(t, err)
	assert.Equal(t, "| trips | 30 |\n", text)
}

func TestWriteSheetTextCollisionCounter(t *testing.T) {
	s := newTestStore(t)
	taken := map[string]bool{}
	claim := func(id string) bool { return taken[id] }

	first, err := s.WriteSheetText("Acme_Corp", "first", claim)
	require.NoError(t, err)
	taken[first] = true

	second, err := s.WriteSheetText("Acme_Corp", "second", claim)
	require.NoError(t, err)
	taken[second] = true

	third, err := s.WriteSheetText("Acme_Corp", "third", claim)
	require.NoError(t, err)

	assert.Equal(t, "Acme_Corp", first)
	assert.Equal(t, "Acme_Corp_1", second)
	assert.Equal(t, "Acme_Corp_2", third)

	text, err := s.ReadSheetText("Acme_Corp_1")
	require.NoError(t, err)
	assert.Equal(t, "second", text)
}

func TestSheetTextExistsMissing(t *testing.T) {
	s := newTestStore(t)
	assert.False(t, s.SheetTextExists("never_written"))
}

func TestWriteJSONArtifacts(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.WriteInsights(map[string][]string{
		"Acme Corp": {"one", "two"},
	}))
	require.NoError(t, s.WriteGeneralSummary(json.RawMessage(`{"overview":"fine"}`)))
	require.NoError(t, s.WriteKPIAggregate(map[string]string{"generatedOn": "2026-01-01"}))

	data, err := os.ReadFile(filepath.Join(s.resultsDir, insightsFile))
	require.NoError(t, err)

	var insights map[string][]string
	require.NoError(t, json.Unmarshal(data, &insights))
	assert.Equal(t, []string{"one", "two"}, insights["Acme Corp"])

	_, err = os.Stat(s.KPIAggregatePath())
	assert.NoError(t, err)

	data, err = os.ReadFile(filepath.Join(s.resultsDir, generalSummaryFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"overview":"fine"}`, string(data))
}
