package workbook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"blank", "", NullMarker},
		{"whitespace only", "   ", NullMarker},
		{"spreadsheet error", "#DIV/0!", NullMarker},
		{"not available error", "#N/A", NullMarker},
		{"oversized formula", "=" + strings.Repeat("A", 60), NullMarker},
		{"short formula kept", "=SUM(A1:A12)", "=SUM(A1:A12)"},
		{"value trimmed", "  42 ", "42"},
		{"newlines flattened", "line one\nline two", "line one line two"},
		{"crlf flattened", "a\r\nb", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanCell(tt.input))
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("mixed bad cells map to null markers", func(t *testing.T) {
		rows := [][]string{
			{"", "Accidents", "#DIV/0!", "  "},
			{"trips", "30", "28", "31"},
		}

		grid := Normalize(rows, 3)
		assert.Equal(t, []string{NullMarker, "Accidents", NullMarker, NullMarker}, grid[0])
		assert.Equal(t, []string{"trips", "30", "28", "31"}, grid[1])
	})

	t.Run("grid is rectangular", func(t *testing.T) {
		rows := [][]string{
			{"KPI", "Jan", "Feb", "Mar"},
			{"trips", "30"},
			{"accidents"},
		}

		grid := Normalize(rows, 3)
		for _, row := range grid {
			assert.Len(t, row, 4)
		}
		assert.Equal(t, []string{"trips", "30", NullMarker, NullMarker}, grid[1])
	})

	t.Run("long null runs are capped", func(t *testing.T) {
		rows := [][]string{
			{"KPI", "Jan"},
		}
		for i := 0; i < 6; i++ {
			rows = append(rows, []string{"", ""})
		}
		rows = append(rows, [][]string{{"trips", "30"}}...)

		grid := Normalize(rows, 3)
		// header + 3 retained null rows + trailing data row
		assert.Len(t, grid, 5)
		assert.Equal(t, []string{"trips", "30"}, grid[len(grid)-1])
	})

	t.Run("all empty region yields nil", func(t *testing.T) {
		rows := [][]string{{"", ""}, {}}
		assert.Nil(t, Normalize(rows, 3))
	})
}

func TestRender(t *testing.T) {
	t.Run("separator after meaningful header row", func(t *testing.T) {
		grid := [][]string{
			{"KPI", "Jan", "Feb"},
			{"trips", "30", "28"},
		}

		text := Render(grid)
		lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
		assert.Equal(t, "| KPI | Jan | Feb |", lines[0])
		assert.Equal(t, "| --- | --- | --- |", lines[1])
		assert.Equal(t, "| trips | 30 | 28 |", lines[2])
	})

	t.Run("no separator when first row is null padding", func(t *testing.T) {
		grid := [][]string{
			{NullMarker, NullMarker, NullMarker},
			{"trips", "30", "28"},
		}

		text := Render(grid)
		assert.NotContains(t, text, "---")
	})

	t.Run("empty grid renders empty", func(t *testing.T) {
		assert.Equal(t, "", Render(nil))
	})
}

func TestCapBlankLines(t *testing.T) {
	blank := "| null | null |"
	data := "| trips | 30 |"

	text := strings.Join([]string{data, blank, blank, blank, blank, blank, data}, "\n")
	capped := CapBlankLines(text, 3)

	lines := strings.Split(capped, "\n")
	assert.Len(t, lines, 5, "runs of blank delimited lines are cut at the cap")

	t.Run("idempotent", func(t *testing.T) {
		assert.Equal(t, capped, CapBlankLines(capped, 3))
	})

	t.Run("non delimited lines are untouched", func(t *testing.T) {
		plain := "first\n\n\n\n\nlast"
		assert.Equal(t, plain, CapBlankLines(plain, 3))
	})
}
