package workbook

import "strings"

// NullMarker is the sentinel written for missing or invalid cells in the
// canonical table, distinct from zero.
const NullMarker = "null"

// maxFormulaLen is the cutoff beyond which a formula string is treated as
// noise rather than data.
const maxFormulaLen = 50

// Normalize converts a located data region into a rectangular grid of cleaned
// strings. Every row is padded (or truncated) to the maximum column count
// among non-empty rows, and runs of more than maxEmptyRows consecutive
// fully-null rows are dropped. Returns nil when the region has no non-empty
// rows at all.
func Normalize(rows [][]string, maxEmptyRows int) [][]string {
	maxCols := 0
	for _, row := range rows {
		if !isEmptyRow(row) && len(row) > maxCols {
			maxCols = len(row)
		}
	}
	if maxCols == 0 {
		return nil
	}

	var grid [][]string
	emptyRun := 0
	for _, row := range rows {
		cleaned := make([]string, maxCols)
		for j := 0; j < maxCols; j++ {
			if j < len(row) {
				cleaned[j] = cleanCell(row[j])
			} else {
				cleaned[j] = NullMarker
			}
		}

		if allNull(cleaned) {
			emptyRun++
			if emptyRun > maxEmptyRows {
				continue
			}
		} else {
			emptyRun = 0
		}

		grid = append(grid, cleaned)
	}

	return grid
}

// cleanCell applies the per-cell text policy; the first matching rule wins:
// blank, spreadsheet error values ("#...!"), and oversized formulas all map
// to the null marker, everything else is trimmed with newlines flattened.
func cleanCell(s string) string {
	t := strings.TrimSpace(s)
	switch {
	case t == "":
		return NullMarker
	case strings.HasPrefix(t, "#"):
		return NullMarker
	case strings.HasPrefix(t, "=") && len(t) > maxFormulaLen:
		return NullMarker
	}
	t = strings.ReplaceAll(t, "\r\n", " ")
	t = strings.ReplaceAll(t, "\n", " ")
	return t
}

func allNull(row []string) bool {
	for _, cell := range row {
		if cell != NullMarker {
			return false
		}
	}
	return true
}

// Render writes the grid as delimited text, one line per row with cells
// joined by " | " inside leading and trailing pipes. A dash separator line is
// inserted after the first row when that row looks like a header, meaning it
// carries meaningful content once null markers are ignored.
func Render(grid [][]string) string {
	if len(grid) == 0 {
		return ""
	}

	var b strings.Builder
	for i, row := range grid {
		b.WriteString("| ")
		b.WriteString(strings.Join(row, " | "))
		b.WriteString(" |\n")

		if i == 0 && isMeaningfulGridRow(row) {
			sep := make([]string, len(row))
			for j := range sep {
				sep[j] = "---"
			}
			b.WriteString("| ")
			b.WriteString(strings.Join(sep, " | "))
			b.WriteString(" |\n")
		}
	}
	return b.String()
}

// isMeaningfulGridRow mirrors hasMeaningfulContent but treats the null marker
// as an empty cell, since Normalize has already run.
func isMeaningfulGridRow(row []string) bool {
	raw := make([]string, len(row))
	for i, cell := range row {
		if cell == NullMarker {
			raw[i] = ""
		} else {
			raw[i] = cell
		}
	}
	return hasMeaningfulContent(raw)
}

// CapBlankLines re-applies the consecutive-blank-row bound on rendered text.
// It operates purely on lines, counting a line as blank when every delimited
// cell is empty or the null marker, and drops lines past maxBlank in a run.
// Running it on already-capped text is a no-op.
func CapBlankLines(text string, maxBlank int) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	blankRun := 0
	for _, line := range lines {
		if isBlankDelimitedLine(line) {
			blankRun++
			if blankRun > maxBlank {
				continue
			}
		} else {
			blankRun = 0
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

func isBlankDelimitedLine(line string) bool {
	t := strings.TrimSpace(line)
	if t == "" || !strings.HasPrefix(t, "|") {
		return false
	}
	for _, cell := range strings.Split(strings.Trim(t, "|"), "|") {
		c := strings.TrimSpace(cell)
		if c != "" && c != NullMarker {
			return false
		}
	}
	return true
}
