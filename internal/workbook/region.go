package workbook

import (
	"strings"
	"unicode"
)

// Months are the twelve header labels recognized by the region locator, and
// the key set of every per-supplier KPI record.
var Months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var monthSet = func() map[string]bool {
	m := make(map[string]bool, len(Months))
	for _, name := range Months {
		m[name] = true
	}
	return m
}()

// FindHeaderRow scans the first window rows for a header: a row where at least
// one cell, trimmed and title-cased, equals a month abbreviation. The first
// qualifying row wins; there is no scoring between candidates. It returns the
// 1-indexed row number and the column indices holding month labels. A missing
// header is an expected data-quality condition, so ok=false rather than an
// error; the caller should skip the sheet and report.
func FindHeaderRow(rows [][]string, window int) (rowNum int, monthCols []int, ok bool) {
	limit := window
	if limit > len(rows) {
		limit = len(rows)
	}

	for i := 0; i < limit; i++ {
		var cols []int
		for j, cell := range rows[i] {
			if monthSet[titleCase(strings.TrimSpace(cell))] {
				cols = append(cols, j)
			}
		}
		if len(cols) > 0 {
			return i + 1, cols, true
		}
	}

	return 0, nil, false
}

// FindDataBoundaries takes all rows from startRow (1-indexed) onward and trims
// them to the last row with meaningful content plus three trailing rows kept
// for visual spacing. If no row is meaningful the first ten rows are returned
// as a fallback. Rows beyond the returned slice are discarded from the sheet's
// canonical text.
func FindDataBoundaries(rows [][]string, startRow int) [][]string {
	if startRow < 1 {
		startRow = 1
	}
	if startRow > len(rows) {
		return nil
	}
	sub := rows[startRow-1:]

	lastMeaningful := -1
	for i, row := range sub {
		if hasMeaningfulContent(row) {
			lastMeaningful = i
		}
	}

	if lastMeaningful < 0 {
		if len(sub) > 10 {
			return sub[:10]
		}
		return sub
	}

	end := lastMeaningful + 4
	if end > len(sub) {
		end = len(sub)
	}
	return sub[:end]
}

// isEmptyRow reports whether every cell is blank after trimming.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// hasMeaningfulContent reports whether a row carries real data: at least two
// non-empty cells, excluding rows that are formula-only with fewer than three
// non-empty cells.
func hasMeaningfulContent(row []string) bool {
	var nonEmpty []string
	for _, cell := range row {
		if t := strings.TrimSpace(cell); t != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	if len(nonEmpty) < 2 {
		return false
	}

	formulaOnly := true
	for _, cell := range nonEmpty {
		if !strings.HasPrefix(cell, "=") {
			formulaOnly = false
			break
		}
	}
	return !(formulaOnly && len(nonEmpty) < 3)
}

// titleCase upper-cases the first rune and lower-cases the rest, enough to
// match month abbreviations written as "JAN", "jan" or "Jan".
func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
