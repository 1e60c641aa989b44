// Package workbook reads supplier performance workbooks and converts worksheet
// data regions into a canonical tabular text form.
package workbook

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ErrWorkbookOpen indicates the file could not be parsed as a spreadsheet.
var ErrWorkbookOpen = errors.New("workbook: cannot open file")

// Workbook provides sheet enumeration and row access over an open spreadsheet.
// Close must be called to release the underlying file handle.
type Workbook struct {
	f *excelize.File
}

// Open opens a workbook file. A corrupt file or a file whose content is not a
// spreadsheet yields ErrWorkbookOpen.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrWorkbookOpen, path, err)
	}
	return &Workbook{f: f}, nil
}

// Close releases the underlying file handle.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// SheetNames returns worksheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.f.GetSheetList()
}

// Rows returns the cell values of a worksheet as strings, row by row. Index i
// corresponds to spreadsheet row i+1, so downstream boundary math stays
// 1-indexed. Cells holding formulas surface as their "=..." formula text
// rather than the cached result.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows of %q: %w", sheet, err)
	}

	for i := range rows {
		for j := range rows[i] {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				continue
			}
			if formula, err := w.f.GetCellFormula(sheet, cell); err == nil && formula != "" {
				rows[i][j] = "=" + formula
			}
		}
	}

	return rows, nil
}
