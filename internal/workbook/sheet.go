package workbook

import "strings"

// supplierNameSuffix is the boilerplate suffix suppliers append to their
// worksheet names; stripping it yields the supplier display name.
const supplierNameSuffix = "- Supplier Partner Performance Matrix"

// CanonicalSheet is the result of normalizing one worksheet: the canonical
// table text plus both identity channels, so downstream extraction never
// re-derives a name from a filesystem path.
type CanonicalSheet struct {
	// Identifier is the filesystem-safe encoded name the artifact is stored under.
	Identifier string
	// OriginalName is the worksheet name as it appears in the workbook.
	OriginalName string
	// Supplier is the display name used as the aggregate key.
	Supplier string
	// Text is the rendered canonical table.
	Text string
	// Cached is true when the canonical text was reused from a prior run.
	Cached bool
}

// SupplierName derives the supplier display name from a worksheet name by
// stripping the fixed performance-matrix suffix.
func SupplierName(sheetName string) string {
	return strings.TrimSpace(strings.ReplaceAll(sheetName, supplierNameSuffix, ""))
}
