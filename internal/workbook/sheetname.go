package workbook

import (
	"regexp"
	"strings"
)

var (
	unsafeChars   = regexp.MustCompile(`[^\w\-]`)
	repeatedUnder = regexp.MustCompile(`_+`)
)

// EncodeSheetName derives a filesystem-safe identifier from a worksheet name:
// characters outside word/hyphen/underscore become underscores, runs collapse
// to one, and leading/trailing underscores are trimmed. Encoding is
// idempotent. Distinct names may collide; the artifact writer disambiguates
// with a counter suffix, the codec itself does not.
func EncodeSheetName(name string) string {
	clean := unsafeChars.ReplaceAllString(strings.TrimSpace(name), "_")
	clean = repeatedUnder.ReplaceAllString(clean, "_")
	return strings.Trim(clean, "_")
}

// NameMapping associates canonical identifiers with the original worksheet
// names of one extraction run. Downstream steps store artifacts under the
// identifier but must report results under the human-readable name.
type NameMapping struct {
	byID  map[string]string
	names []string
}

// BuildNameMapping indexes the given worksheet names by their encoded form.
// When two names encode identically the first one wins.
func BuildNameMapping(names []string) *NameMapping {
	m := &NameMapping{
		byID:  make(map[string]string, len(names)),
		names: append([]string(nil), names...),
	}
	for _, name := range names {
		id := EncodeSheetName(name)
		if _, exists := m.byID[id]; !exists {
			m.byID[id] = name
		}
	}
	return m
}

// Resolve maps an identifier back to its original worksheet name, trying an
// exact match first and a trimmed match second. When both fail the caller
// should fall back to the identifier itself as the display name.
func (m *NameMapping) Resolve(id string) (string, bool) {
	if name, ok := m.byID[id]; ok {
		return name, true
	}
	for _, name := range m.names {
		if EncodeSheetName(strings.TrimSpace(name)) == id {
			return name, true
		}
	}
	return "", false
}
