package workbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeSheetName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "spaces become underscores",
			input: "Acme Corp - Supplier Partner Performance Matrix",
			want:  "Acme_Corp_-_Supplier_Partner_Performance_Matrix",
		},
		{
			name:  "runs of unsafe characters collapse",
			input: "A//B   C",
			want:  "A_B_C",
		},
		{
			name:  "leading and trailing underscores trimmed",
			input: "  (Sheet) ",
			want:  "Sheet",
		},
		{
			name:  "hyphens survive",
			input: "north-west",
			want:  "north-west",
		},
		{
			name:  "already safe name unchanged",
			input: "Sheet_1",
			want:  "Sheet_1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeSheetName(tt.input))
		})
	}
}

func TestEncodeSheetNameIdempotent(t *testing.T) {
	names := []string{
		"Acme Corp - Supplier Partner Performance Matrix",
		"Plain",
		"a//b  c__d",
	}
	for _, name := range names {
		once := EncodeSheetName(name)
		assert.Equal(t, once, EncodeSheetName(once), "encoding %q twice must match encoding once", name)
	}
}

func TestNameMappingResolve(t *testing.T) {
	names := []string{
		"Acme Corp - Supplier Partner Performance Matrix",
		"Beta Industries",
	}
	m := BuildNameMapping(names)

	got, ok := m.Resolve("Acme_Corp_-_Supplier_Partner_Performance_Matrix")
	assert.True(t, ok)
	assert.Equal(t, names[0], got)

	got, ok = m.Resolve("Beta_Industries")
	assert.True(t, ok)
	assert.Equal(t, "Beta Industries", got)

	_, ok = m.Resolve("Unknown_Sheet")
	assert.False(t, ok)
}

func TestNameMappingCollisionFirstWins(t *testing.T) {
	// "A B" and "A  B" encode to the same identifier.
	m := BuildNameMapping([]string{"A B", "A  B"})

	got, ok := m.Resolve("A_B")
	assert.True(t, ok)
	assert.Equal(t, "A B", got)
}

func TestSupplierName(t *testing.T) {
	assert.Equal(t, "Acme Corp", SupplierName("Acme Corp - Supplier Partner Performance Matrix"))
	assert.Equal(t, "Beta Industries", SupplierName("Beta Industries"))
	assert.Equal(t, "", SupplierName("- Supplier Partner Performance Matrix"))
}
