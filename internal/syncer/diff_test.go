package syncer

import (
	"testing"

	"shadowsync/internal/models"
	"shadowsync/internal/services/commerce"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBySKU(t *testing.T) {
	engine := NewDiffEngine()

	index := engine.BuildSKUIndex([]commerce.Product{
		{
			ID:    101,
			Title: "Existing Product",
			Variants: []commerce.Variant{
				{ID: 1001, Sku: "ABC", Price: "10.00"},
			},
		},
	})

	update := engine.Classify(models.FeedRecord{SKU: "ABC", Title: "Existing Product"}, index)
	assert.Equal(t, ActionUpdate, update.Action)
	assert.Equal(t, int64(101), update.Existing.ID)

	create := engine.Classify(models.FeedRecord{SKU: "XYZ", Title: "New Product"}, index)
	assert.Equal(t, ActionCreate, create.Action)
	assert.Nil(t, create.Existing)
}

func TestBuildSKUIndexSkipsBlankSKUs(t *testing.T) {
	engine := NewDiffEngine()

	index := engine.BuildSKUIndex([]commerce.Product{
		{
			ID: 201,
			Variants: []commerce.Variant{
				{ID: 2001, Sku: ""},
				{ID: 2002, Sku: "KEEP"},
			},
		},
	})

	assert.Len(t, index, 1)
	assert.Contains(t, index, "KEEP")
}

func TestGenerateHandle(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Gas Spring 10mm", "gas-spring-10mm"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Symbols!@# removed?", "symbols-removed"},
		{"Multi    space   collapse", "multi-space-collapse"},
		{"Already-Hyphenated Title", "already-hyphenated-title"},
		{"- edge hyphens -", "edge-hyphens"},
		{"ÜBER umlauts", "ber-umlauts"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GenerateHandle(tt.title), "title %q", tt.title)
	}
}

func TestGenerateHandleDeterministic(t *testing.T) {
	title := "Gas Spring 10mm (Heavy Duty!)"
	first := GenerateHandle(title)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, GenerateHandle(title))
	}
}
