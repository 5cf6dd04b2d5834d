package syncer

import (
	"strings"

	"shadowsync/internal/models"
	"shadowsync/internal/services/commerce"
)

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
)

// Classification is the diff engine's verdict for one feed record. Existing
// is set only for ActionUpdate.
type Classification struct {
	Action   Action
	Record   models.FeedRecord
	Existing *commerce.Product
}

// DiffEngine decides create-vs-update for feed records against a snapshot of
// the platform's products keyed by variant SKU.
type DiffEngine struct{}

func NewDiffEngine() *DiffEngine {
	return &DiffEngine{}
}

// BuildSKUIndex maps every non-empty variant SKU to its owning product. A
// product whose variants all lack SKUs is simply not indexed and will look
// like a CREATE to the feed.
func (e *DiffEngine) BuildSKUIndex(products []commerce.Product) map[string]*commerce.Product {
	index := make(map[string]*commerce.Product)
	for i := range products {
		for _, variant := range products[i].Variants {
			if variant.Sku != "" {
				index[variant.Sku] = &products[i]
			}
		}
	}
	return index
}

// Classify matches the record's SKU against the snapshot.
func (e *DiffEngine) Classify(record models.FeedRecord, index map[string]*commerce.Product) Classification {
	if existing, ok := index[record.SKU]; ok {
		return Classification{Action: ActionUpdate, Record: record, Existing: existing}
	}
	return Classification{Action: ActionCreate, Record: record}
}

// GenerateHandle derives a URL-safe slug from a product title: lower-case,
// strip anything but letters, digits, spaces and hyphens, collapse whitespace
// runs to single hyphens, trim hyphens at the ends. Deterministic and pure,
// so re-running a CREATE yields the same handle.
//
// Two different titles can still collide; collisions are not resolved here.
// The platform rejects the second create and that rejection surfaces as a
// FAILED sync log entry.
func GenerateHandle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '-':
			b.WriteRune(r)
		}
	}

	handle := strings.Join(strings.Fields(b.String()), "-")
	for strings.Contains(handle, "--") {
		handle = strings.ReplaceAll(handle, "--", "-")
	}
	return strings.Trim(handle, "-")
}
