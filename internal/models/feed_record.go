package models

import (
	"fmt"
	"strings"
)

// FeedRecord is one row of the external product feed. The feed is untrusted
// input; Validate runs before a record reaches the diff engine.
type FeedRecord struct {
	SKU               string   `json:"sku" binding:"required"`
	Title             string   `json:"title" binding:"required"`
	Description       *string  `json:"description"`
	Vendor            *string  `json:"vendor"`
	ProductType       *string  `json:"product_type"`
	Tags              []string `json:"tags"`
	Price             float64  `json:"price"`
	CompareAtPrice    *float64 `json:"compare_at_price"`
	InventoryQuantity *int     `json:"inventory_quantity"`
	Weight            *float64 `json:"weight"`
	WeightUnit        *string  `json:"weight_unit"`
	ImageURL          *string  `json:"image_url"`
	VariantTitle      *string  `json:"variant_title"`
}

func (r *FeedRecord) Validate() error {
	if strings.TrimSpace(r.SKU) == "" {
		return fmt.Errorf("feed record is missing a sku")
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("feed record %q is missing a title", r.SKU)
	}
	if r.Price < 0 {
		return fmt.Errorf("feed record %q has a negative price", r.SKU)
	}
	if r.InventoryQuantity != nil && *r.InventoryQuantity < 0 {
		return fmt.Errorf("feed record %q has a negative inventory quantity", r.SKU)
	}
	return nil
}
