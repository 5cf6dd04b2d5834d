package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShadowProduct mirrors one commerce-platform product for local search and
// reporting. The platform stays the source of truth; rows here are only ever
// upserted keyed on ExternalProductID.
type ShadowProduct struct {
	ID                string          `json:"id" gorm:"type:uuid;primary_key"`
	ExternalProductID string          `json:"external_product_id" gorm:"uniqueIndex;not null"`
	Title             string          `json:"title" gorm:"not null"`
	Handle            string          `json:"handle"`
	Vendor            *string         `json:"vendor"`
	ProductType       *string         `json:"product_type"`
	Tags              string          `json:"tags"`
	Description       *string         `json:"description"`
	Status            ProductStatus   `json:"status" gorm:"default:ACTIVE"`
	ImageURLs         string          `json:"image_urls"`
	Variants          []ShadowVariant `json:"variants" gorm:"foreignKey:ShadowProductID"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type ShadowVariant struct {
	ID                string `json:"id" gorm:"type:uuid;primary_key"`
	ShadowProductID   string `json:"shadow_product_id" gorm:"type:uuid;not null;index"`
	ExternalVariantID string `json:"external_variant_id" gorm:"uniqueIndex;not null"`
	// InventoryItemID is the platform's inventory-item reference carried by
	// inventory_levels/update webhooks, which never mention the variant id.
	InventoryItemID   *string   `json:"inventory_item_id" gorm:"index"`
	SKU               *string   `json:"sku" gorm:"index"`
	Title             string    `json:"title"`
	Price             float64   `json:"price" gorm:"type:decimal(10,2)"`
	CompareAtPrice    *float64  `json:"compare_at_price" gorm:"type:decimal(10,2)"`
	InventoryQuantity int       `json:"inventory_quantity" gorm:"default:0"`
	Weight            *float64  `json:"weight"`
	WeightUnit        *string   `json:"weight_unit"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusArchived ProductStatus = "ARCHIVED"
	ProductStatusDraft    ProductStatus = "DRAFT"
)

func (p *ShadowProduct) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (v *ShadowVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}
