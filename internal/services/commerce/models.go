package commerce

import (
	"strconv"
	"time"
)

// Product represents a commerce-platform product as returned by the Admin API.
type Product struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	BodyHTML    string     `json:"body_html"`
	Vendor      string     `json:"vendor"`
	ProductType string     `json:"product_type"`
	Handle      string     `json:"handle"`
	Status      string     `json:"status"`
	Tags        string     `json:"tags"`
	Variants    []Variant  `json:"variants"`
	Images      []Image    `json:"images"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at"`
}

// ExternalID renders the platform id in the form the shadow store keys on.
func (p *Product) ExternalID() string {
	return strconv.FormatInt(p.ID, 10)
}

// Variant represents a product variant. SKU is optional on the platform but
// is the join key against the external feed.
type Variant struct {
	ID                int64   `json:"id"`
	ProductID         int64   `json:"product_id"`
	Title             string  `json:"title"`
	Price             string  `json:"price"`
	Sku               string  `json:"sku"`
	Position          int     `json:"position"`
	CompareAtPrice    *string `json:"compare_at_price"`
	InventoryItemID   int64   `json:"inventory_item_id"`
	InventoryQuantity int     `json:"inventory_quantity"`
	Weight            float64 `json:"weight"`
	WeightUnit        string  `json:"weight_unit"`
	Barcode           *string `json:"barcode"`
}

func (v *Variant) ExternalID() string {
	return strconv.FormatInt(v.ID, 10)
}

// Image represents a product image
type Image struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Position  int     `json:"position"`
	Src       string  `json:"src"`
	Alt       *string `json:"alt"`
}

// ProductsResponse represents one page of the products listing API.
type ProductsResponse struct {
	Products []Product `json:"products"`
}

// ProductInput is the payload for a product create. The engine only ever
// creates products with a single initial variant.
type ProductInput struct {
	Title       string         `json:"title"`
	BodyHTML    string         `json:"body_html,omitempty"`
	Vendor      string         `json:"vendor,omitempty"`
	ProductType string         `json:"product_type,omitempty"`
	Handle      string         `json:"handle,omitempty"`
	Tags        string         `json:"tags,omitempty"`
	Status      string         `json:"status,omitempty"`
	Variants    []VariantInput `json:"variants,omitempty"`
	Images      []ImageInput   `json:"images,omitempty"`
}

type VariantInput struct {
	Title             string   `json:"title,omitempty"`
	Price             string   `json:"price"`
	Sku               string   `json:"sku,omitempty"`
	CompareAtPrice    *string  `json:"compare_at_price,omitempty"`
	InventoryQuantity int      `json:"inventory_quantity"`
	Weight            *float64 `json:"weight,omitempty"`
	WeightUnit        string   `json:"weight_unit,omitempty"`
}

type ImageInput struct {
	Src string `json:"src"`
}

// UserError is one field/message pair from the platform's validation response.
type UserError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CreateResult is the tagged outcome of CreateProduct. Exactly one of Product
// and UserErrors is populated; callers must branch on Failed rather than rely
// on a Go error, which is reserved for transport-level trouble.
type CreateResult struct {
	Product    *Product
	UserErrors []UserError
}

func (r *CreateResult) Failed() bool {
	return len(r.UserErrors) > 0
}

// FirstError returns the first platform validation message, or "".
func (r *CreateResult) FirstError() string {
	if len(r.UserErrors) == 0 {
		return ""
	}
	return r.UserErrors[0].Message
}
