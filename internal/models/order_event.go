package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderEvent keeps order metadata for analytics. Order webhooks never touch
// ShadowProduct or ShadowVariant rows.
type OrderEvent struct {
	ID              string    `json:"id" gorm:"type:uuid;primary_key"`
	ExternalOrderID string    `json:"external_order_id" gorm:"uniqueIndex;not null"`
	Topic           string    `json:"topic"`
	TotalPrice      float64   `json:"total_price" gorm:"type:decimal(10,2)"`
	Currency        string    `json:"currency"`
	FinancialStatus *string   `json:"financial_status"`
	LineItemCount   int       `json:"line_item_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (o *OrderEvent) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}
