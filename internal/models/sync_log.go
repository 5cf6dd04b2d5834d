package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncLogEntry is append-only. The engine writes one entry per applied (or
// failed) operation; operators and external tooling read them, nothing here
// ever mutates or deletes them.
type SyncLogEntry struct {
	ID                string        `json:"id" gorm:"type:uuid;primary_key"`
	Operation         SyncOperation `json:"operation" gorm:"not null"`
	Status            SyncStatus    `json:"status" gorm:"not null;index"`
	ShadowProductID   *string       `json:"shadow_product_id" gorm:"type:uuid"`
	ExternalProductID *string       `json:"external_product_id" gorm:"index"`
	ErrorMessage      *string       `json:"error_message"`
	SourcePayload     string        `json:"source_payload"`
	BatchID           *string       `json:"batch_id" gorm:"index"`
	CreatedAt         time.Time     `json:"created_at"`
}

type SyncOperation string

const (
	SyncOperationCreate SyncOperation = "CREATE"
	SyncOperationUpdate SyncOperation = "UPDATE"
	SyncOperationDelete SyncOperation = "DELETE"
)

type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "SUCCESS"
	SyncStatusFailed  SyncStatus = "FAILED"
)

func (e *SyncLogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}
