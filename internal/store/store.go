package store

import (
	"errors"
	"fmt"

	"shadowsync/internal/logger"
	"shadowsync/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrProductNotFound = errors.New("shadow product not found")
	ErrVariantNotFound = errors.New("shadow variant not found")
)

// ShadowStore owns all writes to the shadow tables. Every write is keyed on a
// stable external id and is safe to apply twice, which is what makes
// at-least-once webhook delivery and re-run batches harmless.
type ShadowStore struct {
	db     *gorm.DB
	logger *logger.Logger
}

func New(db *gorm.DB, logger *logger.Logger) *ShadowStore {
	return &ShadowStore{
		db:     db,
		logger: logger,
	}
}

// ProductFields carries the mutable columns of a ShadowProduct.
type ProductFields struct {
	Title       string
	Handle      string
	Vendor      *string
	ProductType *string
	Tags        string
	Description *string
	Status      models.ProductStatus
	ImageURLs   string
}

// VariantFields carries the mutable columns of a ShadowVariant.
type VariantFields struct {
	SKU               *string
	InventoryItemID   *string
	Title             string
	Price             float64
	CompareAtPrice    *float64
	InventoryQuantity int
	Weight            *float64
	WeightUnit        *string
}

// UpsertProduct inserts or updates the row for externalProductID. The unique
// index on external_product_id collapses duplicate deliveries to one row.
func (s *ShadowStore) UpsertProduct(externalProductID string, fields ProductFields) (*models.ShadowProduct, error) {
	status := fields.Status
	if status == "" {
		status = models.ProductStatusActive
	}

	product := models.ShadowProduct{
		ExternalProductID: externalProductID,
		Title:             fields.Title,
		Handle:            fields.Handle,
		Vendor:            fields.Vendor,
		ProductType:       fields.ProductType,
		Tags:              fields.Tags,
		Description:       fields.Description,
		Status:            status,
		ImageURLs:         fields.ImageURLs,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "handle", "vendor", "product_type", "tags",
			"description", "status", "image_urls", "updated_at",
		}),
	}).Create(&product).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert product %s: %w", externalProductID, err)
	}

	// On conflict the generated id was discarded; read the row back so callers
	// always see the stable local id.
	var saved models.ShadowProduct
	if err := s.db.First(&saved, "external_product_id = ?", externalProductID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload product %s: %w", externalProductID, err)
	}
	return &saved, nil
}

// UpsertVariant inserts or updates the row for externalVariantID. The parent
// product must already exist; variants are never created as orphans.
func (s *ShadowStore) UpsertVariant(externalProductID, externalVariantID string, fields VariantFields) (*models.ShadowVariant, error) {
	var parent models.ShadowProduct
	err := s.db.First(&parent, "external_product_id = ?", externalProductID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up parent product %s: %w", externalProductID, err)
	}

	variant := models.ShadowVariant{
		ShadowProductID:   parent.ID,
		ExternalVariantID: externalVariantID,
		InventoryItemID:   fields.InventoryItemID,
		SKU:               fields.SKU,
		Title:             fields.Title,
		Price:             fields.Price,
		CompareAtPrice:    fields.CompareAtPrice,
		InventoryQuantity: fields.InventoryQuantity,
		Weight:            fields.Weight,
		WeightUnit:        fields.WeightUnit,
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_variant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"shadow_product_id", "inventory_item_id", "sku", "title", "price",
			"compare_at_price", "inventory_quantity", "weight", "weight_unit",
			"updated_at",
		}),
	}).Create(&variant).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert variant %s: %w", externalVariantID, err)
	}

	var saved models.ShadowVariant
	if err := s.db.First(&saved, "external_variant_id = ?", externalVariantID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload variant %s: %w", externalVariantID, err)
	}
	return &saved, nil
}

// ArchiveProduct marks the product ARCHIVED. Variants stay in place for
// historical reference; nothing is hard-deleted.
func (s *ShadowStore) ArchiveProduct(externalProductID string) (*models.ShadowProduct, error) {
	var product models.ShadowProduct
	err := s.db.First(&product, "external_product_id = ?", externalProductID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up product %s: %w", externalProductID, err)
	}

	product.Status = models.ProductStatusArchived
	if err := s.db.Save(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to archive product %s: %w", externalProductID, err)
	}
	return &product, nil
}

// SetInventoryByInventoryItem overwrites the quantity of the variant carrying
// the given platform inventory-item reference.
func (s *ShadowStore) SetInventoryByInventoryItem(inventoryItemID string, quantity int) (*models.ShadowVariant, error) {
	var variant models.ShadowVariant
	err := s.db.First(&variant, "inventory_item_id = ?", inventoryItemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVariantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up variant by inventory item %s: %w", inventoryItemID, err)
	}

	variant.InventoryQuantity = quantity
	if err := s.db.Save(&variant).Error; err != nil {
		return nil, fmt.Errorf("failed to update inventory for variant %s: %w", variant.ExternalVariantID, err)
	}
	return &variant, nil
}

// AppendSyncLog writes one audit entry. Entries are never updated or deleted.
func (s *ShadowStore) AppendSyncLog(entry *models.SyncLogEntry) error {
	if err := s.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append sync log entry: %w", err)
	}
	return nil
}

// UpsertOrderEvent records order metadata keyed on the external order id, so a
// redelivered order webhook overwrites rather than duplicates.
func (s *ShadowStore) UpsertOrderEvent(event *models.OrderEvent) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"topic", "total_price", "currency", "financial_status",
			"line_item_count", "updated_at",
		}),
	}).Create(event).Error
	if err != nil {
		return fmt.Errorf("failed to upsert order event %s: %w", event.ExternalOrderID, err)
	}
	return nil
}
