package store

import (
	"errors"
	"fmt"

	"shadowsync/internal/models"

	"gorm.io/gorm"
)

// ProductFilter narrows ListProducts; zero values mean "no filter".
type ProductFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

func (s *ShadowStore) ListProducts(filter ProductFilter) ([]models.ShadowProduct, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	query := s.db.Model(&models.ShadowProduct{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR handle LIKE ?", pattern, pattern)
	}

	var total int64
	query.Count(&total)

	var products []models.ShadowProduct
	offset := (filter.Page - 1) * filter.Limit
	err := query.Preload("Variants").Offset(offset).Limit(filter.Limit).Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func (s *ShadowStore) GetProduct(id string) (*models.ShadowProduct, error) {
	var product models.ShadowProduct
	err := s.db.Preload("Variants").First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", id, err)
	}
	return &product, nil
}

// LogFilter narrows ListSyncLogs; zero values mean "no filter".
type LogFilter struct {
	BatchID string
	Status  string
	Page    int
	Limit   int
}

func (s *ShadowStore) ListSyncLogs(filter LogFilter) ([]models.SyncLogEntry, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	query := s.db.Model(&models.SyncLogEntry{})
	if filter.BatchID != "" {
		query = query.Where("batch_id = ?", filter.BatchID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	query.Count(&total)

	var entries []models.SyncLogEntry
	offset := (filter.Page - 1) * filter.Limit
	err := query.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sync logs: %w", err)
	}
	return entries, total, nil
}
