package syncer

import (
	"strconv"
	"strings"

	"shadowsync/internal/models"
	"shadowsync/internal/services/commerce"
	"shadowsync/internal/store"
)

// ProductFieldsFromPlatform mirrors a platform product into shadow columns.
// Used after a successful create, when the platform's copy is authoritative.
func ProductFieldsFromPlatform(product *commerce.Product) store.ProductFields {
	fields := store.ProductFields{
		Title:     product.Title,
		Handle:    product.Handle,
		Tags:      product.Tags,
		Status:    mapPlatformStatus(product.Status),
		ImageURLs: joinImageURLs(product.Images),
	}
	if product.Vendor != "" {
		fields.Vendor = &product.Vendor
	}
	if product.ProductType != "" {
		fields.ProductType = &product.ProductType
	}
	if product.BodyHTML != "" {
		fields.Description = &product.BodyHTML
	}
	return fields
}

// productFieldsFromFeed mirrors a feed record into shadow columns. Used on
// UPDATE classification, where the change stays local.
func productFieldsFromFeed(record models.FeedRecord) store.ProductFields {
	fields := store.ProductFields{
		Title:       record.Title,
		Tags:        joinTags(record.Tags),
		Vendor:      record.Vendor,
		ProductType: record.ProductType,
		Description: record.Description,
	}
	if record.ImageURL != nil {
		fields.ImageURLs = *record.ImageURL
	}
	return fields
}

func VariantFieldsFromPlatform(variant *commerce.Variant) store.VariantFields {
	price, _ := strconv.ParseFloat(variant.Price, 64)

	fields := store.VariantFields{
		Title:             variant.Title,
		Price:             price,
		InventoryQuantity: variant.InventoryQuantity,
	}
	if variant.Sku != "" {
		fields.SKU = &variant.Sku
	}
	if variant.InventoryItemID != 0 {
		itemID := strconv.FormatInt(variant.InventoryItemID, 10)
		fields.InventoryItemID = &itemID
	}
	if variant.CompareAtPrice != nil {
		if compareAt, err := strconv.ParseFloat(*variant.CompareAtPrice, 64); err == nil {
			fields.CompareAtPrice = &compareAt
		}
	}
	if variant.Weight != 0 {
		weight := variant.Weight
		fields.Weight = &weight
	}
	if variant.WeightUnit != "" {
		fields.WeightUnit = &variant.WeightUnit
	}
	return fields
}

// variantFieldsFromFeed applies the feed's price and stock to the SKU-matched
// platform variant; identity fields stay with the platform's copy.
func variantFieldsFromFeed(record models.FeedRecord, variant *commerce.Variant) store.VariantFields {
	fields := store.VariantFields{
		Title:          variant.Title,
		Price:          record.Price,
		CompareAtPrice: record.CompareAtPrice,
		SKU:            &variant.Sku,
		Weight:         record.Weight,
		WeightUnit:     record.WeightUnit,
	}
	if variant.InventoryItemID != 0 {
		itemID := strconv.FormatInt(variant.InventoryItemID, 10)
		fields.InventoryItemID = &itemID
	}
	if record.InventoryQuantity != nil {
		fields.InventoryQuantity = *record.InventoryQuantity
	} else {
		fields.InventoryQuantity = variant.InventoryQuantity
	}
	return fields
}

func mapPlatformStatus(status string) models.ProductStatus {
	switch strings.ToLower(status) {
	case "archived":
		return models.ProductStatusArchived
	case "draft":
		return models.ProductStatusDraft
	default:
		return models.ProductStatusActive
	}
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

func joinImageURLs(images []commerce.Image) string {
	urls := make([]string, 0, len(images))
	for _, image := range images {
		if image.Src != "" {
			urls = append(urls, image.Src)
		}
	}
	return strings.Join(urls, ",")
}
