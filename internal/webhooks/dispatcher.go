package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"shadowsync/internal/events"
	"shadowsync/internal/logger"
	"shadowsync/internal/models"
	"shadowsync/internal/services/commerce"
	"shadowsync/internal/store"
	"shadowsync/internal/syncer"
)

var (
	ErrMalformedPayload = errors.New("malformed webhook payload")
	ErrUnhandledTopic   = errors.New("unhandled webhook topic")
)

// Topics this engine subscribes to.
const (
	TopicProductCreate   = "products/create"
	TopicProductUpdate   = "products/update"
	TopicProductDelete   = "products/delete"
	TopicInventoryUpdate = "inventory_levels/update"
	TopicOrderCreate     = "orders/create"
	TopicOrderUpdated    = "orders/updated"
)

// EventPublisher pushes outcome events to the analytics stream.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Dispatcher routes a verified webhook to its handler. Every handler applies
// an idempotent store write, so the platform redelivering an event is
// harmless. Verification happens before Dispatch is ever called.
type Dispatcher struct {
	store     *store.ShadowStore
	publisher EventPublisher
	logger    *logger.Logger
}

func NewDispatcher(st *store.ShadowStore, publisher EventPublisher, logger *logger.Logger) *Dispatcher {
	return &Dispatcher{
		store:     st,
		publisher: publisher,
		logger:    logger,
	}
}

// Dispatch applies one verified event. A returned error means the caller must
// answer non-2xx so the platform retries; a nil return with a FAILED log
// entry means the event was accepted but could not be applied yet and the
// next batch pass will reconcile it.
func (d *Dispatcher) Dispatch(ctx context.Context, topic string, body []byte) error {
	switch topic {
	case TopicProductCreate:
		return d.handleProductUpsert(ctx, body, models.SyncOperationCreate)
	case TopicProductUpdate:
		return d.handleProductUpsert(ctx, body, models.SyncOperationUpdate)
	case TopicProductDelete:
		return d.handleProductDelete(ctx, body)
	case TopicInventoryUpdate:
		return d.handleInventoryUpdate(ctx, body)
	case TopicOrderCreate, TopicOrderUpdated:
		return d.handleOrder(ctx, topic, body)
	default:
		return ErrUnhandledTopic
	}
}

func (d *Dispatcher) handleProductUpsert(ctx context.Context, body []byte, op models.SyncOperation) error {
	var payload commerce.Product
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if payload.ID == 0 {
		return fmt.Errorf("%w: missing product id", ErrMalformedPayload)
	}

	externalID := payload.ExternalID()

	product, err := d.store.UpsertProduct(externalID, syncer.ProductFieldsFromPlatform(&payload))
	if err != nil {
		d.logFailure(op, &externalID, body, err)
		return err
	}

	for _, variant := range payload.Variants {
		if _, err := d.store.UpsertVariant(externalID, variant.ExternalID(), syncer.VariantFieldsFromPlatform(&variant)); err != nil {
			d.logFailure(op, &externalID, body, err)
			return err
		}
	}

	d.appendLog(&models.SyncLogEntry{
		Operation:         op,
		Status:            models.SyncStatusSuccess,
		ShadowProductID:   &product.ID,
		ExternalProductID: &externalID,
		SourcePayload:     string(body),
	})

	eventType := events.TypeProductCreated
	if op == models.SyncOperationUpdate {
		eventType = events.TypeProductUpdated
	}
	d.publish(ctx, events.Event{
		Type:              eventType,
		Source:            "webhook",
		ExternalProductID: externalID,
	})

	return nil
}

// handleProductDelete archives the shadow product; variants stay in place so
// the audit trail survives.
func (d *Dispatcher) handleProductDelete(ctx context.Context, body []byte) error {
	var payload struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if payload.ID == 0 {
		return fmt.Errorf("%w: missing product id", ErrMalformedPayload)
	}

	externalID := strconv.FormatInt(payload.ID, 10)

	product, err := d.store.ArchiveProduct(externalID)
	if errors.Is(err, store.ErrProductNotFound) {
		// Nothing to archive; accept the event and leave a trace.
		d.logFailure(models.SyncOperationDelete, &externalID, body, err)
		return nil
	}
	if err != nil {
		d.logFailure(models.SyncOperationDelete, &externalID, body, err)
		return err
	}

	d.appendLog(&models.SyncLogEntry{
		Operation:         models.SyncOperationDelete,
		Status:            models.SyncStatusSuccess,
		ShadowProductID:   &product.ID,
		ExternalProductID: &externalID,
		SourcePayload:     string(body),
	})

	d.publish(ctx, events.Event{
		Type:              events.TypeProductArchived,
		Source:            "webhook",
		ExternalProductID: externalID,
	})

	return nil
}

// handleInventoryUpdate overwrites the quantity of the referenced variant. If
// the variant is not known yet (the product-create event may still be in
// flight) no orphan row is created; a FAILED entry records the miss and the
// next batch pass reconciles it.
func (d *Dispatcher) handleInventoryUpdate(ctx context.Context, body []byte) error {
	var payload struct {
		InventoryItemID int64 `json:"inventory_item_id"`
		Available       int   `json:"available"`
		LocationID      int64 `json:"location_id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if payload.InventoryItemID == 0 {
		return fmt.Errorf("%w: missing inventory_item_id", ErrMalformedPayload)
	}

	itemID := strconv.FormatInt(payload.InventoryItemID, 10)

	variant, err := d.store.SetInventoryByInventoryItem(itemID, payload.Available)
	if errors.Is(err, store.ErrVariantNotFound) {
		d.logFailure(models.SyncOperationUpdate, nil, body, fmt.Errorf("no shadow variant for inventory item %s", itemID))
		return nil
	}
	if err != nil {
		d.logFailure(models.SyncOperationUpdate, nil, body, err)
		return err
	}

	d.appendLog(&models.SyncLogEntry{
		Operation:       models.SyncOperationUpdate,
		Status:          models.SyncStatusSuccess,
		ShadowProductID: &variant.ShadowProductID,
		SourcePayload:   string(body),
	})

	d.publish(ctx, events.Event{
		Type:   events.TypeInventoryUpdated,
		Source: "webhook",
		Data: map[string]interface{}{
			"inventory_item_id": itemID,
			"available":         payload.Available,
		},
	})

	return nil
}

// handleOrder records order metadata for analytics. Orders never touch the
// product or variant tables.
func (d *Dispatcher) handleOrder(ctx context.Context, topic string, body []byte) error {
	var payload struct {
		ID              int64   `json:"id"`
		TotalPrice      string  `json:"total_price"`
		Currency        string  `json:"currency"`
		FinancialStatus *string `json:"financial_status"`
		LineItems       []struct {
			ID int64 `json:"id"`
		} `json:"line_items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if payload.ID == 0 {
		return fmt.Errorf("%w: missing order id", ErrMalformedPayload)
	}

	total, _ := strconv.ParseFloat(payload.TotalPrice, 64)

	event := &models.OrderEvent{
		ExternalOrderID: strconv.FormatInt(payload.ID, 10),
		Topic:           topic,
		TotalPrice:      total,
		Currency:        payload.Currency,
		FinancialStatus: payload.FinancialStatus,
		LineItemCount:   len(payload.LineItems),
	}
	if err := d.store.UpsertOrderEvent(event); err != nil {
		return err
	}

	d.publish(ctx, events.Event{
		Type:   events.TypeOrderRecorded,
		Source: "webhook",
		Data: map[string]interface{}{
			"external_order_id": event.ExternalOrderID,
			"total_price":       event.TotalPrice,
			"currency":          event.Currency,
		},
	})

	return nil
}

func (d *Dispatcher) logFailure(op models.SyncOperation, externalID *string, body []byte, cause error) {
	msg := cause.Error()
	d.logger.Error("Webhook %s failed: %s", op, msg)

	d.appendLog(&models.SyncLogEntry{
		Operation:         op,
		Status:            models.SyncStatusFailed,
		ExternalProductID: externalID,
		ErrorMessage:      &msg,
		SourcePayload:     string(body),
	})
}

func (d *Dispatcher) appendLog(entry *models.SyncLogEntry) {
	if err := d.store.AppendSyncLog(entry); err != nil {
		d.logger.Error("Failed to append sync log entry: %v", err)
	}
}

func (d *Dispatcher) publish(ctx context.Context, event events.Event) {
	if d.publisher == nil {
		return
	}
	if err := d.publisher.Publish(ctx, event); err != nil {
		d.logger.Warn("Failed to publish %s event: %v", event.Type, err)
	}
}
