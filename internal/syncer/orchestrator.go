package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"shadowsync/internal/events"
	"shadowsync/internal/logger"
	"shadowsync/internal/models"
	"shadowsync/internal/ratelimit"
	"shadowsync/internal/services/commerce"
	"shadowsync/internal/store"

	"github.com/google/uuid"
)

// CommerceAPI is the slice of the platform client the orchestrator needs.
type CommerceAPI interface {
	ListAllProducts(ctx context.Context) ([]commerce.Product, error)
	CreateProduct(ctx context.Context, input *commerce.ProductInput) (*commerce.CreateResult, error)
}

// EventPublisher pushes outcome events to the analytics stream. Publishing is
// best-effort; a broker failure never fails the pass.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// RecordOutcome is the per-record result returned to the operator.
type RecordOutcome struct {
	SKU               string               `json:"sku"`
	Action            models.SyncOperation `json:"action"`
	Status            models.SyncStatus    `json:"status"`
	ExternalProductID *string              `json:"external_product_id,omitempty"`
	Error             *string              `json:"error,omitempty"`
}

// Summary aggregates one batch pass.
type Summary struct {
	BatchID string          `json:"batch_id"`
	Created int             `json:"created"`
	Updated int             `json:"updated"`
	Errored int             `json:"errored"`
	Results []RecordOutcome `json:"results"`
}

// Orchestrator drives a full batch pass: one platform snapshot, then the feed
// in fixed-size chunks, record by record. A failing record is logged and
// skipped; only a failed snapshot fetch aborts the pass.
type Orchestrator struct {
	client     CommerceAPI
	store      *store.ShadowStore
	diff       *DiffEngine
	limiter    *ratelimit.Bucket
	publisher  EventPublisher
	logger     *logger.Logger
	chunkSize  int
	chunkPause time.Duration
}

func NewOrchestrator(client CommerceAPI, st *store.ShadowStore, limiter *ratelimit.Bucket, publisher EventPublisher, logger *logger.Logger, chunkSize int, chunkPause time.Duration) *Orchestrator {
	if chunkSize < 1 {
		chunkSize = 50
	}
	return &Orchestrator{
		client:     client,
		store:      st,
		diff:       NewDiffEngine(),
		limiter:    limiter,
		publisher:  publisher,
		logger:     logger,
		chunkSize:  chunkSize,
		chunkPause: chunkPause,
	}
}

// Run executes one batch pass over the feed. chunkSize overrides the default
// when positive.
func (o *Orchestrator) Run(ctx context.Context, feed []models.FeedRecord, chunkSize int) (*Summary, error) {
	if chunkSize < 1 {
		chunkSize = o.chunkSize
	}

	batchID := uuid.New().String()
	summary := &Summary{BatchID: batchID}

	o.logger.Info("Starting sync pass %s with %d feed records", batchID, len(feed))

	products, err := o.client.ListAllProducts(ctx)
	if err != nil {
		// No partial snapshot: the whole pass aborts on a single entry.
		msg := err.Error()
		o.appendLog(&models.SyncLogEntry{
			Operation:    models.SyncOperationUpdate,
			Status:       models.SyncStatusFailed,
			ErrorMessage: &msg,
			BatchID:      &batchID,
		})
		return nil, fmt.Errorf("failed to fetch product snapshot: %w", err)
	}

	index := o.diff.BuildSKUIndex(products)

	chunks := chunkFeed(feed, chunkSize)
	for i, chunk := range chunks {
		for _, record := range chunk {
			outcome := o.processRecord(ctx, batchID, record, index)
			summary.Results = append(summary.Results, outcome)

			switch {
			case outcome.Status == models.SyncStatusFailed:
				summary.Errored++
			case outcome.Action == models.SyncOperationCreate:
				summary.Created++
			default:
				summary.Updated++
			}
		}

		// Cushion between chunks on top of the token bucket, to smooth
		// bursts against the platform.
		if i < len(chunks)-1 && o.chunkPause > 0 {
			time.Sleep(o.chunkPause)
		}
	}

	o.logger.Info("Sync pass %s finished: created=%d updated=%d errored=%d",
		batchID, summary.Created, summary.Updated, summary.Errored)

	o.publish(ctx, events.Event{
		Type:    events.TypeSyncCompleted,
		Source:  "batch",
		BatchID: batchID,
		Data: map[string]interface{}{
			"created": summary.Created,
			"updated": summary.Updated,
			"errored": summary.Errored,
		},
	})

	return summary, nil
}

func (o *Orchestrator) processRecord(ctx context.Context, batchID string, record models.FeedRecord, index map[string]*commerce.Product) RecordOutcome {
	payload, _ := json.Marshal(record)

	if err := o.limiter.Consume(ctx, 1); err != nil {
		return o.failRecord(batchID, record, models.SyncOperationCreate, string(payload), err.Error())
	}

	if err := record.Validate(); err != nil {
		return o.failRecord(batchID, record, models.SyncOperationCreate, string(payload), err.Error())
	}

	classification := o.diff.Classify(record, index)
	if classification.Action == ActionUpdate {
		return o.applyUpdate(ctx, batchID, classification, string(payload))
	}
	return o.applyCreate(ctx, batchID, record, string(payload))
}

// applyCreate pushes a new product to the platform, then mirrors the returned
// product into the shadow store.
func (o *Orchestrator) applyCreate(ctx context.Context, batchID string, record models.FeedRecord, payload string) RecordOutcome {
	input := buildProductInput(record)

	result, err := o.client.CreateProduct(ctx, input)
	if err != nil {
		return o.failRecord(batchID, record, models.SyncOperationCreate, payload, err.Error())
	}
	if result.Failed() {
		// Platform validation errors (handle collisions included) must land
		// in the log, not vanish.
		return o.failRecord(batchID, record, models.SyncOperationCreate, payload, result.FirstError())
	}

	created := result.Product
	externalID := created.ExternalID()

	product, err := o.store.UpsertProduct(externalID, ProductFieldsFromPlatform(created))
	if err != nil {
		return o.failRecordWithID(batchID, record, models.SyncOperationCreate, payload, err.Error(), &externalID)
	}

	for _, variant := range created.Variants {
		if _, err := o.store.UpsertVariant(externalID, variant.ExternalID(), VariantFieldsFromPlatform(&variant)); err != nil {
			return o.failRecordWithID(batchID, record, models.SyncOperationCreate, payload, err.Error(), &externalID)
		}
	}

	o.appendLog(&models.SyncLogEntry{
		Operation:         models.SyncOperationCreate,
		Status:            models.SyncStatusSuccess,
		ShadowProductID:   &product.ID,
		ExternalProductID: &externalID,
		SourcePayload:     payload,
		BatchID:           &batchID,
	})

	o.publish(ctx, events.Event{
		Type:              events.TypeProductCreated,
		Source:            "batch",
		ExternalProductID: externalID,
		BatchID:           batchID,
	})

	return RecordOutcome{
		SKU:               record.SKU,
		Action:            models.SyncOperationCreate,
		Status:            models.SyncStatusSuccess,
		ExternalProductID: &externalID,
	}
}

// applyUpdate mirrors the feed's fields into the shadow store. Nothing is
// pushed back to the platform on UPDATE; the platform keeps ownership of its
// own copy and this asymmetry is a documented design decision.
func (o *Orchestrator) applyUpdate(ctx context.Context, batchID string, classification Classification, payload string) RecordOutcome {
	record := classification.Record
	existing := classification.Existing
	externalID := existing.ExternalID()

	fields := productFieldsFromFeed(record)
	fields.Handle = existing.Handle
	fields.Status = mapPlatformStatus(existing.Status)

	product, err := o.store.UpsertProduct(externalID, fields)
	if err != nil {
		return o.failRecordWithID(batchID, record, models.SyncOperationUpdate, payload, err.Error(), &externalID)
	}

	// The feed's price and stock land on the SKU-matched variant only.
	for _, variant := range existing.Variants {
		if variant.Sku != record.SKU {
			continue
		}
		if _, err := o.store.UpsertVariant(externalID, variant.ExternalID(), variantFieldsFromFeed(record, &variant)); err != nil {
			return o.failRecordWithID(batchID, record, models.SyncOperationUpdate, payload, err.Error(), &externalID)
		}
		break
	}

	o.appendLog(&models.SyncLogEntry{
		Operation:         models.SyncOperationUpdate,
		Status:            models.SyncStatusSuccess,
		ShadowProductID:   &product.ID,
		ExternalProductID: &externalID,
		SourcePayload:     payload,
		BatchID:           &batchID,
	})

	o.publish(ctx, events.Event{
		Type:              events.TypeProductUpdated,
		Source:            "batch",
		ExternalProductID: externalID,
		BatchID:           batchID,
	})

	return RecordOutcome{
		SKU:               record.SKU,
		Action:            models.SyncOperationUpdate,
		Status:            models.SyncStatusSuccess,
		ExternalProductID: &externalID,
	}
}

func (o *Orchestrator) failRecord(batchID string, record models.FeedRecord, op models.SyncOperation, payload, errMsg string) RecordOutcome {
	return o.failRecordWithID(batchID, record, op, payload, errMsg, nil)
}

func (o *Orchestrator) failRecordWithID(batchID string, record models.FeedRecord, op models.SyncOperation, payload, errMsg string, externalID *string) RecordOutcome {
	o.logger.Error("Sync %s failed for sku %s: %s", op, record.SKU, errMsg)

	o.appendLog(&models.SyncLogEntry{
		Operation:         op,
		Status:            models.SyncStatusFailed,
		ExternalProductID: externalID,
		ErrorMessage:      &errMsg,
		SourcePayload:     payload,
		BatchID:           &batchID,
	})

	return RecordOutcome{
		SKU:               record.SKU,
		Action:            op,
		Status:            models.SyncStatusFailed,
		ExternalProductID: externalID,
		Error:             &errMsg,
	}
}

// appendLog is best-effort inside a pass; a log write failure is reported but
// must not take the remaining records down with it.
func (o *Orchestrator) appendLog(entry *models.SyncLogEntry) {
	if err := o.store.AppendSyncLog(entry); err != nil {
		o.logger.Error("Failed to append sync log entry: %v", err)
	}
}

func (o *Orchestrator) publish(ctx context.Context, event events.Event) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(ctx, event); err != nil {
		o.logger.Warn("Failed to publish %s event: %v", event.Type, err)
	}
}

func chunkFeed(feed []models.FeedRecord, size int) [][]models.FeedRecord {
	var chunks [][]models.FeedRecord
	for start := 0; start < len(feed); start += size {
		end := start + size
		if end > len(feed) {
			end = len(feed)
		}
		chunks = append(chunks, feed[start:end])
	}
	return chunks
}

func buildProductInput(record models.FeedRecord) *commerce.ProductInput {
	variant := commerce.VariantInput{
		Price: strconv.FormatFloat(record.Price, 'f', 2, 64),
		Sku:   record.SKU,
	}
	if record.VariantTitle != nil {
		variant.Title = *record.VariantTitle
	}
	if record.CompareAtPrice != nil {
		compareAt := strconv.FormatFloat(*record.CompareAtPrice, 'f', 2, 64)
		variant.CompareAtPrice = &compareAt
	}
	if record.InventoryQuantity != nil {
		variant.InventoryQuantity = *record.InventoryQuantity
	}
	if record.Weight != nil {
		variant.Weight = record.Weight
	}
	if record.WeightUnit != nil {
		variant.WeightUnit = *record.WeightUnit
	}

	input := &commerce.ProductInput{
		Title:    record.Title,
		Handle:   GenerateHandle(record.Title),
		Tags:     joinTags(record.Tags),
		Status:   "active",
		Variants: []commerce.VariantInput{variant},
	}
	if record.Description != nil {
		input.BodyHTML = *record.Description
	}
	if record.Vendor != nil {
		input.Vendor = *record.Vendor
	}
	if record.ProductType != nil {
		input.ProductType = *record.ProductType
	}
	if record.ImageURL != nil {
		input.Images = []commerce.ImageInput{{Src: *record.ImageURL}}
	}
	return input
}
