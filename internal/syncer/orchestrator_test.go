package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"shadowsync/internal/database"
	"shadowsync/internal/logger"
	"shadowsync/internal/models"
	"shadowsync/internal/ratelimit"
	"shadowsync/internal/services/commerce"
	"shadowsync/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCommerce assigns each SKU a stable platform id, so re-running a batch
// reproduces the ids a retried pass would see.
type fakeCommerce struct {
	products  []commerce.Product
	listErr   error
	failSKUs  map[string]string
	idsBySKU  map[string]int64
	nextID    int64
	createdIn []commerce.ProductInput
}

func newFakeCommerce() *fakeCommerce {
	return &fakeCommerce{
		failSKUs: make(map[string]string),
		idsBySKU: make(map[string]int64),
		nextID:   1000,
	}
}

func (f *fakeCommerce) ListAllProducts(ctx context.Context) ([]commerce.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.products, nil
}

func (f *fakeCommerce) CreateProduct(ctx context.Context, input *commerce.ProductInput) (*commerce.CreateResult, error) {
	f.createdIn = append(f.createdIn, *input)

	sku := input.Variants[0].Sku
	if msg, ok := f.failSKUs[sku]; ok {
		return &commerce.CreateResult{
			UserErrors: []commerce.UserError{{Field: "handle", Message: msg}},
		}, nil
	}

	id, ok := f.idsBySKU[sku]
	if !ok {
		f.nextID++
		id = f.nextID
		f.idsBySKU[sku] = id
	}

	product := commerce.Product{
		ID:          id,
		Title:       input.Title,
		BodyHTML:    input.BodyHTML,
		Vendor:      input.Vendor,
		ProductType: input.ProductType,
		Handle:      input.Handle,
		Status:      "active",
		Tags:        input.Tags,
		Variants: []commerce.Variant{
			{
				ID:                id * 10,
				ProductID:         id,
				Title:             input.Variants[0].Title,
				Price:             input.Variants[0].Price,
				Sku:               sku,
				InventoryItemID:   id * 100,
				InventoryQuantity: input.Variants[0].InventoryQuantity,
			},
		},
	}
	return &commerce.CreateResult{Product: &product}, nil
}

func newTestStore(t *testing.T) *store.ShadowStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.New("sqlite://" + dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.New(db.DB, logger.New("error"))
}

func newTestOrchestrator(client CommerceAPI, st *store.ShadowStore) *Orchestrator {
	limiter := ratelimit.NewPerMinute(10000, 600000)
	return NewOrchestrator(client, st, limiter, nil, logger.New("error"), 50, 0)
}

func TestRunCreatesNewProduct(t *testing.T) {
	st := newTestStore(t)
	client := newFakeCommerce()
	orch := newTestOrchestrator(client, st)

	summary, err := orch.Run(context.Background(), []models.FeedRecord{
		{SKU: "M-100", Title: "Gas Spring 10mm", Price: 42.00},
	}, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Errored)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, models.SyncStatusSuccess, summary.Results[0].Status)

	products, total, err := st.ListProducts(store.ProductFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "Gas Spring 10mm", products[0].Title)
	assert.Equal(t, "gas-spring-10mm", products[0].Handle)
	require.Len(t, products[0].Variants, 1)
	assert.Equal(t, "M-100", *products[0].Variants[0].SKU)
	assert.Equal(t, 42.00, products[0].Variants[0].Price)

	entries, _, err := st.ListSyncLogs(store.LogFilter{BatchID: summary.BatchID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.SyncOperationCreate, entries[0].Operation)
	assert.Equal(t, models.SyncStatusSuccess, entries[0].Status)
}

func TestRunClassifiesExistingSKUAsUpdate(t *testing.T) {
	st := newTestStore(t)
	client := newFakeCommerce()
	client.products = []commerce.Product{
		{
			ID:     500,
			Title:  "Old Title",
			Handle: "old-title",
			Status: "active",
			Variants: []commerce.Variant{
				{ID: 5001, Sku: "ABC", Price: "10.00", InventoryItemID: 50001},
			},
		},
	}
	orch := newTestOrchestrator(client, st)

	summary, err := orch.Run(context.Background(), []models.FeedRecord{
		{SKU: "ABC", Title: "New Title", Price: 12.50},
	}, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	// Updates stay local: nothing was pushed to the platform.
	assert.Empty(t, client.createdIn)

	products, _, err := st.ListProducts(store.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "New Title", products[0].Title)
	assert.Equal(t, "500", products[0].ExternalProductID)
	assert.Equal(t, "old-title", products[0].Handle)
	require.Len(t, products[0].Variants, 1)
	assert.Equal(t, 12.50, products[0].Variants[0].Price)
}

func TestRunIsIdempotentAcrossRetries(t *testing.T) {
	st := newTestStore(t)
	client := newFakeCommerce()
	orch := newTestOrchestrator(client, st)

	feed := []models.FeedRecord{{SKU: "M-100", Title: "Gas Spring 10mm", Price: 42.00}}

	_, err := orch.Run(context.Background(), feed, 0)
	require.NoError(t, err)
	_, err = orch.Run(context.Background(), feed, 0)
	require.NoError(t, err)

	// The platform handed back the same external id both times, so the
	// upsert collapsed to a single row.
	_, total, err := st.ListProducts(store.ProductFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestRunContainsPerRecordFailures(t *testing.T) {
	st := newTestStore(t)
	client := newFakeCommerce()
	client.failSKUs["BAD-2"] = "Handle has already been taken"
	orch := newTestOrchestrator(client, st)

	feed := []models.FeedRecord{
		{SKU: "OK-1", Title: "First", Price: 1},
		{SKU: "BAD-2", Title: "Second", Price: 2},
		{SKU: "OK-3", Title: "Third", Price: 3},
		{SKU: "OK-4", Title: "Fourth", Price: 4},
	}

	summary, err := orch.Run(context.Background(), feed, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Created)
	assert.Equal(t, 1, summary.Errored)
	require.Len(t, summary.Results, 4)

	failed, _, err := st.ListSyncLogs(store.LogFilter{BatchID: summary.BatchID, Status: string(models.SyncStatusFailed)})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "Handle has already been taken", *failed[0].ErrorMessage)
}

func TestRunRejectsInvalidRecordsWithoutAborting(t *testing.T) {
	st := newTestStore(t)
	client := newFakeCommerce()
	orch := newTestOrchestrator(client, st)

	feed := []models.FeedRecord{
		{SKU: "", Title: "Missing SKU", Price: 1},
		{SKU: "OK-1", Title: "Valid", Price: 2},
	}

	summary, err := orch.Run(context.Background(), feed, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Errored)
}

func TestRunAbortsWhenSnapshotFails(t *testing.T) {
	st := newTestStore(t)
	client := newFakeCommerce()
	client.listErr = errors.New("upstream unavailable")
	orch := newTestOrchestrator(client, st)

	_, err := orch.Run(context.Background(), []models.FeedRecord{
		{SKU: "M-100", Title: "Gas Spring 10mm", Price: 42.00},
	}, 0)
	require.Error(t, err)

	// One top-level FAILED entry, no partial snapshot used.
	entries, _, err := st.ListSyncLogs(store.LogFilter{Status: string(models.SyncStatusFailed)})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, *entries[0].ErrorMessage, "upstream unavailable")

	_, total, err := st.ListProducts(store.ProductFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}
