package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shadowsync/internal/database"
	"shadowsync/internal/logger"
	"shadowsync/internal/store"
	"shadowsync/internal/webhooks"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "shared-webhook-secret"
	testShop   = "example.myshopify.com"
)

func newWebhookRouter(t *testing.T) (*gin.Engine, *store.ShadowStore, *webhooks.Verifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.New("sqlite://" + dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.New("error")
	st := store.New(db.DB, log)
	verifier := webhooks.NewVerifier(testSecret, testShop)
	dispatcher := webhooks.NewDispatcher(st, nil, log)
	handler := NewWebhookHandler(verifier, dispatcher, log)

	router := gin.New()
	router.POST("/webhooks/products/create", handler.Handle(webhooks.TopicProductCreate))
	router.POST("/webhooks/inventory_levels/update", handler.Handle(webhooks.TopicInventoryUpdate))
	return router, st, verifier
}

func postWebhook(router *gin.Engine, path string, body []byte, signature, shop string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Hmac-Sha256", signature)
	req.Header.Set("X-Shopify-Shop-Domain", shop)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWebhookEndpointAcceptsSignedPayload(t *testing.T) {
	router, st, verifier := newWebhookRouter(t)

	body := []byte(`{"id":123,"title":"Gas Spring 10mm","status":"active","variants":[{"id":1230,"price":"42.00","sku":"M-100"}]}`)
	rec := postWebhook(router, "/webhooks/products/create", body, verifier.Sign(body), testShop)

	assert.Equal(t, http.StatusOK, rec.Code)

	_, total, err := st.ListProducts(store.ProductFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestWebhookEndpointRejectsTamperedBody(t *testing.T) {
	router, st, verifier := newWebhookRouter(t)

	signed := []byte(`{"id":123,"title":"Original"}`)
	tampered := []byte(`{"id":123,"title":"Tampered"}`)
	rec := postWebhook(router, "/webhooks/products/create", tampered, verifier.Sign(signed), testShop)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Nothing may reach the store on a rejected event.
	_, total, err := st.ListProducts(store.ProductFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	_, logTotal, err := st.ListSyncLogs(store.LogFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, logTotal)
}

func TestWebhookEndpointRejectsForeignShop(t *testing.T) {
	router, _, verifier := newWebhookRouter(t)

	body := []byte(`{"id":123,"title":"Gas Spring 10mm"}`)
	rec := postWebhook(router, "/webhooks/products/create", body, verifier.Sign(body), "intruder.myshopify.com")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookEndpointRejectsMalformedBody(t *testing.T) {
	router, _, verifier := newWebhookRouter(t)

	body := []byte(`{not json`)
	rec := postWebhook(router, "/webhooks/products/create", body, verifier.Sign(body), testShop)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookEndpointAcceptsUnknownInventoryItem(t *testing.T) {
	router, st, verifier := newWebhookRouter(t)

	body := []byte(`{"inventory_item_id":999,"available":5}`)
	rec := postWebhook(router, "/webhooks/inventory_levels/update", body, verifier.Sign(body), testShop)

	// Accepted so the platform does not retry; the miss lands in the log.
	assert.Equal(t, http.StatusOK, rec.Code)

	_, total, err := st.ListSyncLogs(store.LogFilter{Status: "FAILED"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
