package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shadowsync/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthReportsConfigPresenceWithoutValues(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{WebhookSecret: "super-secret-value", ShopDomain: ""}
	router := gin.New()
	router.GET("/health", NewHealthHandler(cfg).Status)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["secret_configured"])
	assert.Equal(t, false, resp["shop_configured"])
	assert.NotContains(t, rec.Body.String(), "super-secret-value")
}
