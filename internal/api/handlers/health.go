package handlers

import (
	"net/http"

	"shadowsync/internal/config"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	config *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{config: cfg}
}

// Status reports whether the webhook secret and shop identifier are
// configured. Values themselves are never echoed.
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"secret_configured": h.config.WebhookSecret != "",
		"shop_configured":   h.config.ShopDomain != "",
	})
}
