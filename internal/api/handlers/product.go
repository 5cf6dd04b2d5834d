package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"shadowsync/internal/logger"
	"shadowsync/internal/store"

	"github.com/gin-gonic/gin"
)

// ProductHandler exposes read-only access to the shadow tables. Writes go
// exclusively through the sync engine and the webhook dispatcher.
type ProductHandler struct {
	store  *store.ShadowStore
	logger *logger.Logger
}

func NewProductHandler(st *store.ShadowStore, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{
		store:  st,
		logger: logger,
	}
}

func (h *ProductHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	products, total, err := h.store.ListProducts(store.ProductFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.logger.Error("Failed to list products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": products,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id := c.Param("id")

	product, err := h.store.GetProduct(id)
	if errors.Is(err, store.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to fetch product %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}
