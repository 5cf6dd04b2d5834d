package handlers

import (
	"net/http"
	"strconv"

	"shadowsync/internal/logger"
	"shadowsync/internal/models"
	"shadowsync/internal/store"
	"shadowsync/internal/syncer"

	"github.com/gin-gonic/gin"
)

// SyncHandler exposes the batch sync entry point and the sync log to
// operators.
type SyncHandler struct {
	orchestrator *syncer.Orchestrator
	store        *store.ShadowStore
	logger       *logger.Logger
}

func NewSyncHandler(orchestrator *syncer.Orchestrator, st *store.ShadowStore, logger *logger.Logger) *SyncHandler {
	return &SyncHandler{
		orchestrator: orchestrator,
		store:        st,
		logger:       logger,
	}
}

// Run executes a batch pass over the posted feed records and returns the full
// per-record outcome list for operator review. The pass runs synchronously;
// per-record failures are contained, only a snapshot-fetch failure aborts.
func (h *SyncHandler) Run(c *gin.Context) {
	var request struct {
		Records   []models.FeedRecord `json:"records" binding:"required"`
		ChunkSize int                 `json:"chunk_size"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.orchestrator.Run(c.Request.Context(), request.Records, request.ChunkSize)
	if err != nil {
		h.logger.Error("Sync pass aborted: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Sync pass aborted: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Logs lists sync log entries, filterable by batch_id and status, so failed
// SKUs can be found and re-submitted.
func (h *SyncHandler) Logs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, total, err := h.store.ListSyncLogs(store.LogFilter{
		BatchID: c.Query("batch_id"),
		Status:  c.Query("status"),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		h.logger.Error("Failed to list sync logs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sync logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": entries,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}
