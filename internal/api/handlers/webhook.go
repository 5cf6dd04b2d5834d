package handlers

import (
	"errors"
	"net/http"

	"shadowsync/internal/logger"
	"shadowsync/internal/webhooks"

	"github.com/gin-gonic/gin"
)

// WebhookHandler terminates the platform's webhook deliveries. The raw body
// is captured before any JSON parsing so the signature check sees the exact
// bytes that were signed.
type WebhookHandler struct {
	verifier   *webhooks.Verifier
	dispatcher *webhooks.Dispatcher
	logger     *logger.Logger
}

func NewWebhookHandler(verifier *webhooks.Verifier, dispatcher *webhooks.Dispatcher, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier:   verifier,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle returns the gin handler for one webhook topic. Responding non-2xx
// invokes the platform's own retry schedule, so transient failures answer 500
// and the platform redelivers.
func (h *WebhookHandler) Handle(topic string) gin.HandlerFunc {
	return func(c *gin.Context) {
		signature := c.GetHeader("X-Shopify-Hmac-Sha256")
		shopDomain := c.GetHeader("X-Shopify-Shop-Domain")

		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read payload"})
			return
		}

		if err := h.verifier.Verify(body, signature, shopDomain); err != nil {
			h.logger.Warn("Rejected webhook %s from %q: %v", topic, shopDomain, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Webhook verification failed"})
			return
		}

		err = h.dispatcher.Dispatch(c.Request.Context(), topic, body)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"message": "Webhook processed successfully"})
		case errors.Is(err, webhooks.ErrUnhandledTopic):
			c.JSON(http.StatusOK, gin.H{"message": "Webhook received but not processed"})
		case errors.Is(err, webhooks.ErrMalformedPayload):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Failed to process webhook %s: %v", topic, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook"})
		}
	}
}
