package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ridham-007/test-vismobackend/internal/billing"
)

// WebhookHandler receives provider event deliveries. The raw body is needed
// for the signature check; only an unverifiable signature is rejected,
// every verified delivery is acknowledged so the provider does not build a
// redelivery backlog.
// POST /stripe/webhook
func WebhookHandler(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}

		signature := c.GetHeader("Stripe-Signature")
		if err := svc.HandleEvent(c.Request.Context(), payload, signature); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
