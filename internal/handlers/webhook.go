package handlers

import (
	"errors"
	"net/http"

	"foodcart_back_end/internal/models"
	"foodcart_back_end/internal/payment"
	"foodcart_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const maxWebhookBody = int64(65536)

type WebhookHandler struct {
	payments payment.Backend
	orders   services.OrderService
	logger   zerolog.Logger
}

func NewWebhookHandler(payments payment.Backend, orders services.OrderService, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		payments: payments,
		orders:   orders,
		logger:   logger.With().Str("handler", "webhook").Logger(),
	}
}

// Handle is POST /orders/webhook. Every verified event is acknowledged so the
// processor stops retrying, unless the order store is down.
func (h *WebhookHandler) Handle(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)

	payload, err := c.GetRawData()
	if err != nil {
		badRequest(c, "Could not read request body")
		return
	}

	event, err := h.payments.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.logger.Warn().Err(err).Msg("rejected webhook")
		if errors.Is(err, payment.ErrInvalidSignature) {
			badRequest(c, "Invalid signature")
			return
		}
		badRequest(c, "Invalid payload")
		return
	}

	if err := h.orders.HandlePaymentEvent(c.Request.Context(), event); err != nil {
		if errors.Is(err, models.ErrStoreUnavailable) {
			h.logger.Error().Err(err).Str("event_id", event.ID).Msg("store unavailable, asking processor to retry")
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": models.ErrStoreUnavailable.Message})
			return
		}
		h.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to apply webhook event")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
