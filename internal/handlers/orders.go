package handlers

import (
	"net/http"
	"strings"

	"foodcart_back_end/internal/models"
	"foodcart_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type OrderHandler struct {
	orders services.OrderService
	logger zerolog.Logger
}

func NewOrderHandler(orders services.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger.With().Str("handler", "orders").Logger(),
	}
}

// POST /orders/create-payment-intent
func (h *OrderHandler) CreatePaymentIntent(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, models.ErrMissingFields)
		return
	}

	res, err := h.orders.CreatePaymentIntent(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"clientSecret": res.ClientSecret,
		"orderId":      res.OrderID,
	})
}

// POST /orders/checkout/create-checkout-session
func (h *OrderHandler) CreateCheckoutSession(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.CheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, models.ErrMissingFields)
		return
	}

	res, err := h.orders.CreateCheckoutSession(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": res.URL, "orderId": res.OrderID})
}

// POST /orders/confirm-order
func (h *OrderHandler) ConfirmOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var body struct {
		OrderID string `json:"orderId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.OrderID) == "" {
		respondError(c, h.logger, models.ErrMissingFields)
		return
	}

	order, err := h.orders.ConfirmOrder(c.Request.Context(), actor, body.OrderID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// PUT /orders/:orderId/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	order, err := h.orders.CancelOrder(c.Request.Context(), actor, c.Param("orderId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order cancelled", "order": order})
}

// PUT /orders/:orderId/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Status == "" {
		respondError(c, h.logger, models.ErrInvalidStatus)
		return
	}

	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), actor, c.Param("orderId"), body.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// GET /orders
func (h *OrderHandler) ListMine(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListMine(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /restaurant/order
func (h *OrderHandler) ListForRestaurant(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListForRestaurant(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /orders/:orderId
func (h *OrderHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), actor, c.Param("orderId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GET /orders/:orderId/history
func (h *OrderHandler) History(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	events, err := h.orders.History(c.Request.Context(), actor, c.Param("orderId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if events == nil {
		events = []models.OrderEvent{}
	}
	c.JSON(http.StatusOK, events)
}
