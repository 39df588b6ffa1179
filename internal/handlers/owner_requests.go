package handlers

import (
	"net/http"

	"foodcart_back_end/internal/models"
	"foodcart_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type OwnerRequestHandler struct {
	requests services.OwnerRequestService
	logger   zerolog.Logger
}

func NewOwnerRequestHandler(requests services.OwnerRequestService, logger zerolog.Logger) *OwnerRequestHandler {
	return &OwnerRequestHandler{
		requests: requests,
		logger:   logger.With().Str("handler", "owner_requests").Logger(),
	}
}

// POST /owner-request/request
func (h *OwnerRequestHandler) Request(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var in models.OwnerRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, models.ErrMissingFields)
		return
	}

	req, err := h.requests.Request(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Verification code sent to " + req.Email,
		"request": req,
	})
}

// POST /owner-request/verify-otp
func (h *OwnerRequestHandler) VerifyOTP(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var body struct {
		OTP string `json:"otp"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, models.ErrMissingFields)
		return
	}

	req, err := h.requests.VerifyOTP(c.Request.Context(), actor, body.OTP)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Email verified, your request is awaiting admin approval",
		"request": req,
	})
}

// POST /owner-request/resend-otp
func (h *OwnerRequestHandler) ResendOTP(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.requests.ResendOTP(c.Request.Context(), actor); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "A new verification code has been sent"})
}

// GET /owner-request/me
func (h *OwnerRequestHandler) Mine(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	status, req, err := h.requests.Mine(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "request": req})
}

// GET /owner-request/
func (h *OwnerRequestHandler) List(c *gin.Context) {
	list, err := h.requests.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// PUT /owner-request/:id/status
func (h *OwnerRequestHandler) UpdateStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, models.ErrInvalidDecision)
		return
	}

	req, err := h.requests.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "request": req})
}
