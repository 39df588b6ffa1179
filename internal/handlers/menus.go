package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"foodcart_back_end/internal/models"
	"foodcart_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type MenuHandler struct {
	menus  services.MenuService
	logger zerolog.Logger
}

func NewMenuHandler(menus services.MenuService, logger zerolog.Logger) *MenuHandler {
	return &MenuHandler{
		menus:  menus,
		logger: logger.With().Str("handler", "menus").Logger(),
	}
}

func bindMenuForm(c *gin.Context) (models.MenuInput, bool) {
	in := models.MenuInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
	}
	if v := strings.TrimSpace(c.PostForm("price")); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			badRequest(c, "Price must be greater than zero")
			return in, false
		}
		in.Price = price
	}
	return in, true
}

// POST /menu
func (h *MenuHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	in, ok := bindMenuForm(c)
	if !ok {
		return
	}

	image, closeImage, err := formImage(c, "image")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer closeImage()

	menu, err := h.menus.Create(c.Request.Context(), actor, in, image)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "menu": menu})
}

// GET /menu/:id
func (h *MenuHandler) Get(c *gin.Context) {
	menu, err := h.menus.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

// PUT /menu/:id
func (h *MenuHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	in, ok := bindMenuForm(c)
	if !ok {
		return
	}

	image, closeImage, err := formImage(c, "image")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer closeImage()

	menu, err := h.menus.Update(c.Request.Context(), actor, c.Param("id"), in, image)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "menu": menu})
}

// DELETE /menu/:id
func (h *MenuHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.menus.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Menu deleted"})
}
