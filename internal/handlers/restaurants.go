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

type RestaurantHandler struct {
	restaurants services.RestaurantService
	logger      zerolog.Logger
}

func NewRestaurantHandler(restaurants services.RestaurantService, logger zerolog.Logger) *RestaurantHandler {
	return &RestaurantHandler{
		restaurants: restaurants,
		logger:      logger.With().Str("handler", "restaurants").Logger(),
	}
}

// bindRestaurantForm reads the multipart restaurant form. Cuisines may come
// as repeated fields or as one comma separated value.
func bindRestaurantForm(c *gin.Context) (models.RestaurantInput, bool) {
	in := models.RestaurantInput{
		RestaurantName: c.PostForm("restaurantName"),
		City:           c.PostForm("city"),
		Country:        c.PostForm("country"),
		Cuisines:       append(c.PostFormArray("cuisines"), c.PostFormArray("cuisines[]")...),
	}

	if v := strings.TrimSpace(c.PostForm("deliveryPrice")); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			badRequest(c, "Delivery price must be a positive number")
			return in, false
		}
		in.DeliveryPrice = price
	}
	if v := strings.TrimSpace(c.PostForm("estimatedDeliveryTime")); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, "Estimated delivery time must be a positive integer")
			return in, false
		}
		in.EstimatedDeliveryTime = minutes
	}
	return in, true
}

// POST /restaurant
func (h *RestaurantHandler) Create(c *gin.Context) {
	h.save(c, true)
}

// PUT /restaurant
func (h *RestaurantHandler) Update(c *gin.Context) {
	h.save(c, false)
}

func (h *RestaurantHandler) save(c *gin.Context, create bool) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	in, ok := bindRestaurantForm(c)
	if !ok {
		return
	}

	image, closeImage, err := formImage(c, "imageFile")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer closeImage()

	var restaurant *models.Restaurant
	if create {
		restaurant, err = h.restaurants.Create(c.Request.Context(), actor, in, image)
	} else {
		restaurant, err = h.restaurants.Update(c.Request.Context(), actor, in, image)
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	status := http.StatusOK
	if create {
		status = http.StatusCreated
	}
	c.JSON(status, restaurant)
}

// GET /restaurant
func (h *RestaurantHandler) Mine(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	restaurant, err := h.restaurants.Mine(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

// GET /restaurant/:id
func (h *RestaurantHandler) Get(c *gin.Context) {
	restaurant, err := h.restaurants.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

// GET /restaurant/all
func (h *RestaurantHandler) List(c *gin.Context) {
	restaurants, err := h.restaurants.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, restaurants)
}

// GET /restaurant/search/:text
func (h *RestaurantHandler) Search(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	var cuisines []string
	if raw := c.Query("selectedCuisines"); raw != "" {
		for _, cuisine := range strings.Split(raw, ",") {
			if cuisine = strings.TrimSpace(cuisine); cuisine != "" {
				cuisines = append(cuisines, cuisine)
			}
		}
	}

	res, err := h.restaurants.Search(c.Request.Context(), models.RestaurantSearch{
		City:       strings.TrimSpace(c.Param("text")),
		Query:      strings.TrimSpace(c.Query("searchQuery")),
		Cuisines:   cuisines,
		SortOption: c.DefaultQuery("sortOption", "lastUpdated"),
		Page:       page,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /restaurant/repair-duplicates
func (h *RestaurantHandler) RepairDuplicates(c *gin.Context) {
	removed, err := h.restaurants.RepairDuplicates(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "removed": removed})
}
