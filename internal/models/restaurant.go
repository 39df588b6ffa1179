package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Restaurant struct {
	ID                    primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	User                  primitive.ObjectID   `bson:"user" json:"user"`
	RestaurantName        string               `bson:"restaurantName" json:"restaurantName"`
	City                  string               `bson:"city" json:"city"`
	Country               string               `bson:"country" json:"country"`
	DeliveryPrice         float64              `bson:"deliveryPrice" json:"deliveryPrice"`
	EstimatedDeliveryTime int                  `bson:"estimatedDeliveryTime" json:"estimatedDeliveryTime"`
	Cuisines              []string             `bson:"cuisines" json:"cuisines"`
	Menus                 []primitive.ObjectID `bson:"menus" json:"menus"`
	ImageURL              string               `bson:"imageUrl" json:"imageUrl"`
	CreatedAt             time.Time            `bson:"createdAt" json:"createdAt"`
	LastUpdated           time.Time            `bson:"lastUpdated" json:"lastUpdated"`
}

// HasMenu reports whether id is one of the restaurant's menus.
func (r *Restaurant) HasMenu(id primitive.ObjectID) bool {
	for _, m := range r.Menus {
		if m == id {
			return true
		}
	}
	return false
}

// RestaurantDetail is a restaurant with its menus populated.
type RestaurantDetail struct {
	Restaurant
	Menus []Menu `json:"menus"`
}

type RestaurantInput struct {
	RestaurantName        string   `form:"restaurantName" json:"restaurantName"`
	City                  string   `form:"city" json:"city"`
	Country               string   `form:"country" json:"country"`
	DeliveryPrice         float64  `form:"deliveryPrice" json:"deliveryPrice"`
	EstimatedDeliveryTime int      `form:"estimatedDeliveryTime" json:"estimatedDeliveryTime"`
	Cuisines              []string `form:"cuisines" json:"cuisines"`
}

// RestaurantSearch is the storefront search. City matches city or country,
// Query matches the name or a cuisine, every entry of Cuisines must match.
type RestaurantSearch struct {
	City       string
	Query      string
	Cuisines   []string
	SortOption string
	Page       int
	PageSize   int
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int64 `json:"pages"`
}

type RestaurantSearchResult struct {
	Data       []Restaurant `json:"data"`
	Pagination Pagination   `json:"pagination"`
}
