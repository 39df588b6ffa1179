package validation

import (
	"strings"

	"foodcart_back_end/internal/models"
)

func ValidateRestaurantInput(in models.RestaurantInput) []string {
	var errs []string
	if strings.TrimSpace(in.RestaurantName) == "" {
		errs = append(errs, "Restaurant name is required")
	}
	if strings.TrimSpace(in.City) == "" {
		errs = append(errs, "City is required")
	}
	if strings.TrimSpace(in.Country) == "" {
		errs = append(errs, "Country is required")
	}
	if in.DeliveryPrice < 0 {
		errs = append(errs, "Delivery price must be a positive number")
	}
	if in.EstimatedDeliveryTime <= 0 {
		errs = append(errs, "Estimated delivery time must be a positive integer")
	}
	if len(NormalizeCuisines(in.Cuisines)) == 0 {
		errs = append(errs, "Cuisines array cannot be empty")
	}
	return errs
}

func ValidateMenuInput(in models.MenuInput) []string {
	var errs []string
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, "Menu name is required")
	}
	if in.Price <= 0 {
		errs = append(errs, "Price must be greater than zero")
	}
	return errs
}

// NormalizeCuisines accepts repeated form values as well as a single
// comma-separated value and drops blanks and duplicates.
func NormalizeCuisines(raw []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		for _, c := range strings.Split(entry, ",") {
			c = strings.TrimSpace(c)
			if c == "" || seen[strings.ToLower(c)] {
				continue
			}
			seen[strings.ToLower(c)] = true
			out = append(out, c)
		}
	}
	return out
}
