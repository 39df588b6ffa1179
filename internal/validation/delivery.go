// Package validation holds the input checks shared by the checkout paths.
package validation

import (
	"strings"

	"foodcart_back_end/internal/models"
)

const (
	minNameLength    = 2
	minCityLength    = 2
	minAddressLength = 10
	minCountryLength = 2
)

// Profile defaults that the client sends back untouched when the user never
// filled in their address. They match anywhere in the value.
var (
	cityPlaceholders    = []string{"update your city", "enter your city", "unknown"}
	addressPlaceholders = []string{"update your address", "enter your address", "unknown"}
	countryPlaceholders = []string{"update your country", "enter your country", "unknown"}
)

// Bare field names only match the whole value; "Old City Road" is a real address.
var bareWords = map[string]bool{"city": true, "address": true, "country": true}

// ValidateDeliveryDetails returns one message per rule the details break. An
// empty result means the details can be used for checkout.
func ValidateDeliveryDetails(d models.DeliveryDetails) []string {
	var errs []string

	name := strings.TrimSpace(d.Name)
	if len(name) < minNameLength {
		errs = append(errs, "Name must be at least 2 characters")
	}

	if !strings.Contains(d.Email, "@") {
		errs = append(errs, "A valid email is required")
	}

	city := strings.TrimSpace(d.City)
	if len(city) < minCityLength || isPlaceholder(city, cityPlaceholders) {
		errs = append(errs, "Please provide a valid city")
	}

	address := strings.TrimSpace(d.Address)
	if len(address) < minAddressLength || isPlaceholder(address, addressPlaceholders) {
		errs = append(errs, "Please provide a valid delivery address")
	}

	// country is optional, older clients never send it
	if country := strings.TrimSpace(d.Country); country != "" {
		if len(country) < minCountryLength || isPlaceholder(country, countryPlaceholders) {
			errs = append(errs, "Please provide a valid country")
		}
	}

	return errs
}

func isPlaceholder(value string, placeholders []string) bool {
	v := strings.ToLower(value)
	if bareWords[v] {
		return true
	}
	for _, p := range placeholders {
		if strings.Contains(v, p) {
			return true
		}
	}
	return false
}
