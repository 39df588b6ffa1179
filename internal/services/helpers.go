package services

import (
	"strconv"
	"strings"
	"time"

	"foodcart_back_end/internal/cache"
)

func intentKey(userID, restaurantID string, amountMinor int64, itemCount int, now time.Time) string {
	return cache.IntentKey(userID, restaurantID, amountMinor, itemCount, now)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// publicImage drops inline data URLs, which the processor cannot display.
func publicImage(url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return ""
}
