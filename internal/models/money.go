package models

import "math"

// ToMinorUnits converts a major-unit amount (e.g. 12.50) into the integer
// minor units (1250) the payment processor works with.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}
