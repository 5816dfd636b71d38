package engine

import "math"

// RoundToHalf rounds a currency amount to the nearest 0.5 unit.
func RoundToHalf(v float64) float64 {
	return math.Round(v*2) / 2
}
