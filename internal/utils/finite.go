package utils

import "math"

// IsFinite reports whether f is neither NaN nor an infinity
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
