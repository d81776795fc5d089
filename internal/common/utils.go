package common

import "math"

// RoundHalfUp rounds x to the nearest integer, with halves rounded towards
// positive infinity (so -2.5 becomes -2, not -3 as math.Round would give).
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// Round1 rounds x to one decimal place.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
