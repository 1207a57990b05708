package domain

import "math"

// ClampPct bounds v to the 0..100 percentage range.
func ClampPct(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// RoundHalfUp rounds to the nearest integer with halves going up
// (82.5 -> 83, -0.5 -> 0).
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// PctOf returns round(100*part/whole), clamped; a zero whole yields 0.
func PctOf(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return ClampPct(RoundHalfUp(100 * float64(part) / float64(whole)))
}
