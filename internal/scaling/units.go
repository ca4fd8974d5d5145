package scaling

import "math"

// Unit symbols whose scaled quantities are snapped to whole numbers.
const (
	UnitGram       = "GM"
	UnitMillilitre = "ML"
)

// RoundsToWhole reports whether quantities in unit are kept as integers.
func RoundsToWhole(unit string) bool {
	switch unit {
	case UnitGram, UnitMillilitre:
		return true
	default:
		return false
	}
}

// RoundQuantity applies the unit rounding policy: grams and millilitres are
// rounded half-up to the nearest integer, every other unit is returned as is.
func RoundQuantity(unit string, v float64) float64 {
	if !RoundsToWhole(unit) {
		return v
	}
	whole := math.Round(v)
	// math.Round goes away from zero on negative halves.
	if v-whole == 0.5 {
		whole++
	}
	return whole
}
