package scaling

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidQuantity is returned for a missing, non-numeric or out of range quantity.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInvalidFactor is returned for a missing, non-numeric or non-positive multiplier.
	ErrInvalidFactor = errors.New("invalid factor")
	// ErrUnknownItem is returned when an edit names an item that is not in the list.
	ErrUnknownItem = errors.New("unknown item")
)

// ParseTargetQuantity parses a target quantity, which must be finite and greater than 0.
func ParseTargetQuantity(raw string) (float64, error) {
	value, err := parseFinite(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidQuantity, raw)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%w: %q must be greater than 0", ErrInvalidQuantity, raw)
	}
	return value, nil
}

// ParseEditedQuantity parses a manually typed quantity, which may be 0.
func ParseEditedQuantity(raw string) (float64, error) {
	value, err := parseFinite(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidQuantity, raw)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: %q must not be negative", ErrInvalidQuantity, raw)
	}
	return value, nil
}

func parseFinite(raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errors.New("not finite")
	}
	return value, nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
