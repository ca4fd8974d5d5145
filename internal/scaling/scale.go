package scaling

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flavourheaven/costonomy/internal/pricing"
)

// BatchRescale scales every line from referenceQuantity to newTargetQuantity.
//
// Quantities are rounded per unit (see RoundQuantity) and each price is
// scaled by the ratio actually realised after rounding, starting from the
// line's previous price. Lines with a zero quantity stay at zero.
func BatchRescale(lines []IngredientLine, newTargetQuantity, referenceQuantity float64) (Result, error) {
	if !positiveFinite(newTargetQuantity) {
		return Result{}, fmt.Errorf("%w: target %v must be greater than 0", ErrInvalidQuantity, newTargetQuantity)
	}

	reference, guarded := pricing.SafeDivisor(referenceQuantity)
	ratio := newTargetQuantity / reference

	out := make([]IngredientLine, len(lines))
	for i, line := range lines {
		if line.Quantity == 0 {
			line.Price = 0
			out[i] = line
			continue
		}

		final := RoundQuantity(line.Unit, line.Quantity*ratio)
		line.Price = pricing.ProportionalPrice(line.Price, line.Quantity, final)
		line.Quantity = final
		out[i] = line
	}

	return Result{Lines: out, ReferenceGuarded: guarded}, nil
}

// MultiplierRescale multiplies every quantity by factor and recomputes each
// price from the line's unit economics. No unit rounding is applied.
func MultiplierRescale(lines []IngredientLine, factor float64) (Result, error) {
	if !positiveFinite(factor) {
		return Result{}, fmt.Errorf("%w: %v must be a positive number", ErrInvalidFactor, factor)
	}

	result := Result{Lines: make([]IngredientLine, len(lines))}
	for i, line := range lines {
		repriced, guarded := Reprice(line, line.Quantity*factor)
		if guarded {
			result.Guarded = append(result.Guarded, line.ItemID)
		}
		result.Lines[i] = repriced
	}
	return result, nil
}

// EditLine sets the quantity of the line for itemID from user input and
// reprices that line only.
func EditLine(lines []IngredientLine, itemID int64, raw string) (Result, error) {
	quantity, err := ParseEditedQuantity(raw)
	if err != nil {
		return Result{}, err
	}

	idx := indexOf(lines, itemID)
	if idx < 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownItem, itemID)
	}

	result := Result{Lines: Clone(lines)}
	repriced, guarded := Reprice(lines[idx], quantity)
	if guarded {
		result.Guarded = []int64{itemID}
	}
	result.Lines[idx] = repriced
	return result, nil
}

func indexOf(lines []IngredientLine, itemID int64) int {
	for i, line := range lines {
		if line.ItemID == itemID {
			return i
		}
	}
	return -1
}

// Multiplier is a named batch multiple offered when cloning a recipe.
type Multiplier struct {
	Name   string
	Factor float64
}

var (
	Quarter = Multiplier{Name: "quarter", Factor: 0.25}
	Half    = Multiplier{Name: "half", Factor: 0.5}
	Double  = Multiplier{Name: "double", Factor: 2}
)

var multiplierAliases = map[string]Multiplier{
	"quarter": Quarter,
	"1/4x":    Quarter,
	"half":    Half,
	"1/2x":    Half,
	"double":  Double,
	"2x":      Double,
}

// LookupMultiplier resolves a multiplier name ("half", "1/4x", "2x") or a
// plain positive number, optionally suffixed with "x".
func LookupMultiplier(raw string) (Multiplier, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if m, ok := multiplierAliases[key]; ok {
		return m, nil
	}

	factor, err := strconv.ParseFloat(strings.TrimSuffix(key, "x"), 64)
	if err != nil || !positiveFinite(factor) {
		return Multiplier{}, fmt.Errorf("%w: %q", ErrInvalidFactor, raw)
	}
	return Multiplier{Name: strconv.FormatFloat(factor, 'f', -1, 64) + "x", Factor: factor}, nil
}
