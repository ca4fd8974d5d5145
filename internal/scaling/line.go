// Package scaling rescales recipe and base-item ingredient lists.
//
// Every operation takes the caller's list by value and returns a new list;
// only Quantity and Price are ever written. Persistence of the result is the
// caller's concern.
package scaling

import (
	"github.com/flavourheaven/costonomy/internal/pricing"
)

// IngredientLine is one row of a recipe or base item bill of materials.
type IngredientLine struct {
	ItemID       int64   `json:"itemId"`
	BaseItemID   int64   `json:"baseItemId,omitempty"`
	Name         string  `json:"name,omitempty"`
	BaseItemName string  `json:"baseItemName,omitempty"`
	Unit         string  `json:"unit"`
	UnitQuantity float64 `json:"unitQuantity"`
	UnitPrice    float64 `json:"unitPrice"`
	Quantity     float64 `json:"quantity"`
	Price        float64 `json:"price"`
}

// IsMasterRow reports whether the line is a base item's own summary row
// inside a parent recipe.
func (l IngredientLine) IsMasterRow() bool {
	return l.BaseItemID != 0 && l.BaseItemID == l.ItemID
}

// IsSubIngredient reports whether the line belongs to a base item's
// flattened recipe without being its master row.
func (l IngredientLine) IsSubIngredient() bool {
	return l.BaseItemID != 0 && l.BaseItemID != l.ItemID
}

// Result is the outcome of a scaling operation.
type Result struct {
	Lines []IngredientLine
	// Guarded lists item IDs whose unit quantity was unusable and was treated as 1.
	Guarded []int64
	// ReferenceGuarded is set when the reference quantity was unusable and was treated as 1.
	ReferenceGuarded bool
}

// Reprice sets the line quantity and derives its price from the line's own
// unit economics. The second return value reports a division guard.
func Reprice(line IngredientLine, quantity float64) (IngredientLine, bool) {
	priced := pricing.LinePrice(pricing.LineInput{
		Quantity:     quantity,
		UnitQuantity: line.UnitQuantity,
		UnitPrice:    line.UnitPrice,
	})
	line.Quantity = quantity
	line.Price = priced.Price
	return line, priced.Guarded
}

// Clone returns a copy of lines that shares no backing array with the input.
func Clone(lines []IngredientLine) []IngredientLine {
	if lines == nil {
		return nil
	}
	out := make([]IngredientLine, len(lines))
	copy(out, lines)
	return out
}

// Prices returns the price of every line in order.
func Prices(lines []IngredientLine) []float64 {
	prices := make([]float64, len(lines))
	for i, line := range lines {
		prices[i] = line.Price
	}
	return prices
}
