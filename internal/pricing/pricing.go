package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// LineInput represents the unit economics of one ingredient line.
type LineInput struct {
	Quantity     float64
	UnitQuantity float64
	UnitPrice    float64
}

// LineResult holds the derived cost of a line and whether the unit quantity
// had to be replaced by 1 to keep the division finite.
type LineResult struct {
	Price   float64
	Guarded bool
}

// LinePrice computes (quantity / unitQuantity) * unitPrice.
// A zero, negative or non-finite unitQuantity is treated as 1.
func LinePrice(in LineInput) LineResult {
	unitQuantity, guarded := SafeDivisor(in.UnitQuantity)
	return LineResult{
		Price:   (in.Quantity / unitQuantity) * in.UnitPrice,
		Guarded: guarded,
	}
}

// ProportionalPrice scales a previous price by the ratio actually realised
// between the new and old quantity. A zero old quantity yields a zero price.
func ProportionalPrice(previousPrice, oldQuantity, newQuantity float64) float64 {
	if oldQuantity == 0 || !finite(oldQuantity) {
		return 0
	}
	return previousPrice * (newQuantity / oldQuantity)
}

// SafeDivisor returns v when it can be used as a divisor, otherwise 1 and true.
func SafeDivisor(v float64) (float64, bool) {
	if v <= 0 || !finite(v) {
		return 1, true
	}
	return v, false
}

// PurchaseInput describes a base item preparation about to be purchased.
type PurchaseInput struct {
	IngredientPrices []float64
	PurchaseQuantity float64
	BaseUnitQuantity float64
}

// PurchaseSummary contains the roll-up shown before a preparation is confirmed.
type PurchaseSummary struct {
	TotalCost   float64
	CostPerUnit float64
	Ingredients int
}

// SummarizePurchase totals the ingredient prices and derives the cost of one
// base unit quantity of the prepared item.
func SummarizePurchase(in PurchaseInput) PurchaseSummary {
	total := 0.0
	for _, price := range in.IngredientPrices {
		total += price
	}

	costPerUnit := 0.0
	if in.PurchaseQuantity > 0 && finite(in.PurchaseQuantity) {
		costPerUnit = total * (in.BaseUnitQuantity / in.PurchaseQuantity)
	}

	return PurchaseSummary{
		TotalCost:   total,
		CostPerUnit: costPerUnit,
		Ingredients: len(in.IngredientPrices),
	}
}

// Money rounds a monetary amount to two decimal places for presentation.
// Non-finite values are presented as zero.
func Money(v float64) decimal.Decimal {
	if !finite(v) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(2)
}

// FormatMoney renders v with exactly two decimal places.
func FormatMoney(v float64) string {
	return Money(v).StringFixed(2)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
