package costonomy

import (
	"strings"

	"github.com/flavourheaven/costonomy/internal/scaling"
)

// NormalizeUnit canonicalises a unit symbol so the scaling engine can match
// it exactly.
func NormalizeUnit(unit string) string {
	return strings.ToUpper(strings.TrimSpace(unit))
}

// Line converts an API ingredient row to a scaling line. The item's own unit
// quantity wins over the row's snapshot value.
func (in Ingredient) Line() scaling.IngredientLine {
	line := scaling.IngredientLine{
		ItemID:       in.ItemID,
		BaseItemID:   in.BaseItemID,
		UnitQuantity: in.UnitQuantity.Float(),
		UnitPrice:    in.UnitPrice.Float(),
		Quantity:     in.IngredientQuantity.Float(),
		Price:        in.IngredientPrice.Float(),
	}
	if in.Item != nil {
		line.Name = in.Item.Name
		line.Unit = NormalizeUnit(in.Item.Unit)
		if uq := in.Item.UnitQuantity.Float(); uq > 0 {
			line.UnitQuantity = uq
		}
		if line.ItemID == 0 {
			line.ItemID = in.Item.ID
		}
	}
	if in.BaseItem != nil {
		line.BaseItemName = in.BaseItem.Name
		if line.BaseItemID == 0 {
			line.BaseItemID = in.BaseItem.ID
		}
	}
	return line
}

// Lines converts a whole ingredient list.
func Lines(ingredients []Ingredient) []scaling.IngredientLine {
	out := make([]scaling.IngredientLine, len(ingredients))
	for i, in := range ingredients {
		out[i] = in.Line()
	}
	return out
}

// Quantities projects lines to quantity-only upsert rows.
func Quantities(lines []scaling.IngredientLine) []IngredientQuantity {
	out := make([]IngredientQuantity, len(lines))
	for i, l := range lines {
		out[i] = IngredientQuantity{ItemID: l.ItemID, IngredientQuantity: l.Quantity}
	}
	return out
}

// PurchaseItems projects lines to priced purchase rows.
func PurchaseItems(lines []scaling.IngredientLine) []PurchaseItem {
	out := make([]PurchaseItem, len(lines))
	for i, l := range lines {
		out[i] = PurchaseItem{ItemID: l.ItemID, IngredientQuantity: l.Quantity, IngredientPrice: l.Price}
	}
	return out
}
