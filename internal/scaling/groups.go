package scaling

// Group is a base item's contribution to a recipe: its optional master row
// and the flattened sub-ingredients. Lines that do not belong to a base item
// are collected in the group with BaseItemID 0.
type Group struct {
	BaseItemID   int64            `json:"baseItemId"`
	BaseItemName string           `json:"baseItemName,omitempty"`
	Master       *IngredientLine  `json:"master,omitempty"`
	Items        []IngredientLine `json:"items"`
}

// GroupByBaseItem groups lines by base item in order of first appearance.
func GroupByBaseItem(lines []IngredientLine) []Group {
	groups := make([]Group, 0)
	index := make(map[int64]int)

	for _, line := range lines {
		i, ok := index[line.BaseItemID]
		if !ok {
			i = len(groups)
			index[line.BaseItemID] = i
			groups = append(groups, Group{BaseItemID: line.BaseItemID, BaseItemName: line.BaseItemName})
		}

		if line.IsMasterRow() && groups[i].Master == nil {
			master := line
			groups[i].Master = &master
			continue
		}
		groups[i].Items = append(groups[i].Items, line)
	}
	return groups
}

// TotalMode selects which rows of a base item group are summed.
type TotalMode int

const (
	// SumMasterRows counts a base item once through its master row; groups
	// without a master row fall back to their sub-ingredients.
	SumMasterRows TotalMode = iota
	// SumSubIngredients counts sub-ingredients and skips master rows.
	SumSubIngredients
)

// Total sums line prices without counting a base item twice.
func Total(lines []IngredientLine, mode TotalMode) float64 {
	total := 0.0
	for _, g := range GroupByBaseItem(lines) {
		if mode == SumMasterRows && g.Master != nil {
			total += g.Master.Price
			continue
		}
		for _, line := range g.Items {
			total += line.Price
		}
	}
	return total
}
