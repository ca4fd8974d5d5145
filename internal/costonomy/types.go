package costonomy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Number is a float that also decodes from a JSON string, since the service
// sends some decimal columns quoted.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("number %q: %w", s, err)
		}
		*n = Number(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Number(v)
	return nil
}

// Float returns n as a float64.
func (n Number) Float() float64 { return float64(n) }

// Item is a purchasable store item.
type Item struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	UnitQuantity Number `json:"unitQuantity"`
	UnitPrice    Number `json:"unitPrice"`
}

// BaseItem is an in-house preparation with its own recipe.
type BaseItem struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	UnitQuantity Number `json:"unitQuantity"`
}

// Product is a menu product.
type Product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Department receives base item purchases.
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NamedRef is an embedded {id, name} reference.
type NamedRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Ingredient is one row of a base item or product ingredient list.
type Ingredient struct {
	ItemID             int64     `json:"itemId"`
	BaseItemID         int64     `json:"baseItemId"`
	Item               *Item     `json:"item"`
	BaseItem           *NamedRef `json:"baseItem"`
	IngredientQuantity Number    `json:"ingredientQuantity"`
	IngredientPrice    Number    `json:"ingredientPrice"`
	UnitQuantity       Number    `json:"unitQuantity"`
	UnitPrice          Number    `json:"unitPrice"`
}

// IngredientQuantity is a quantity-only ingredient upsert row.
type IngredientQuantity struct {
	ItemID             int64   `json:"itemId"`
	IngredientQuantity float64 `json:"ingredientQuantity"`
}

// PurchaseItem is one priced row of a base item purchase.
type PurchaseItem struct {
	ItemID             int64   `json:"itemId"`
	IngredientQuantity float64 `json:"ingredientQuantity"`
	IngredientPrice    float64 `json:"ingredientPrice"`
}

// Purchase records the ingredients consumed to prepare a base item batch.
type Purchase struct {
	Date             string         `json:"dt"`
	DepartmentID     int64          `json:"departmentId"`
	BaseItemID       int64          `json:"baseItemId"`
	PurchaseQuantity float64        `json:"purchaseQuantity"`
	UnitQuantity     float64        `json:"unitQuantity"`
	Unit             string         `json:"unit"`
	Items            []PurchaseItem `json:"items"`
}

type listResponse[T any] struct {
	List []T `json:"list"`
}

type writeResponse struct {
	Count int `json:"count"`
}
