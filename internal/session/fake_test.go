package session

import (
	"context"
	"sync"

	"github.com/flavourheaven/costonomy/internal/costonomy"
)

type upsertCall struct {
	ProductID int64
	Rows      []costonomy.IngredientQuantity
}

type fakeCatalog struct {
	mu sync.Mutex

	baseItems   map[int64]costonomy.BaseItem
	products    map[int64]costonomy.Product
	ingredients map[int64][]costonomy.Ingredient
	flattened   map[int64][]costonomy.Ingredient
	departments []costonomy.Department
	items       []costonomy.Item
	loadErr     error
	writeErr    error

	purchases []costonomy.Purchase
	upserts   []upsertCall
	deletes   [][2]int64
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		baseItems:   map[int64]costonomy.BaseItem{},
		products:    map[int64]costonomy.Product{},
		ingredients: map[int64][]costonomy.Ingredient{},
		flattened:   map[int64][]costonomy.Ingredient{},
	}
}

func (f *fakeCatalog) BaseItem(_ context.Context, id int64) (costonomy.BaseItem, error) {
	if f.loadErr != nil {
		return costonomy.BaseItem{}, f.loadErr
	}
	return f.baseItems[id], nil
}

func (f *fakeCatalog) BaseItemIngredients(_ context.Context, id int64) ([]costonomy.Ingredient, error) {
	return f.ingredients[id], nil
}

func (f *fakeCatalog) Product(_ context.Context, id int64) (costonomy.Product, error) {
	if f.loadErr != nil {
		return costonomy.Product{}, f.loadErr
	}
	return f.products[id], nil
}

func (f *fakeCatalog) DirectIngredients(_ context.Context, id int64) ([]costonomy.Ingredient, error) {
	return f.ingredients[id], nil
}

func (f *fakeCatalog) ProductIngredients(_ context.Context, id int64, _ string) ([]costonomy.Ingredient, error) {
	return f.flattened[id], nil
}

func (f *fakeCatalog) Products(context.Context) ([]costonomy.Product, error) {
	out := make([]costonomy.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalog) Departments(context.Context) ([]costonomy.Department, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.departments, nil
}

func (f *fakeCatalog) Items(context.Context) ([]costonomy.Item, error) {
	return f.items, nil
}

func (f *fakeCatalog) UpsertPurchase(_ context.Context, p costonomy.Purchase) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.purchases = append(f.purchases, p)
	return len(p.Items), nil
}

func (f *fakeCatalog) UpsertIngredients(_ context.Context, productID int64, rows []costonomy.IngredientQuantity) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.upserts = append(f.upserts, upsertCall{ProductID: productID, Rows: rows})
	return len(rows), nil
}

func (f *fakeCatalog) DeleteIngredient(_ context.Context, productID, itemID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.deletes = append(f.deletes, [2]int64{productID, itemID})
	return 1, nil
}

func item(id int64, name, unit string, unitQuantity float64) *costonomy.Item {
	return &costonomy.Item{ID: id, Name: name, Unit: unit, UnitQuantity: costonomy.Number(unitQuantity)}
}

// gravyCatalog has base item 12 (1 KG of gravy), department 4 and product 5
// whose direct ingredients are onions and eggs.
func gravyCatalog() *fakeCatalog {
	f := newFakeCatalog()
	f.baseItems[12] = costonomy.BaseItem{ID: 12, Name: "Gravy", Unit: "kg", UnitQuantity: 1}
	f.ingredients[12] = []costonomy.Ingredient{
		{ItemID: 1, Item: item(1, "Onion", "GM", 1000), IngredientQuantity: 500, IngredientPrice: 20, UnitPrice: 40},
		{ItemID: 2, Item: item(2, "Oil", "ML", 1000), IngredientQuantity: 333, IngredientPrice: 50, UnitPrice: 150},
	}

	f.departments = []costonomy.Department{{ID: 4, Name: "Central Kitchen"}}
	f.items = []costonomy.Item{*item(1, "Onion", "GM", 1000), *item(3, "Egg", "PCS", 0)}

	f.products[5] = costonomy.Product{ID: 5, Name: "Paneer Masala"}
	f.ingredients[5] = []costonomy.Ingredient{
		{ItemID: 1, Item: item(1, "Onion", "GM", 1000), IngredientQuantity: 200, IngredientPrice: 8, UnitPrice: 40},
		{ItemID: 3, Item: item(3, "Egg", "PCS", 0), IngredientQuantity: 2, IngredientPrice: 12, UnitPrice: 6},
	}
	return f
}
