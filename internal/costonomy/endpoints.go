package costonomy

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// BaseItem fetches one base item.
func (c *Client) BaseItem(ctx context.Context, id int64) (BaseItem, error) {
	var out BaseItem
	if err := c.getOne(ctx, fmt.Sprintf("baseitems/%d", id), &out); err != nil {
		return BaseItem{}, err
	}
	return out, nil
}

// BaseItemIngredients lists the recipe of a base item.
func (c *Client) BaseItemIngredients(ctx context.Context, id int64) ([]Ingredient, error) {
	return getList[Ingredient](ctx, c, fmt.Sprintf("baseitems/%d/ingredients", id), nil)
}

// Departments lists the outlet's departments.
func (c *Client) Departments(ctx context.Context) ([]Department, error) {
	return getList[Department](ctx, c, "departments/list", nil)
}

// Product fetches one product.
func (c *Client) Product(ctx context.Context, id int64) (Product, error) {
	var out Product
	if err := c.getOne(ctx, fmt.Sprintf("products/%d", id), &out); err != nil {
		return Product{}, err
	}
	return out, nil
}

// Products lists the outlet's products.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	return getList[Product](ctx, c, "products/list", nil)
}

// DirectIngredients lists a product's own ingredient rows.
func (c *Client) DirectIngredients(ctx context.Context, productID int64) ([]Ingredient, error) {
	return getList[Ingredient](ctx, c, fmt.Sprintf("products/%d/directingredients", productID), nil)
}

// ProductIngredients lists a product's flattened ingredients, base item
// sub-ingredients included. storeItems optionally filters by store item IDs.
func (c *Client) ProductIngredients(ctx context.Context, productID int64, storeItems string) ([]Ingredient, error) {
	var params url.Values
	if s := strings.TrimSpace(storeItems); s != "" {
		params = url.Values{"storeitems": {s}}
	}
	return getList[Ingredient](ctx, c, fmt.Sprintf("products/%d/ingredients", productID), params)
}

// Items lists the outlet's store items.
func (c *Client) Items(ctx context.Context) ([]Item, error) {
	return getList[Item](ctx, c, "items/list", nil)
}

// UpsertPurchase records a base item purchase.
func (c *Client) UpsertPurchase(ctx context.Context, p Purchase) (int, error) {
	return c.write(ctx, "baseitems/purchase/upsert", p)
}

// UpsertIngredients sets ingredient quantities of a product, adding rows
// that do not exist yet.
func (c *Client) UpsertIngredients(ctx context.Context, productID int64, rows []IngredientQuantity) (int, error) {
	return c.write(ctx, "products/ingredients/upsert", struct {
		ProductID int64                `json:"productId"`
		List      []IngredientQuantity `json:"list"`
	}{productID, rows})
}

// DeleteIngredient removes one ingredient from a product.
func (c *Client) DeleteIngredient(ctx context.Context, productID, itemID int64) (int, error) {
	return c.write(ctx, fmt.Sprintf("products/%d/ingredients/delete", productID), struct {
		ItemID int64 `json:"itemId"`
	}{itemID})
}

func (c *Client) getOne(ctx context.Context, endpoint string, out any) error {
	ok, err := c.get(ctx, endpoint, nil, out)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoContent, endpoint)
	}
	return nil
}

func getList[T any](ctx context.Context, c *Client, endpoint string, params url.Values) ([]T, error) {
	var out listResponse[T]
	if _, err := c.get(ctx, endpoint, params, &out); err != nil {
		return nil, err
	}
	if out.List == nil {
		return []T{}, nil
	}
	return out.List, nil
}

func (c *Client) write(ctx context.Context, endpoint string, payload any) (int, error) {
	var out writeResponse
	if _, err := c.post(ctx, endpoint, payload, &out); err != nil {
		return 0, err
	}
	if out.Count < 1 {
		return out.Count, fmt.Errorf("%w: %s", ErrWriteRejected, endpoint)
	}
	return out.Count, nil
}
