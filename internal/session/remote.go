package session

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/flavourheaven/costonomy/internal/costonomy"
	applog "github.com/flavourheaven/costonomy/internal/log"
	"github.com/flavourheaven/costonomy/internal/pricing"
	"github.com/flavourheaven/costonomy/internal/scaling"
)

const dateLayout = "2006-01-02"

// Date filters accepted by PurchaseRequest.
const (
	DateToday     = "today"
	DateYesterday = "yesterday"
)

// PurchaseRequest describes where and when a base item batch was prepared.
// Date wins over DateFilter.
type PurchaseRequest struct {
	DepartmentID int64  `json:"departmentId"`
	Date         string `json:"date,omitempty"`
	DateFilter   string `json:"dateFilter,omitempty"`
}

// PurchaseReceipt is the result of a submitted purchase.
type PurchaseReceipt struct {
	Date             string                  `json:"date"`
	DepartmentName   string                  `json:"departmentName"`
	PurchaseQuantity float64                 `json:"purchaseQuantity"`
	Summary          pricing.PurchaseSummary `json:"summary"`
	Count            int                     `json:"count"`
}

// ResolveDate turns a request into a YYYY-MM-DD date in loc.
func ResolveDate(req PurchaseRequest, now time.Time, loc *time.Location) (string, error) {
	if d := strings.TrimSpace(req.Date); d != "" {
		if _, err := time.ParseInLocation(dateLayout, d, loc); err != nil {
			return "", fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidRequest, d)
		}
		return d, nil
	}
	local := now.In(loc)
	switch strings.ToLower(strings.TrimSpace(req.DateFilter)) {
	case DateToday:
		return local.Format(dateLayout), nil
	case DateYesterday:
		return local.AddDate(0, 0, -1).Format(dateLayout), nil
	case "":
		return "", fmt.Errorf("%w: a purchase date is required", ErrInvalidRequest)
	default:
		return "", fmt.Errorf("%w: unknown date filter %q", ErrInvalidRequest, req.DateFilter)
	}
}

// SubmitPurchase records the current base item list as consumed to prepare
// ReferenceQuantity units. On success the submitted list becomes the new
// snapshot.
func (s *Service) SubmitPurchase(ctx context.Context, id string, req PurchaseRequest) (receipt PurchaseReceipt, err error) {
	defer func() { s.metrics.Operation("submit_purchase", err) }()

	if req.DepartmentID == 0 {
		return PurchaseReceipt{}, fmt.Errorf("%w: a department is required", ErrInvalidRequest)
	}
	date, err := ResolveDate(req, s.now(), s.loc)
	if err != nil {
		return PurchaseReceipt{}, err
	}
	department, err := s.department(ctx, req.DepartmentID)
	if err != nil {
		return PurchaseReceipt{}, err
	}

	unlock := s.lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return PurchaseReceipt{}, err
	}
	if sess.Kind != KindBaseItem {
		return PurchaseReceipt{}, fmt.Errorf("%w: purchase needs a base item session", ErrWrongKind)
	}
	quantity := sess.ReferenceQuantity
	if quantity <= 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return PurchaseReceipt{}, fmt.Errorf("%w: quantity to prepare must be greater than 0", scaling.ErrInvalidQuantity)
	}

	summary := pricing.SummarizePurchase(pricing.PurchaseInput{
		IngredientPrices: scaling.Prices(sess.Current),
		PurchaseQuantity: quantity,
		BaseUnitQuantity: sess.UnitQuantity,
	})

	count, err := s.catalog.UpsertPurchase(ctx, costonomy.Purchase{
		Date:             date,
		DepartmentID:     req.DepartmentID,
		BaseItemID:       sess.SubjectID,
		PurchaseQuantity: quantity,
		UnitQuantity:     sess.UnitQuantity,
		Unit:             sess.Unit,
		Items:            costonomy.PurchaseItems(sess.Current),
	})
	if err != nil {
		return PurchaseReceipt{}, fmt.Errorf("submit purchase: %w", err)
	}

	receipt = PurchaseReceipt{
		Date:             date,
		DepartmentName:   department.Name,
		PurchaseQuantity: quantity,
		Summary:          summary,
		Count:            count,
	}
	applog.Info(ctx, "base item purchase submitted",
		"session_id", sess.ID,
		"base_item_id", sess.SubjectID,
		"department", department.Name,
		"quantity", quantity,
		"total_cost", pricing.FormatMoney(summary.TotalCost),
	)

	// The purchase is recorded remotely at this point; a snapshot update
	// failure is only logged.
	sess.Original = scaling.Clone(sess.Current)
	sess.BaseReference = quantity
	sess.Multiplier = 1
	sess.UpdatedAt = s.now()
	if err := s.store.Update(ctx, sess); err != nil {
		applog.Error(ctx, "purchase submitted but session snapshot not saved",
			"session_id", sess.ID,
			"error", err,
		)
	}
	return receipt, nil
}

func (s *Service) department(ctx context.Context, id int64) (costonomy.Department, error) {
	departments, err := s.catalog.Departments(ctx)
	if err != nil {
		return costonomy.Department{}, fmt.Errorf("load departments: %w", err)
	}
	for _, d := range departments {
		if d.ID == id {
			return d, nil
		}
	}
	return costonomy.Department{}, fmt.Errorf("%w: unknown department %d", ErrInvalidRequest, id)
}

// Departments lists the departments a purchase can be recorded for.
func (s *Service) Departments(ctx context.Context) ([]costonomy.Department, error) {
	return s.catalog.Departments(ctx)
}

// Items lists the store items that can be added to a recipe.
func (s *Service) Items(ctx context.Context) ([]costonomy.Item, error) {
	return s.catalog.Items(ctx)
}

// Products lists the products a recipe can be cloned to.
func (s *Service) Products(ctx context.Context) ([]costonomy.Product, error) {
	return s.catalog.Products(ctx)
}

// SubmitClone writes the current quantities of a recipe session to another
// product.
func (s *Service) SubmitClone(ctx context.Context, id string, targetProductID int64) (count int, err error) {
	defer func() { s.metrics.Operation("submit_clone", err) }()

	if targetProductID == 0 {
		return 0, fmt.Errorf("%w: a target product is required", ErrInvalidRequest)
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if sess.Kind != KindRecipe {
		return 0, fmt.Errorf("%w: clone needs a recipe session", ErrWrongKind)
	}
	if targetProductID == sess.SubjectID {
		return 0, fmt.Errorf("%w: cannot clone a recipe onto itself", ErrInvalidRequest)
	}
	if len(sess.Current) == 0 {
		return 0, fmt.Errorf("%w: recipe has no ingredients to clone", ErrInvalidRequest)
	}

	count, err = s.catalog.UpsertIngredients(ctx, targetProductID, costonomy.Quantities(sess.Current))
	if err != nil {
		return 0, fmt.Errorf("clone recipe: %w", err)
	}
	applog.Info(ctx, "recipe cloned",
		"session_id", sess.ID,
		"source_product_id", sess.SubjectID,
		"target_product_id", targetProductID,
		"factor", sess.Multiplier,
	)
	return count, nil
}

// SaveLine persists one line's current quantity to the session's product
// and folds it into the snapshot.
func (s *Service) SaveLine(ctx context.Context, id string, itemID int64) (sess *Session, err error) {
	defer func() { s.metrics.Operation("save_line", err) }()

	unlock := s.lock(id)
	defer unlock()

	sess, err = s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Kind != KindRecipe {
		return nil, fmt.Errorf("%w: only recipe lines can be saved", ErrWrongKind)
	}
	line, ok := sess.Line(itemID)
	if !ok {
		return nil, fmt.Errorf("%w: item %d", scaling.ErrUnknownItem, itemID)
	}

	rows := []costonomy.IngredientQuantity{{ItemID: itemID, IngredientQuantity: line.Quantity}}
	if _, err := s.catalog.UpsertIngredients(ctx, sess.SubjectID, rows); err != nil {
		return nil, fmt.Errorf("save ingredient quantity: %w", err)
	}

	for i := range sess.Original {
		if sess.Original[i].ItemID == itemID {
			sess.Original[i] = line
		}
	}
	sess.UpdatedAt = s.now()
	if err := s.store.Update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// NewIngredient is a row to add to a product's recipe.
type NewIngredient struct {
	ItemID   int64   `json:"itemId"`
	Quantity float64 `json:"quantity"`
}

// AddIngredients adds rows to a product. Rows without an item or with a
// non-positive quantity are skipped; at least one row must remain.
func (s *Service) AddIngredients(ctx context.Context, productID int64, rows []NewIngredient) (count int, err error) {
	defer func() { s.metrics.Operation("add_ingredients", err) }()

	valid := make([]costonomy.IngredientQuantity, 0, len(rows))
	for _, r := range rows {
		if r.ItemID == 0 || !(r.Quantity > 0) || math.IsInf(r.Quantity, 0) {
			continue
		}
		valid = append(valid, costonomy.IngredientQuantity{ItemID: r.ItemID, IngredientQuantity: r.Quantity})
	}
	if len(valid) == 0 {
		return 0, fmt.Errorf("%w: add at least one ingredient with a quantity greater than 0", ErrInvalidRequest)
	}

	count, err = s.catalog.UpsertIngredients(ctx, productID, valid)
	if err != nil {
		return 0, fmt.Errorf("add ingredients: %w", err)
	}
	return count, nil
}

// RemoveIngredient deletes one ingredient from a product.
func (s *Service) RemoveIngredient(ctx context.Context, productID, itemID int64) (err error) {
	defer func() { s.metrics.Operation("remove_ingredient", err) }()

	if itemID == 0 {
		return fmt.Errorf("%w: an item is required", ErrInvalidRequest)
	}
	if _, err := s.catalog.DeleteIngredient(ctx, productID, itemID); err != nil {
		return fmt.Errorf("remove ingredient: %w", err)
	}
	return nil
}

// Breakdown is a product's flattened recipe grouped by base item.
type Breakdown struct {
	ProductID       int64           `json:"productId"`
	Name            string          `json:"name"`
	Groups          []scaling.Group `json:"groups"`
	MasterTotal     float64         `json:"masterTotal"`
	IngredientTotal float64         `json:"ingredientTotal"`
}

// RecipeBreakdown loads a product's flattened recipe without opening a session.
func (s *Service) RecipeBreakdown(ctx context.Context, productID int64, storeItems string) (Breakdown, error) {
	product, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return Breakdown{}, fmt.Errorf("load product %d: %w", productID, err)
	}
	ingredients, err := s.catalog.ProductIngredients(ctx, productID, storeItems)
	if err != nil {
		return Breakdown{}, fmt.Errorf("load product %d ingredients: %w", productID, err)
	}

	lines := costonomy.Lines(ingredients)
	return Breakdown{
		ProductID:       productID,
		Name:            product.Name,
		Groups:          scaling.GroupByBaseItem(lines),
		MasterTotal:     scaling.Total(lines, scaling.SumMasterRows),
		IngredientTotal: scaling.Total(lines, scaling.SumSubIngredients),
	}, nil
}
