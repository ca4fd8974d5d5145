package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/flavourheaven/costonomy/internal/costonomy"
	applog "github.com/flavourheaven/costonomy/internal/log"
	"github.com/flavourheaven/costonomy/internal/pricing"
	"github.com/flavourheaven/costonomy/internal/scaling"
	"github.com/flavourheaven/costonomy/internal/session"
)

type lineView struct {
	ItemID       int64   `json:"itemId"`
	BaseItemID   int64   `json:"baseItemId,omitempty"`
	Name         string  `json:"name,omitempty"`
	BaseItemName string  `json:"baseItemName,omitempty"`
	Unit         string  `json:"unit"`
	UnitQuantity float64 `json:"unitQuantity"`
	UnitPrice    string  `json:"unitPrice"`
	Quantity     float64 `json:"quantity"`
	Price        string  `json:"price"`
	MasterRow    bool    `json:"masterRow,omitempty"`
}

type sessionView struct {
	ID                string     `json:"id"`
	Kind              string     `json:"kind"`
	SubjectID         int64      `json:"subjectId"`
	Name              string     `json:"name"`
	Unit              string     `json:"unit,omitempty"`
	UnitQuantity      float64    `json:"unitQuantity,omitempty"`
	ReferenceQuantity float64    `json:"referenceQuantity"`
	Multiplier        float64    `json:"multiplier"`
	Lines             []lineView `json:"lines"`
	Total             string     `json:"total"`
	Guarded           []int64    `json:"guarded,omitempty"`
	ReferenceGuarded  bool       `json:"referenceGuarded,omitempty"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type groupView struct {
	BaseItemID   int64      `json:"baseItemId"`
	BaseItemName string     `json:"baseItemName,omitempty"`
	Master       *lineView  `json:"master,omitempty"`
	Items        []lineView `json:"items"`
}

type breakdownView struct {
	ProductID       int64       `json:"productId"`
	Name            string      `json:"name"`
	Groups          []groupView `json:"groups"`
	MasterTotal     string      `json:"masterTotal"`
	IngredientTotal string      `json:"ingredientTotal"`
}

type purchaseView struct {
	Date             string  `json:"date"`
	Department       string  `json:"department"`
	PurchaseQuantity float64 `json:"purchaseQuantity"`
	TotalCost        string  `json:"totalCost"`
	CostPerUnit      string  `json:"costPerUnit"`
	Ingredients      int     `json:"ingredients"`
}

func newLineView(l scaling.IngredientLine) lineView {
	return lineView{
		ItemID:       l.ItemID,
		BaseItemID:   l.BaseItemID,
		Name:         l.Name,
		BaseItemName: l.BaseItemName,
		Unit:         l.Unit,
		UnitQuantity: l.UnitQuantity,
		UnitPrice:    pricing.FormatMoney(l.UnitPrice),
		Quantity:     l.Quantity,
		Price:        pricing.FormatMoney(l.Price),
		MasterRow:    l.IsMasterRow(),
	}
}

func newLineViews(lines []scaling.IngredientLine) []lineView {
	out := make([]lineView, len(lines))
	for i, l := range lines {
		out[i] = newLineView(l)
	}
	return out
}

func newSessionView(s *session.Session) sessionView {
	return sessionView{
		ID:                s.ID,
		Kind:              string(s.Kind),
		SubjectID:         s.SubjectID,
		Name:              s.Name,
		Unit:              s.Unit,
		UnitQuantity:      s.UnitQuantity,
		ReferenceQuantity: s.ReferenceQuantity,
		Multiplier:        s.Multiplier,
		Lines:             newLineViews(s.Current),
		Total:             pricing.FormatMoney(scaling.Total(s.Current, scaling.SumMasterRows)),
		Guarded:           s.Guarded,
		ReferenceGuarded:  s.ReferenceGuarded,
		UpdatedAt:         s.UpdatedAt,
	}
}

func newBreakdownView(b session.Breakdown) breakdownView {
	groups := make([]groupView, len(b.Groups))
	for i, g := range b.Groups {
		gv := groupView{
			BaseItemID:   g.BaseItemID,
			BaseItemName: g.BaseItemName,
			Items:        newLineViews(g.Items),
		}
		if g.Master != nil {
			master := newLineView(*g.Master)
			gv.Master = &master
		}
		groups[i] = gv
	}
	return breakdownView{
		ProductID:       b.ProductID,
		Name:            b.Name,
		Groups:          groups,
		MasterTotal:     pricing.FormatMoney(b.MasterTotal),
		IngredientTotal: pricing.FormatMoney(b.IngredientTotal),
	}
}

func newPurchaseView(r session.PurchaseReceipt) purchaseView {
	return purchaseView{
		Date:             r.Date,
		Department:       r.DepartmentName,
		PurchaseQuantity: r.PurchaseQuantity,
		TotalCost:        pricing.FormatMoney(r.Summary.TotalCost),
		CostPerUnit:      pricing.FormatMoney(r.Summary.CostPerUnit),
		Ingredients:      r.Summary.Ingredients,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		applog.Error(r.Context(), "request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeFailure maps domain errors to a status code.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *costonomy.APIError
	switch {
	case errors.Is(err, scaling.ErrInvalidQuantity),
		errors.Is(err, scaling.ErrInvalidFactor),
		errors.Is(err, session.ErrInvalidRequest),
		errors.Is(err, session.ErrWrongKind):
		writeError(w, r, http.StatusBadRequest, err)
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, scaling.ErrUnknownItem):
		writeError(w, r, http.StatusNotFound, err)
	case errors.As(err, &apiErr),
		errors.Is(err, costonomy.ErrWriteRejected),
		errors.Is(err, costonomy.ErrNoContent):
		writeError(w, r, http.StatusBadGateway, err)
	default:
		writeError(w, r, http.StatusInternalServerError, err)
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// rawInput returns what the user typed: a JSON string as is, a JSON number
// as its literal text.
type rawInput string

func (in *rawInput) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*in = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*in = rawInput(str)
		return nil
	}
	*in = rawInput(s)
	return nil
}
