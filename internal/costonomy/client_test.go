package costonomy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flavourheaven/costonomy/internal/metrics"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/costonomy-services", Operator{OutletID: 7, UserID: 11}, opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RequiresAbsoluteURL(t *testing.T) {
	_, err := New("", Operator{})
	assert.Error(t, err)

	_, err = New("costonomy-services", Operator{})
	assert.Error(t, err)
}

func TestGet_MergesDefaultParamsUnderRequestParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/costonomy-services/products/5/ingredients", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("outlet"))
		assert.Equal(t, "11", r.URL.Query().Get("userId"))
		assert.Equal(t, "3,4", r.URL.Query().Get("storeitems"))
		writeJSON(w, map[string]any{"list": []map[string]any{{"itemId": 3}}})
	})

	rows, err := c.ProductIngredients(context.Background(), 5, "3,4")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(3), rows[0].ItemID)
}

func TestGet_OperatorFromContextOverridesDefaults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("outlet"))
		assert.Equal(t, "11", r.URL.Query().Get("userId"))
		writeJSON(w, map[string]any{"list": []any{}})
	})

	ctx := WithOperator(context.Background(), Operator{OutletID: 42})
	deps, err := c.Departments(ctx)
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestPost_BodyValuesWinOverDefaults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/costonomy-services/products/ingredients/upsert", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 7.0, body["outlet"])
		assert.Equal(t, 11.0, body["userId"])
		assert.Equal(t, 9.0, body["productId"])
		assert.Len(t, body["list"], 2)
		writeJSON(w, map[string]int{"count": 2})
	})

	n, err := c.UpsertIngredients(context.Background(), 9, []IngredientQuantity{
		{ItemID: 1, IngredientQuantity: 500},
		{ItemID: 2, IngredientQuantity: 0.25},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestWrite_ZeroCountIsRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]int{"count": 0})
	})

	_, err := c.DeleteIngredient(context.Background(), 9, 1)
	assert.ErrorIs(t, err, ErrWriteRejected)
}

func TestNonSuccessStatusReturnsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such base item", http.StatusNotFound)
	})

	_, err := c.BaseItem(context.Background(), 99)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "API error: 404 - no such base item", apiErr.Error())
}

func TestNoContentResponses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/costonomy-services/baseitems/1":
			w.WriteHeader(http.StatusNoContent)
		default:
			// Body without a content type is treated as empty. A nil
			// header value stops net/http from sniffing one.
			w.Header()["Content-Type"] = nil
			_, _ = io.WriteString(w, `{"list":[{"id":1}]}`)
		}
	})

	_, err := c.BaseItem(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoContent)

	products, err := c.Products(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestUpsertPurchasePayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/costonomy-services/baseitems/purchase/upsert", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2026-10-15", body["dt"])
		assert.Equal(t, 4.0, body["departmentId"])
		assert.Equal(t, 2.0, body["purchaseQuantity"])
		assert.Equal(t, "KG", body["unit"])
		items := body["items"].([]any)
		require.Len(t, items, 1)
		assert.Equal(t, 25.0, items[0].(map[string]any)["ingredientPrice"])
		writeJSON(w, map[string]int{"count": 1})
	})

	_, err := c.UpsertPurchase(context.Background(), Purchase{
		Date:             "2026-10-15",
		DepartmentID:     4,
		BaseItemID:       12,
		PurchaseQuantity: 2,
		UnitQuantity:     1,
		Unit:             "KG",
		Items:            []PurchaseItem{{ItemID: 3, IngredientQuantity: 500, IngredientPrice: 25}},
	})
	require.NoError(t, err)
}

func TestRequestsAreCounted(t *testing.T) {
	rec := metrics.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, BaseItem{ID: 1, Name: "Gravy", Unit: "KG", UnitQuantity: 1})
	}, WithMetrics(rec))

	_, err := c.BaseItem(context.Background(), 1)
	require.NoError(t, err)

	scrape := httptest.NewRecorder()
	rec.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, scrape.Body.String(), `costonomy_requests_total{endpoint="GET baseitems/:id",outcome="ok"} 1`)
}

func TestMetricName(t *testing.T) {
	assert.Equal(t, "GET products/:id/ingredients", metricName(http.MethodGet, "products/15/ingredients"))
	assert.Equal(t, "POST baseitems/purchase/upsert", metricName(http.MethodPost, "/baseitems/purchase/upsert"))
}

func TestCatalogLists(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/costonomy-services/items/list":
			writeJSON(w, map[string]any{"list": []map[string]any{
				{"id": 1, "name": "Onion", "unit": "gm", "unitQuantity": "1000", "unitPrice": 40},
			}})
		case "/costonomy-services/departments/list":
			writeJSON(w, map[string]any{"list": []map[string]any{{"id": 4, "name": "Central Kitchen"}}})
		case "/costonomy-services/products/list":
			writeJSON(w, map[string]any{"list": []map[string]any{{"id": 5, "name": "Paneer Masala"}}})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	items, err := c.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1000.0, items[0].UnitQuantity.Float())
	assert.Equal(t, 40.0, items[0].UnitPrice.Float())

	departments, err := c.Departments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Department{{ID: 4, Name: "Central Kitchen"}}, departments)

	products, err := c.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Paneer Masala", products[0].Name)
}
