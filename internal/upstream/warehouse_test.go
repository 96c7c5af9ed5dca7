package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stock-reconciler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *WarehouseClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWarehouseClient(srv.URL, 1, 2*time.Second)
}

func TestQueryStockParsesRows(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, warehouseStockPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"LocationID": 62, "Condition": "GRB", "QtyTotal": 19, "ProductSKU": "SNTV001763-GRB"},
			{"LocationID": 47, "Condition": "gra", "QtyTotal": 4, "ProductSKU": "SNTV001763-GRA"}
		]`))
	})

	rows := client.QueryStock(context.Background(), models.NewStockQuery("SNTV001763"))

	require.Len(t, rows, 2)
	assert.Equal(t, models.ConditionGRB, rows[0].Condition)
	assert.Equal(t, 19, rows[0].Quantity)
	assert.Equal(t, models.LocationMTY.ID, rows[0].LocationID)
	// Condition codes are normalized to the closed set
	assert.Equal(t, models.ConditionGRA, rows[1].Condition)
}

func TestQueryStockDropsMalformedRows(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"LocationID": 999, "Condition": "GRB", "QtyTotal": 19},
			{"LocationID": 62, "Condition": "XXX", "QtyTotal": 5},
			{"LocationID": 62, "Condition": "GRA", "QtyTotal": -1},
			{"LocationID": 47, "Condition": "NEW", "QtyTotal": 2, "ProductSKU": "SKU-1-NEW"}
		]`))
	})

	rows := client.QueryStock(context.Background(), models.NewStockQuery("SKU-1"))

	require.Len(t, rows, 1)
	assert.Equal(t, models.ConditionNEW, rows[0].Condition)
}

func TestQueryStockNoDataOutcomes(t *testing.T) {
	// Empty body, server error, and unparseable payloads all collapse to
	// the same explicit no-data answer.
	empty := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	assert.Nil(t, empty.QueryStock(context.Background(), models.NewStockQuery("SKU-1")))

	failing := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	assert.Nil(t, failing.QueryStock(context.Background(), models.NewStockQuery("SKU-1")))

	garbage := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"unexpected": "shape"}`))
	})
	assert.Nil(t, garbage.QueryStock(context.Background(), models.NewStockQuery("SKU-1")))
}

func TestQueryStockTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)
	client := NewWarehouseClient(srv.URL, 1, 50*time.Millisecond)

	rows := client.QueryStock(context.Background(), models.NewStockQuery("SKU-1"))

	assert.Nil(t, rows, "timeout is treated identically to an adapter error")
}
