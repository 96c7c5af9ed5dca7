package upstream

import (
	"context"
	"strconv"
	"strings"
	"time"

	"stock-reconciler/internal/models"
	"stock-reconciler/internal/util"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const warehouseStockPath = "/InventoryReport/Get_GlobalStock_InventoryBySKU_Warehouse"

// WarehouseClient queries the authoritative warehouse source: per-location,
// per-condition quantities for a SKU. This is the only legitimate source of
// sellable stock.
//
// Failures never escape this boundary: a timeout, transport error, or
// malformed response collapses to "no data" for that query. Zero rows is a
// valid, final answer.
type WarehouseClient struct {
	http      *resty.Client
	companyID int
	logger    *zap.Logger
}

// NewWarehouseClient creates the authoritative warehouse adapter.
func NewWarehouseClient(baseURL string, companyID int, timeout time.Duration) *WarehouseClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &WarehouseClient{
		http:      client,
		companyID: companyID,
		logger:    util.GetLogger(),
	}
}

// warehouseStockRequest is the wire payload for the warehouse stock query.
type warehouseStockRequest struct {
	CompanyID   int    `json:"COMPANYID"`
	SKU         string `json:"SKU"`
	LocationIDs string `json:"LOCATIONID"`
	Conditions  string `json:"CONDITION"`
}

// warehouseStockRow is one row of the warehouse response.
type warehouseStockRow struct {
	LocationID int    `json:"LocationID"`
	Condition  string `json:"Condition"`
	QtyTotal   int    `json:"QtyTotal"`
	ProductSKU string `json:"ProductSKU"`
}

// QueryStock fetches raw (location, condition, quantity) rows for a query.
// Returns nil when the upstream has no data for the SKU, for any reason.
func (c *WarehouseClient) QueryStock(ctx context.Context, query models.StockQuery) []models.StockRow {
	start := time.Now()
	defer func() {
		util.UpstreamLatency.Observe(time.Since(start).Seconds())
	}()

	payload := warehouseStockRequest{
		CompanyID:   c.companyID,
		SKU:         query.SKU,
		LocationIDs: joinInts(query.LocationIDs),
		Conditions:  joinConditions(query.Conditions),
	}

	var rows []warehouseStockRow
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&rows).
		Post(warehouseStockPath)
	if err != nil {
		util.UpstreamErrorsTotal.WithLabelValues("unavailable").Inc()
		c.logger.Warn("Warehouse query failed",
			zap.String("sku", query.SKU),
			zap.Error(err))
		return nil
	}
	if resp.StatusCode() != 200 {
		util.UpstreamErrorsTotal.WithLabelValues("status").Inc()
		c.logger.Warn("Warehouse query returned non-200",
			zap.String("sku", query.SKU),
			zap.Int("status", resp.StatusCode()))
		return nil
	}

	out := make([]models.StockRow, 0, len(rows))
	for _, r := range rows {
		row, ok := c.parseRow(r)
		if !ok {
			util.UpstreamErrorsTotal.WithLabelValues("malformed").Inc()
			c.logger.Warn("Dropping malformed warehouse row",
				zap.String("sku", query.SKU),
				zap.Int("location_id", r.LocationID),
				zap.String("condition", r.Condition))
			continue
		}
		out = append(out, row)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseRow validates a wire row against the closed location and condition
// sets.
func (c *WarehouseClient) parseRow(r warehouseStockRow) (models.StockRow, bool) {
	if _, ok := models.LocationByID(r.LocationID); !ok {
		return models.StockRow{}, false
	}
	cond := models.ConditionCode(strings.ToUpper(strings.TrimSpace(r.Condition)))
	known := false
	for _, k := range models.AllConditions {
		if cond == k {
			known = true
			break
		}
	}
	if !known || r.QtyTotal < 0 {
		return models.StockRow{}, false
	}
	return models.StockRow{
		LocationID: r.LocationID,
		Condition:  cond,
		Quantity:   r.QtyTotal,
		ProductSKU: strings.ToUpper(strings.TrimSpace(r.ProductSKU)),
	}, true
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func joinConditions(conds []models.ConditionCode) string {
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}
