package upstream

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const legacyInventoryPath = "/InventoryReport/Get_GlobalStock_InventoryBySKU"

// LegacyClient wraps the legacy aggregate inventory endpoint.
//
// DO NOT use this for stock totals. The endpoint returns a historical,
// report-derived count that is not a physical-unit count: it has been
// observed reporting 4971 units for a single television SKU whose real
// warehouse stock was 23. It exists only so the misuse is documented in one
// place instead of being rediscovered. Nothing in the reconciliation
// pipeline constructs this client, and a zero from the authoritative
// adapter must never be "double checked" here. Zero means zero.
type LegacyClient struct {
	http      *resty.Client
	companyID int
}

// NewLegacyClient creates the legacy aggregate adapter. Not wired anywhere.
func NewLegacyClient(baseURL string, companyID int, timeout time.Duration) *LegacyClient {
	return &LegacyClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		companyID: companyID,
	}
}

type legacyInventoryRow struct {
	SKU          string `json:"SKU"`
	AvailableQTY int    `json:"AvailableQTY"`
}

// ReportDerivedCount returns the legacy report-derived count for a SKU. The
// value is unusable as sellable stock; see the type comment.
func (c *LegacyClient) ReportDerivedCount(ctx context.Context, sku string) (int, error) {
	var rows []legacyInventoryRow
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"COMPANYID": c.companyID,
			"SEARCH":    sku,
		}).
		SetResult(&rows).
		Post(legacyInventoryPath)
	if err != nil {
		return 0, fmt.Errorf("legacy inventory query failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return 0, fmt.Errorf("legacy inventory query returned status %d", resp.StatusCode())
	}
	for _, r := range rows {
		if r.SKU == sku {
			return r.AvailableQTY, nil
		}
	}
	if len(rows) > 0 {
		return rows[0].AvailableQTY, nil
	}
	return 0, nil
}
