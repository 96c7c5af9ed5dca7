package models

import "strings"

// ConditionCode identifies a physical condition pool in the warehouse.
// The set is closed: codes are never invented at runtime.
type ConditionCode string

const (
	ConditionNEW ConditionCode = "NEW"
	ConditionGRA ConditionCode = "GRA"
	ConditionGRB ConditionCode = "GRB"
	ConditionGRC ConditionCode = "GRC"
	ConditionICB ConditionCode = "ICB"
	ConditionICC ConditionCode = "ICC"
)

// GRConditions are the graded, resalable condition codes.
var GRConditions = []ConditionCode{ConditionNEW, ConditionGRA, ConditionGRB, ConditionGRC}

// ICConditions are the incomplete/damaged condition codes. Units in these
// pools are not sellable stock for a regular listing.
var ICConditions = []ConditionCode{ConditionICB, ConditionICC}

// AllConditions is GR followed by IC, the full closed set.
var AllConditions = []ConditionCode{
	ConditionNEW, ConditionGRA, ConditionGRB, ConditionGRC,
	ConditionICB, ConditionICC,
}

// SellableSuffixes is the fixed probe order for SKUs registered in the
// warehouse only under a condition-suffixed variant.
var SellableSuffixes = []ConditionCode{
	ConditionNEW, ConditionGRA, ConditionGRB, ConditionGRC,
	ConditionICB, ConditionICC,
}

// ParseConditionSuffix extracts the recognized condition suffix from a SKU.
// Matching is exact and case-sensitive: "SNFN000095-ICB" carries ICB,
// "snfn000095-icb" carries nothing.
func ParseConditionSuffix(sku string) (ConditionCode, bool) {
	for _, c := range AllConditions {
		if strings.HasSuffix(sku, "-"+string(c)) {
			return c, true
		}
	}
	return "", false
}

// BaseSKU strips the condition suffix, if any, returning the bare SKU the
// warehouse catalogs the product under.
func BaseSKU(sku string) string {
	if c, ok := ParseConditionSuffix(sku); ok {
		return sku[:len(sku)-len(string(c))-1]
	}
	return sku
}

// IsICSuffixed reports whether the listing itself targets incomplete/damaged
// inventory.
func IsICSuffixed(sku string) bool {
	c, ok := ParseConditionSuffix(sku)
	return ok && (c == ConditionICB || c == ConditionICC)
}

// ConditionsForSKU resolves the condition set legal for a SKU's stock
// computation. IC-suffixed listings sell damaged/incomplete units, so
// excluding the IC pools would make them permanently empty; every other
// listing counts GR stock only.
func ConditionsForSKU(sku string) []ConditionCode {
	if IsICSuffixed(sku) {
		return AllConditions
	}
	return GRConditions
}

// IsIC reports whether a condition code belongs to the IC group.
func (c ConditionCode) IsIC() bool {
	return c == ConditionICB || c == ConditionICC
}

// LocationRole classifies a warehouse for stock accounting.
type LocationRole string

const (
	// RoleSellablePrimary warehouses fulfill orders; their quantities sum
	// into the sellable total.
	RoleSellablePrimary LocationRole = "sellable_primary"
	// RoleInformational warehouses are reported for visibility only and
	// never count toward sellable stock.
	RoleInformational LocationRole = "informational"
)

// WarehouseLocation is one of the three physical warehouses. The table is a
// build-time constant: which warehouses fulfill this seller's orders is an
// operational fact, not configuration.
type WarehouseLocation struct {
	ID   int
	Code string
	Role LocationRole
}

var (
	LocationCDMX = WarehouseLocation{ID: 47, Code: "CDMX", Role: RoleSellablePrimary}
	LocationMTY  = WarehouseLocation{ID: 62, Code: "MTY", Role: RoleSellablePrimary}
	LocationTJ   = WarehouseLocation{ID: 68, Code: "TJ", Role: RoleInformational}
)

// Locations lists every warehouse, sellable-primary first.
var Locations = []WarehouseLocation{LocationCDMX, LocationMTY, LocationTJ}

// LocationByID returns the warehouse bound to a numeric identifier.
func LocationByID(id int) (WarehouseLocation, bool) {
	for _, l := range Locations {
		if l.ID == id {
			return l, true
		}
	}
	return WarehouseLocation{}, false
}

// LocationIDs returns the identifiers of every warehouse, in table order.
func LocationIDs() []int {
	ids := make([]int, len(Locations))
	for i, l := range Locations {
		ids[i] = l.ID
	}
	return ids
}

// StockQuery is a fully-resolved upstream request. Deterministic given a SKU.
type StockQuery struct {
	SKU         string
	Conditions  []ConditionCode
	LocationIDs []int
}

// NewStockQuery builds the query for a SKU: its resolved condition set over
// every warehouse.
func NewStockQuery(sku string) StockQuery {
	return StockQuery{
		SKU:         sku,
		Conditions:  ConditionsForSKU(sku),
		LocationIDs: LocationIDs(),
	}
}

// StockRow is one (location, condition, quantity) fact from the
// authoritative warehouse source.
type StockRow struct {
	LocationID int           `json:"location_id"`
	Condition  ConditionCode `json:"condition"`
	Quantity   int           `json:"quantity"`
	// ProductSKU is the SKU the warehouse actually holds the row under,
	// which may be a condition-suffixed variant of the queried SKU.
	ProductSKU string `json:"product_sku"`
}

// ResolutionSource marks how a StockResult was obtained.
type ResolutionSource string

const (
	// SourceDirect: the bare SKU query returned data.
	SourceDirect ResolutionSource = "direct"
	// SourceFallback: data was found under a condition-suffixed variant.
	SourceFallback ResolutionSource = "fallback"
	// SourceNone: no data anywhere; zero sellable stock.
	SourceNone ResolutionSource = "none"
)

// LocationBreakdown holds per-warehouse quantities for one condition group.
type LocationBreakdown struct {
	MTY  int `json:"mty"`
	CDMX int `json:"cdmx"`
	TJ   int `json:"tj"`
}

// Sellable sums the sellable-primary warehouses. TJ is informational and
// never contributes.
func (b LocationBreakdown) Sellable() int {
	return b.MTY + b.CDMX
}

// StockResult is the engine's canonical answer for one SKU.
type StockResult struct {
	SKU           string            `json:"sku"`
	SellableTotal int               `json:"sellable_total"`
	GR            LocationBreakdown `json:"gr_breakdown"`
	IC            LocationBreakdown `json:"ic_breakdown"`
	// Other is zero by construction. There is no valid secondary stock
	// source; the field exists so consumers have a stable place to assert
	// that nothing else contributes.
	Other  int              `json:"other"`
	Source ResolutionSource `json:"source"`
}

// EmptyStockResult is the terminal no-data answer. Indistinguishable from a
// warehouse-confirmed zero, on purpose: ambiguity defaults to not sellable.
func EmptyStockResult(sku string) StockResult {
	return StockResult{SKU: sku, Source: SourceNone}
}

// VariationStockResult pairs a variation with its independently resolved
// stock.
type VariationStockResult struct {
	VariationID int64       `json:"variation_id"`
	SKU         string      `json:"sku"`
	Stock       StockResult `json:"stock"`
}

// ListingStock is the item-level view of a multi-variation listing: every
// variation's result plus their exact sum.
type ListingStock struct {
	ListingID  int64                  `json:"listing_id"`
	Variations []VariationStockResult `json:"variations"`
	Total      int                    `json:"total"`
}
