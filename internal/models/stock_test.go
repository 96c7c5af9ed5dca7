package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseConditionSuffix(t *testing.T) {
	c, ok := ParseConditionSuffix("SNFN000095-ICB")
	assert.True(t, ok)
	assert.Equal(t, ConditionICB, c)

	c, ok = ParseConditionSuffix("SNTV001763-GRB")
	assert.True(t, ok)
	assert.Equal(t, ConditionGRB, c)

	_, ok = ParseConditionSuffix("SNFN000095")
	assert.False(t, ok)

	// Case-sensitive, exact match
	_, ok = ParseConditionSuffix("snfn000095-icb")
	assert.False(t, ok)

	// Suffix must be delimited
	_, ok = ParseConditionSuffix("SNFNICB")
	assert.False(t, ok)
}

func TestBaseSKU(t *testing.T) {
	assert.Equal(t, "SNFN000095", BaseSKU("SNFN000095-ICB"))
	assert.Equal(t, "SNFN000095", BaseSKU("SNFN000095-NEW"))
	assert.Equal(t, "SNFN000095", BaseSKU("SNFN000095"))
}

func TestConditionsForSKU(t *testing.T) {
	// Regular SKUs exclude the IC pools entirely
	for _, sku := range []string{"SNFN000095", "SNTV001763-GRB", "SNTV001763-NEW", "ABC-123"} {
		set := ConditionsForSKU(sku)
		assert.Len(t, set, 4, "sku %s", sku)
		for _, c := range set {
			assert.False(t, c.IsIC(), "sku %s must not include %s", sku, c)
		}
	}

	// IC-suffixed SKUs include all six codes
	for _, sku := range []string{"SNFN000095-ICB", "SNFN000095-ICC"} {
		set := ConditionsForSKU(sku)
		assert.ElementsMatch(t, AllConditions, set, "sku %s", sku)
	}
}

func TestLocationTable(t *testing.T) {
	assert.Equal(t, RoleSellablePrimary, LocationCDMX.Role)
	assert.Equal(t, RoleSellablePrimary, LocationMTY.Role)
	assert.Equal(t, RoleInformational, LocationTJ.Role)

	l, ok := LocationByID(47)
	assert.True(t, ok)
	assert.Equal(t, "CDMX", l.Code)

	_, ok = LocationByID(99)
	assert.False(t, ok)
}

func TestLocationBreakdownSellable(t *testing.T) {
	b := LocationBreakdown{MTY: 19, CDMX: 4, TJ: 100}
	assert.Equal(t, 23, b.Sellable())
}

func TestEmptyStockResult(t *testing.T) {
	r := EmptyStockResult("SKU-X")
	assert.Equal(t, 0, r.SellableTotal)
	assert.Equal(t, 0, r.Other)
	assert.Equal(t, SourceNone, r.Source)
}
