package engine

import (
	"testing"

	"stock-reconciler/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAggregateInformationalLocationExcluded(t *testing.T) {
	rows := []models.StockRow{
		{LocationID: models.LocationTJ.ID, Condition: models.ConditionGRA, Quantity: 50},
		{LocationID: models.LocationMTY.ID, Condition: models.ConditionGRA, Quantity: 2},
	}

	res := Aggregate("SKU-1", rows, models.SourceDirect)

	assert.Equal(t, 2, res.SellableTotal)
	assert.Equal(t, 50, res.GR.TJ)
	assert.Equal(t, 2, res.GR.MTY)
}

func TestAggregateUnknownLocationDropped(t *testing.T) {
	rows := []models.StockRow{
		{LocationID: 999, Condition: models.ConditionGRA, Quantity: 10},
		{LocationID: models.LocationCDMX.ID, Condition: models.ConditionGRB, Quantity: 3},
	}

	res := Aggregate("SKU-1", rows, models.SourceDirect)

	assert.Equal(t, 3, res.SellableTotal)
}

func TestAggregateGroupsByCondition(t *testing.T) {
	rows := []models.StockRow{
		{LocationID: models.LocationMTY.ID, Condition: models.ConditionNEW, Quantity: 1},
		{LocationID: models.LocationMTY.ID, Condition: models.ConditionGRC, Quantity: 2},
		{LocationID: models.LocationCDMX.ID, Condition: models.ConditionICB, Quantity: 4},
		{LocationID: models.LocationTJ.ID, Condition: models.ConditionICC, Quantity: 8},
	}

	res := Aggregate("SKU-1", rows, models.SourceDirect)

	assert.Equal(t, models.LocationBreakdown{MTY: 3}, res.GR)
	assert.Equal(t, models.LocationBreakdown{CDMX: 4, TJ: 8}, res.IC)
	assert.Equal(t, 3, res.SellableTotal)

	res = Aggregate("SKU-1-ICC", rows, models.SourceDirect)
	assert.Equal(t, 7, res.SellableTotal, "IC-suffixed SKU counts both groups, TJ still excluded")
}

func TestAggregateAllZeroCollapsesToEmpty(t *testing.T) {
	rows := []models.StockRow{
		{LocationID: models.LocationMTY.ID, Condition: models.ConditionGRA, Quantity: 0},
	}

	res := Aggregate("SKU-1", rows, models.SourceDirect)

	assert.Equal(t, models.EmptyStockResult("SKU-1"), res)
}

func TestAggregateOtherAlwaysZero(t *testing.T) {
	rows := []models.StockRow{
		{LocationID: models.LocationMTY.ID, Condition: models.ConditionGRA, Quantity: 5},
	}

	res := Aggregate("SKU-1", rows, models.SourceDirect)

	assert.Equal(t, 0, res.Other)
}
