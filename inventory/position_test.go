package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"market-maker-engine/market"
)

func TestTrackerUpdate(t *testing.T) {
	var tr Tracker
	tr.Apply(market.Buy, 1, 100)
	assert.Equal(t, 1.0, tr.NetExposure())
	assert.Equal(t, 100.0, tr.AvgCost())

	tr.Apply(market.Buy, 1, 110)
	assert.InDelta(t, 105.0, tr.AvgCost(), 1e-9)

	// 减仓不改变均价
	tr.Apply(market.Sell, 1, 120)
	assert.Equal(t, 1.0, tr.NetExposure())
	assert.InDelta(t, 105.0, tr.AvgCost(), 1e-9)
	assert.Equal(t, 3, tr.Fills())
}

func TestTrackerFlipAndFlat(t *testing.T) {
	var tr Tracker
	tr.Apply(market.Buy, 2, 100)
	tr.Apply(market.Sell, 5, 90)
	assert.Equal(t, -3.0, tr.NetExposure())
	assert.Equal(t, 90.0, tr.AvgCost(), "flip resets cost to fill price")

	tr.Apply(market.Sell, 1, 80)
	assert.InDelta(t, 87.5, tr.AvgCost(), 1e-9)

	tr.Apply(market.Buy, 4, 85)
	assert.Zero(t, tr.NetExposure())
	assert.Zero(t, tr.AvgCost())
}

func TestValuation(t *testing.T) {
	var tr Tracker
	tr.Update(-10, 50)
	value, pnl := tr.Valuation(45)
	assert.Equal(t, -450.0, value)
	assert.Equal(t, 50.0, pnl)
}
