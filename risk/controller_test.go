package risk

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-maker-engine/inventory"
	"market-maker-engine/market"
	"market-maker-engine/metrics"
)

type marketCall struct {
	inst market.Instrument
	side market.Side
	qty  float64
	kind string
}

type mockHedger struct {
	calls  []marketCall
	logs   []string
	reject bool
}

func (h *mockHedger) MarketOrder(inst market.Instrument, side market.Side, qty float64, kind string) bool {
	h.calls = append(h.calls, marketCall{inst, side, qty, kind})
	return !h.reject
}

func (h *mockHedger) Log(text string) { h.logs = append(h.logs, text) }

func newController(t *testing.T, h *mockHedger, m *metrics.Metrics) *Controller {
	t.Helper()
	c, err := NewController(Config{MaxPosition: 250, InitialCash: 1000}, h, nil, m)
	require.NoError(t, err)
	return c
}

func TestNewControllerValidates(t *testing.T) {
	_, err := NewController(Config{}, &mockHedger{}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidMaxPosition)

	_, err = NewController(Config{MaxPosition: 1}, nil, nil, nil)
	assert.Error(t, err)
}

func TestOnFillHedgesExcess(t *testing.T) {
	h := &mockHedger{}
	c := newController(t, h, nil)
	var tr inventory.Tracker
	tr.Update(250, 100)

	hedged := c.OnFill(market.ETH, &tr, market.Buy, 10, 100, 500)
	assert.Equal(t, -10.0, hedged)
	assert.Equal(t, 260.0, tr.NetExposure(), "position waits for the hedge fill")
	assert.Equal(t, 500.0, c.Cash())
	require.Len(t, h.calls, 1)
	assert.Equal(t, marketCall{market.ETH, market.Sell, 10, "hedge"}, h.calls[0])
}

func TestOnFillHedgesShortExcess(t *testing.T) {
	h := &mockHedger{}
	c := newController(t, h, nil)
	var tr inventory.Tracker
	tr.Update(-249, 100)

	hedged := c.OnFill(market.BTC, &tr, market.Sell, 3, 100, 2000)
	assert.Equal(t, 2.0, hedged)
	require.Len(t, h.calls, 1)
	assert.Equal(t, market.Buy, h.calls[0].side)
	assert.InDelta(t, 2.0, h.calls[0].qty, 1e-9)
}

func TestOnFillWithinCap(t *testing.T) {
	h := &mockHedger{}
	c := newController(t, h, nil)
	var tr inventory.Tracker
	assert.Zero(t, c.OnFill(market.LTC, &tr, market.Buy, 250, 10, 0))
	assert.Empty(t, h.calls)
}

func TestEnforceFailureNotRetried(t *testing.T) {
	h := &mockHedger{reject: true}
	c := newController(t, h, nil)
	assert.Equal(t, -5.0, c.Enforce(market.ETH, 255))
	assert.Len(t, h.calls, 1)
}

func TestHeadroom(t *testing.T) {
	c := newController(t, &mockHedger{}, nil)
	assert.True(t, c.CanBuy(0, 100, 2))
	assert.False(t, c.CanBuy(250, 100, 2), "at cap")
	assert.False(t, c.CanBuy(0, 500, 2), "cash must exceed notional")
	assert.True(t, c.CanSell(-249))
	assert.False(t, c.CanSell(-250))
}

func TestReport(t *testing.T) {
	h := &mockHedger{}
	m := metrics.New("test")
	c := newController(t, h, m)

	var eth, btc, ltc inventory.Tracker
	eth.Update(1, 94)
	eth.Update(1, 96)
	btc.Update(-1, 52)
	holdings := []Holding{
		{Instrument: market.ETH, Position: &eth, Mark: 100.5},
		{Instrument: market.BTC, Position: &btc, Mark: 50},
		{Instrument: market.LTC, Position: &ltc, Mark: 0},
	}
	total := c.Report(holdings)
	assert.InDelta(t, 1151.0, total, 1e-9)
	assert.Equal(t, []string{"Portfolio Value: 1151.00"}, h.logs)
	expected := `
# HELP test_portfolio_value 现金加持仓市值
# TYPE test_portfolio_value gauge
test_portfolio_value 1151
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_portfolio_value"))

	// 均价 95：ETH (100.5-95)*2，BTC 空头 (50-52)*-1
	expectedPnL := `
# HELP test_unrealized_pnl 按持仓均价计算的未实现盈亏
# TYPE test_unrealized_pnl gauge
test_unrealized_pnl{instrument="BTC"} 2
test_unrealized_pnl{instrument="ETH"} 11
test_unrealized_pnl{instrument="LTC"} 0
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expectedPnL), "test_unrealized_pnl"))
}

func TestValueSkipsMissingTrackers(t *testing.T) {
	c := newController(t, &mockHedger{}, nil)
	assert.Equal(t, 1000.0, c.Value([]Holding{{Instrument: market.ETH, Mark: 10}}))
}
