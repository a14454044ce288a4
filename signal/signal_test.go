package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"market-maker-engine/market"
)

func TestBookImbalance(t *testing.T) {
	tests := []struct {
		name     string
		bid, ask float64
		expected float64
	}{
		{name: "ask side empty", bid: 10, ask: 0, expected: 5.0},
		{name: "both sides empty", bid: 0, ask: 0, expected: 1.0},
		{name: "bid heavy", bid: 50, ask: 10, expected: 5.0},
		{name: "ask heavy", bid: 10, ask: 40, expected: 0.25},
		{name: "bid side empty", bid: 0, ask: 10, expected: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BookImbalance(tt.bid, tt.ask))
		})
	}
}

func TestBookImbalanceOfModes(t *testing.T) {
	s := market.NewState(market.StateConfig{TradeLookback: time.Minute, PriceHistory: 32})
	s.ApplyBookDelta(market.Buy, 30, 99.98)
	s.ApplyBookDelta(market.Buy, 20, 99.99)
	s.ApplyBookDelta(market.Sell, 10, 100.01)

	assert.Equal(t, 5.0, BookImbalanceOf(s, market.ModeDepth))
	// 轻量模式：最后一次买盘更新数量 20 / 10
	assert.Equal(t, 2.0, BookImbalanceOf(s, market.ModeTop))

	empty := market.NewState(market.StateConfig{})
	assert.Equal(t, Neutral, BookImbalanceOf(empty, market.ModeTop))
	assert.Equal(t, Neutral, BookImbalanceOf(empty, market.ModeDepth))
}

func TestFlowImbalance(t *testing.T) {
	now := time.Unix(1000, 0)
	tape := market.NewTradeTape(time.Minute)
	assert.Equal(t, Neutral, FlowImbalance(tape, now, 10*time.Second))

	tape.Append(market.Trade{Ts: now.Add(-5 * time.Second), Side: market.Buy, Qty: 4})
	assert.Equal(t, Sentinel, FlowImbalance(tape, now, 10*time.Second))

	tape.Append(market.Trade{Ts: now.Add(-2 * time.Second), Side: market.Sell, Qty: 2})
	assert.Equal(t, 2.0, FlowImbalance(tape, now, 10*time.Second))

	// 窗口外的卖单不计入
	old := market.NewTradeTape(time.Minute)
	old.Append(market.Trade{Ts: now.Add(-30 * time.Second), Side: market.Sell, Qty: 100})
	old.Append(market.Trade{Ts: now.Add(-1 * time.Second), Side: market.Buy, Qty: 1})
	old.Append(market.Trade{Ts: now.Add(-1 * time.Second), Side: market.Sell, Qty: 1})
	assert.Equal(t, 1.0, FlowImbalance(old, now, 10*time.Second))
	assert.InDelta(t, 1.0/101.0, FlowImbalance(old, now, 0), 1e-12)
}

func TestMomentumRequiresLongWindow(t *testing.T) {
	ring := market.NewPriceRing(32)
	for i := 0; i < 11; i++ {
		ring.Push(100 + float64(i)*10)
	}
	assert.Zero(t, Momentum(ring, 3, 12), "11 samples < long window")

	ring.Push(210)
	assert.NotZero(t, Momentum(ring, 3, 12))
}

func TestMomentumSign(t *testing.T) {
	up := market.NewPriceRing(32)
	for i := 0; i < 12; i++ {
		up.Push(100 + float64(i))
	}
	// 最近 3 个: 111,110,109 -> 110; 12 个均值 105.5
	assert.InDelta(t, (110.0-105.5)/105.5, Momentum(up, 3, 12), 1e-12)

	down := market.NewPriceRing(32)
	for i := 0; i < 12; i++ {
		down.Push(100 - float64(i))
	}
	assert.Less(t, Momentum(down, 3, 12), 0.0)

	flat := market.NewPriceRing(32)
	for i := 0; i < 20; i++ {
		flat.Push(50)
	}
	assert.Zero(t, Momentum(flat, 3, 12))
}

func TestMomentumIgnoresZeroSamples(t *testing.T) {
	ring := market.NewPriceRing(16)
	for i := 0; i < 12; i++ {
		ring.Push(100)
		ring.Push(0)
	}
	// 环中仅 8 个非零样本
	assert.Zero(t, Momentum(ring, 3, 12))
	assert.Zero(t, Momentum(ring, 12, 3), "short must be below long")
}

func TestComputeSnapshot(t *testing.T) {
	s := market.NewState(market.StateConfig{TradeLookback: time.Minute, PriceHistory: 32})
	now := time.Unix(500, 0)
	s.ApplyBookDelta(market.Buy, 50, 99.99)
	s.ApplyBookDelta(market.Sell, 10, 100.01)
	s.ApplyTrade(now, market.Buy, 3, 100)
	s.ApplyTrade(now, market.Sell, 3, 100)

	snap := Compute(s, now, Params{Mode: market.ModeDepth, FlowWindow: 10 * time.Second, ShortWindow: 3, LongWindow: 12})
	assert.Equal(t, Snapshot{BookImbalance: 5, FlowImbalance: 1, Momentum: 0}, snap)
}
