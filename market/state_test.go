package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestState() *State {
	return NewState(StateConfig{TradeLookback: time.Minute, PriceHistory: 8})
}

func TestStateBestModes(t *testing.T) {
	s := newTestState()
	s.ApplyBookDelta(Buy, 50, 99.99)
	s.ApplyBookDelta(Sell, 10, 100.01)
	s.ApplyBookDelta(Buy, 5, 99.90)

	// 轻量模式看到的是最后一次买盘更新
	top, ok := s.Best(ModeTop)
	assert.True(t, ok)
	assert.Equal(t, 99.90, top.Bid)
	assert.Equal(t, 5.0, top.BidQty)

	deep, ok := s.Best(ModeDepth)
	assert.True(t, ok)
	assert.Equal(t, 99.99, deep.Bid)
	assert.Equal(t, 50.0, deep.BidQty)
	assert.Equal(t, 100.01, deep.Ask)
	assert.InDelta(t, 100.0, deep.Mid(), 1e-9)
	assert.InDelta(t, 0.02, deep.Spread(), 1e-9)
}

func TestStateBestRejectsCrossedAndOneSided(t *testing.T) {
	s := newTestState()
	_, ok := s.Best(ModeTop)
	assert.False(t, ok)

	s.ApplyBookDelta(Buy, 1, 100)
	_, ok = s.Best(ModeTop)
	assert.False(t, ok, "one-sided")
	_, ok = s.Best(ModeDepth)
	assert.False(t, ok, "one-sided")

	s.ApplyBookDelta(Sell, 1, 99)
	_, ok = s.Best(ModeTop)
	assert.False(t, ok, "crossed")
	_, ok = s.Best(ModeDepth)
	assert.False(t, ok, "crossed")
}

func TestStateMarkFallbacks(t *testing.T) {
	s := newTestState()
	assert.Zero(t, s.Mark(ModeTop))

	s.ApplyTrade(time.Unix(0, 0), Buy, 1, 42)
	assert.Equal(t, 42.0, s.Mark(ModeTop), "falls back to last trade")
	assert.Equal(t, 42.0, s.Mark(ModeDepth))

	s.ApplyBookDelta(Buy, 1, 40)
	s.ApplyBookDelta(Sell, 1, 41)
	assert.Equal(t, 40.5, s.Mark(ModeTop), "prefers mid")
	assert.Equal(t, 40.5, s.Mark(ModeDepth))
}

func TestStateMarkDepthUsesBestLevels(t *testing.T) {
	s := newTestState()
	s.ApplyBookDelta(Buy, 50, 99.99)
	s.ApplyBookDelta(Sell, 10, 100.01)
	// 更深的买档与远端卖档删除都会覆盖轻量标量
	s.ApplyBookDelta(Buy, 5, 90)
	s.ApplyBookDelta(Sell, 0, 120)

	assert.InDelta(t, 100.0, s.Mark(ModeDepth), 1e-9)
	assert.InDelta(t, 105.0, s.Mark(ModeTop), 1e-9)

	// 深度盘口单边时退回最近成交价
	s.ApplyBookDelta(Sell, 0, 100.01)
	s.ApplyTrade(time.Unix(0, 0), Sell, 1, 99.95)
	assert.Equal(t, 99.95, s.Mark(ModeDepth))
}

func TestParseBookMode(t *testing.T) {
	m, ok := ParseBookMode("depth")
	assert.True(t, ok)
	assert.Equal(t, ModeDepth, m)
	m, ok = ParseBookMode("")
	assert.True(t, ok)
	assert.Equal(t, ModeTop, m)
	_, ok = ParseBookMode("l3")
	assert.False(t, ok)
}

func TestParseInstrument(t *testing.T) {
	inst, err := ParseInstrument(" ltc ")
	assert.NoError(t, err)
	assert.Equal(t, LTC, inst)
	assert.Equal(t, "LTC", inst.String())
	_, err = ParseInstrument("DOGE")
	assert.Error(t, err)
	assert.Equal(t, Sell, Buy.Opposite())
}
