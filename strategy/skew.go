package strategy

import (
	"math"

	"market-maker-engine/market"
)

// SkewConfig 动量与库存倾斜的双边连续报价参数。
type SkewConfig struct {
	MinTick           float64 // 最小半价差
	SpreadFactor      float64 // 半价差 = SpreadFactor * 有效价差
	MinSpreadFraction float64 // 有效价差下限（相对 mid）
	MomentumThreshold float64
	OrderSize         float64
	ScalpSize         float64
	Precision         int
}

// SkewPolicy 围绕 mid 双边挂单：持仓时按库存倾斜，动量越过阈值时撤掉逆势一侧，
// 并在动量方向追加一笔小额市价单。
type SkewPolicy struct {
	cfg SkewConfig
}

func NewSkewPolicy(cfg SkewConfig) *SkewPolicy {
	if cfg.ScalpSize <= 0 {
		cfg.ScalpSize = 1
	}
	return &SkewPolicy{cfg: cfg}
}

func (p *SkewPolicy) Name() string { return KindSkew }

// HalfWidth 计算半价差（同时作为重挂的 tick）。
func (p *SkewPolicy) HalfWidth(bid, ask float64) float64 {
	mid := (bid + ask) / 2
	spread := math.Max(ask-bid, mid*p.cfg.MinSpreadFraction)
	return math.Max(p.cfg.MinTick, spread*p.cfg.SpreadFactor)
}

func (p *SkewPolicy) Quote(ctx Context) Decision {
	if !ctx.Valid {
		return skip("no valid market")
	}
	bid, ask := ctx.Book.Bid, ctx.Book.Ask
	if ask <= bid {
		return skip("locked or crossed book")
	}

	mid := (bid + ask) / 2
	tick := p.HalfWidth(bid, ask)
	buy := mid - tick
	sell := mid + tick

	// 多头时压低买价，空头时抬高卖价
	if ctx.Position > 0 {
		buy -= tick * 0.5
	} else if ctx.Position < 0 {
		sell += tick * 0.5
	}

	d := Decision{
		Tick:   tick,
		Buy:    SideQuote{Price: roundPrice(buy, p.cfg.Precision), Size: p.cfg.OrderSize},
		Sell:   SideQuote{Price: roundPrice(sell, p.cfg.Precision), Size: p.cfg.OrderSize},
		Reason: "two-sided",
	}

	mom := ctx.Signals.Momentum
	th := p.cfg.MomentumThreshold
	switch {
	case mom < -th:
		d.Buy.Withdraw = true
		d.Reason = "downward momentum"
		if ctx.Position > -ctx.MaxPosition {
			d.Scalp = &Scalp{Side: market.Sell, Qty: p.cfg.ScalpSize}
		}
	case mom > th:
		d.Sell.Withdraw = true
		d.Reason = "upward momentum"
		if ctx.Position < ctx.MaxPosition {
			d.Scalp = &Scalp{Side: market.Buy, Qty: p.cfg.ScalpSize}
		}
	}
	return d
}
