// Package signal 从行情状态派生交易信号：盘口失衡、成交流失衡与价格动量。
// 所有函数均为纯函数，每个报价周期重新计算，不做跨周期缓存。
package signal

import (
	"time"

	"market-maker-engine/market"
)

// Sentinel 是卖方数量为零时返回的失衡值（强烈偏多）。
const Sentinel = 5.0

// Neutral 表示无方向的失衡值。
const Neutral = 1.0

// Snapshot 一个报价周期的信号集合。
type Snapshot struct {
	BookImbalance float64
	FlowImbalance float64
	Momentum      float64
}

// Params 信号计算参数。
type Params struct {
	Mode        market.BookMode
	FlowWindow  time.Duration
	ShortWindow int
	LongWindow  int
}

// BookImbalance = bid 总量 / ask 总量。
// 两侧都为空返回 Neutral；仅 ask 为空返回 Sentinel。
func BookImbalance(bidQty, askQty float64) float64 {
	if askQty == 0 {
		if bidQty == 0 {
			return Neutral
		}
		return Sentinel
	}
	return bidQty / askQty
}

// BookImbalanceOf 深度模式使用全部档位合计，轻量模式使用最优价数量。
func BookImbalanceOf(s *market.State, mode market.BookMode) float64 {
	if mode == market.ModeDepth {
		return BookImbalance(s.Book.Total(market.Buy), s.Book.Total(market.Sell))
	}
	var bid, ask float64
	if s.Top.HasBid {
		bid = s.Top.BidQty
	}
	if s.Top.HasAsk {
		ask = s.Top.AskQty
	}
	return BookImbalance(bid, ask)
}

// FlowImbalance = 主动买量 / 主动卖量，统计 ts > now-window 的成交。
// window<=0 时统计整条成交带。
func FlowImbalance(tape *market.TradeTape, now time.Time, window time.Duration) float64 {
	var buys, sells float64
	cutoff := now.Add(-window)
	tape.Each(func(tr market.Trade) bool {
		if window > 0 && !tr.Ts.After(cutoff) {
			return true
		}
		if tr.Side == market.Buy {
			buys += tr.Qty
		} else {
			sells += tr.Qty
		}
		return true
	})
	if sells == 0 {
		if buys > 0 {
			return Sentinel
		}
		return Neutral
	}
	return buys / sells
}

// Momentum = (短窗口均价 - 长窗口均价) / 长窗口均价。
// 有效（非零）样本少于 long 个时返回 0。正值表示向上动量。
func Momentum(ring *market.PriceRing, short, long int) float64 {
	if short <= 0 || long <= 0 || short >= long {
		return 0
	}
	vals := ring.Recent(long)
	if len(vals) < long {
		return 0
	}
	shortAvg := mean(vals[:short])
	longAvg := mean(vals)
	if longAvg == 0 {
		return 0
	}
	return (shortAvg - longAvg) / longAvg
}

// Compute 计算一个周期的全部信号。
func Compute(s *market.State, now time.Time, p Params) Snapshot {
	return Snapshot{
		BookImbalance: BookImbalanceOf(s, p.Mode),
		FlowImbalance: FlowImbalance(s.Tape, now, p.FlowWindow),
		Momentum:      Momentum(s.Ring, p.ShortWindow, p.LongWindow),
	}
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
