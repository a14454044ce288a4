package market

import "time"

// BookMode 决定报价使用哪一种盘口视图。
type BookMode int

const (
	// ModeTop 使用最新 bid/ask 标量（轻量模式）。
	ModeTop BookMode = iota
	// ModeDepth 使用完整的有序深度盘口。
	ModeDepth
)

func (m BookMode) String() string {
	if m == ModeDepth {
		return "depth"
	}
	return "top"
}

// ParseBookMode 解析 "top"/"depth"，空串视为 top。
func ParseBookMode(s string) (BookMode, bool) {
	switch s {
	case "", "top":
		return ModeTop, true
	case "depth":
		return ModeDepth, true
	}
	return ModeTop, false
}

// StateConfig 单标的行情状态的容量参数。
type StateConfig struct {
	TradeLookback time.Duration // 成交回看窗口
	PriceHistory  int           // 价格环形缓冲容量
}

// State 单个标的的滚动行情快照。
type State struct {
	Book *OrderBook
	Top  Depth
	Tape *TradeTape
	Ring *PriceRing
}

func NewState(cfg StateConfig) *State {
	return &State{
		Book: NewOrderBook(),
		Tape: NewTradeTape(cfg.TradeLookback),
		Ring: NewPriceRing(cfg.PriceHistory),
	}
}

// ApplyTrade 记录成交：写入成交带（并裁剪）与价格环。
func (s *State) ApplyTrade(ts time.Time, side Side, qty, price float64) {
	s.Tape.Append(Trade{Ts: ts, Side: side, Qty: qty})
	s.Ring.Push(price)
}

// ApplyBookDelta 更新深度盘口的价位，并覆盖轻量 bid/ask。
// 不校验价格与数量的符号。
func (s *State) ApplyBookDelta(side Side, qty, price float64) {
	s.Book.Apply(side, qty, price)
	s.Top.Update(side, qty, price)
}

// Quote 是某个盘口视图下的最优买卖价。
type Quote struct {
	Bid    float64
	Ask    float64
	BidQty float64
	AskQty float64
}

// Mid 中间价。
func (q Quote) Mid() float64 { return (q.Bid + q.Ask) / 2 }

// Spread 买卖价差。
func (q Quote) Spread() float64 { return q.Ask - q.Bid }

// Best 返回指定视图下的最优价；任一侧缺失或盘口交叉时 ok=false。
func (s *State) Best(mode BookMode) (q Quote, ok bool) {
	if mode == ModeDepth {
		bid, hasBid, ask, hasAsk := s.Book.Best()
		if !hasBid || !hasAsk {
			return Quote{}, false
		}
		bidQty, _ := s.Book.Level(Buy, bid)
		askQty, _ := s.Book.Level(Sell, ask)
		q = Quote{Bid: bid, Ask: ask, BidQty: bidQty, AskQty: askQty}
	} else {
		if !s.Top.HasBid || !s.Top.HasAsk {
			return Quote{}, false
		}
		q = Quote{Bid: s.Top.Bid, Ask: s.Top.Ask, BidQty: s.Top.BidQty, AskQty: s.Top.AskQty}
	}
	if q.Ask < q.Bid {
		return q, false
	}
	return q, true
}

// Mark 估值价：所用盘口视图的中间价，其次最近成交价，最后价格环最新样本。
// 深度模式下轻量标量只是最后一次更新的价位，不能代表最优价。
func (s *State) Mark(mode BookMode) float64 {
	mid := s.Top.Mid()
	if mode == ModeDepth {
		mid = s.Book.Mid()
	}
	if mid != 0 {
		return mid
	}
	if p := s.Ring.LastTrade(); p > 0 {
		return p
	}
	return s.Ring.Latest()
}
