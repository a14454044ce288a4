package market

import "github.com/tidwall/btree"

// OrderBook 深度盘口：每侧 price->qty 的有序映射，qty 为 0 表示删除该档。
// 不做并发保护，由调用方串行访问。
type OrderBook struct {
	bids *btree.Map[float64, float64]
	asks *btree.Map[float64, float64]
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids: btree.NewMap[float64, float64](32),
		asks: btree.NewMap[float64, float64](32),
	}
}

// Apply 设置或删除单个价位。
func (ob *OrderBook) Apply(side Side, qty, price float64) {
	levels := ob.side(side)
	if qty == 0 {
		levels.Delete(price)
		return
	}
	levels.Set(price, qty)
}

// Best 返回最好买/卖价及各自是否存在。
func (ob *OrderBook) Best() (bid float64, hasBid bool, ask float64, hasAsk bool) {
	bid, _, hasBid = ob.bids.Max()
	ask, _, hasAsk = ob.asks.Min()
	return bid, hasBid, ask, hasAsk
}

// Mid 返回中间价；若缺失任一侧返回 0。
func (ob *OrderBook) Mid() float64 {
	bid, okBid, ask, okAsk := ob.Best()
	if !okBid || !okAsk {
		return 0
	}
	return (bid + ask) / 2
}

// Level 返回某价位的挂单量。
func (ob *OrderBook) Level(side Side, price float64) (float64, bool) {
	return ob.side(side).Get(price)
}

// Total 返回一侧全部档位数量之和。
func (ob *OrderBook) Total(side Side) float64 {
	total := 0.0
	ob.side(side).Scan(func(_ float64, qty float64) bool {
		total += qty
		return true
	})
	return total
}

// Depth 返回一侧档位数。
func (ob *OrderBook) Depth(side Side) int {
	return ob.side(side).Len()
}

func (ob *OrderBook) side(s Side) *btree.Map[float64, float64] {
	if s == Buy {
		return ob.bids
	}
	return ob.asks
}
