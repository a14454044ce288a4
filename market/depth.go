package market

// Depth 轻量盘口：仅保存最新 bid/ask 标量与存在标志。
type Depth struct {
	Bid    float64
	BidQty float64
	HasBid bool
	Ask    float64
	AskQty float64
	HasAsk bool
}

// Update 无条件覆盖对应一侧的最新价。
func (d *Depth) Update(side Side, qty, price float64) {
	if side == Buy {
		d.Bid, d.BidQty, d.HasBid = price, qty, true
		return
	}
	d.Ask, d.AskQty, d.HasAsk = price, qty, true
}

// Mid 返回中间价；若缺失任一侧返回 0。
func (d Depth) Mid() float64 {
	if !d.HasBid || !d.HasAsk {
		return 0
	}
	return (d.Bid + d.Ask) / 2
}
