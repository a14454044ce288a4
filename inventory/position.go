// Package inventory 维护单个标的的净仓位与持仓均价。
package inventory

import "market-maker-engine/market"

// Tracker 维护净仓位（正=多）与加权平均成本。非并发安全。
type Tracker struct {
	net   float64
	cost  float64
	fills int
}

// Apply 按成交方向调整仓位。
func (t *Tracker) Apply(side market.Side, qty, price float64) {
	if side == market.Buy {
		t.Update(qty, price)
		return
	}
	t.Update(-qty, price)
}

// Update 根据带符号的成交数量调整仓位。
// 加仓时按成交价加权，减仓时均价不变，穿越零轴后以成交价为新均价。
func (t *Tracker) Update(deltaQty float64, price float64) {
	t.fills++
	prev := t.net
	t.net += deltaQty
	switch {
	case t.net == 0:
		t.cost = 0
	case prev == 0 || (prev > 0) != (t.net > 0):
		t.cost = price
	case (prev > 0) == (deltaQty > 0):
		t.cost = (t.cost*prev + price*deltaQty) / t.net
	}
}

func (t *Tracker) NetExposure() float64 { return t.net }

func (t *Tracker) AvgCost() float64 { return t.cost }

// Fills 返回累计成交回报次数。
func (t *Tracker) Fills() int { return t.fills }
