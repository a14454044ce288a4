// Package strategy 将信号与库存映射为目标报价。
package strategy

import (
	"github.com/shopspring/decimal"

	"market-maker-engine/market"
	"market-maker-engine/signal"
)

// Context 一个报价周期的输入。
type Context struct {
	Instrument  market.Instrument
	Book        market.Quote // 最优买卖价
	Valid       bool         // 盘口双边存在且未交叉
	Signals     signal.Snapshot
	Position    float64 // 当前净仓位，正=多
	MaxPosition float64
	Cash        float64
}

// SideQuote 单侧的目标报价。Withdraw=true 表示撤掉该侧且不重挂。
type SideQuote struct {
	Price    float64
	Size     float64
	Withdraw bool
}

// Scalp 独立于挂单的一次性市价单。
type Scalp struct {
	Side market.Side
	Qty  float64
}

// Decision 报价策略的输出。
type Decision struct {
	// Skip 表示盘口无效，本周期不做任何动作（保留现有挂单）。
	Skip bool
	// CancelAll 表示在决策前无条件撤掉该标的全部活跃挂单。
	CancelAll bool
	// Paired 为 true 时两侧一起下单，不做逐侧的仓位/资金检查。
	Paired bool
	Buy    SideQuote
	Sell   SideQuote
	// Tick 重挂判定基准：|resting-target| > Tick/2 时替换。
	Tick   float64
	Scalp  *Scalp
	Reason string
}

// WithdrawAll 两侧都撤单。
func (d Decision) WithdrawAll() bool {
	return d.Buy.Withdraw && d.Sell.Withdraw
}

// Policy 报价策略接口，两种实现可按配置互换。
type Policy interface {
	Name() string
	Quote(ctx Context) Decision
}

func skip(reason string) Decision {
	return Decision{Skip: true, Reason: reason}
}

func withdrawAll(reason string, cancelAll bool) Decision {
	return Decision{
		CancelAll: cancelAll,
		Buy:       SideQuote{Withdraw: true},
		Sell:      SideQuote{Withdraw: true},
		Reason:    reason,
	}
}

// roundPrice 按小数位四舍五入；precision<0 时不处理。
func roundPrice(price float64, precision int) float64 {
	if precision < 0 {
		return price
	}
	return decimal.NewFromFloat(price).Round(int32(precision)).InexactFloat64()
}
