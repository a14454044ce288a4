package market

import "time"

// Trade 成交记录，Side 为主动方。
type Trade struct {
	Ts   time.Time
	Side Side
	Qty  float64
}

// TradeTape 按插入顺序保存回看窗口内的成交。
type TradeTape struct {
	lookback time.Duration
	trades   []Trade
}

func NewTradeTape(lookback time.Duration) *TradeTape {
	return &TradeTape{lookback: lookback}
}

// Append 追加成交并裁剪早于 ts-lookback 的记录。
func (t *TradeTape) Append(tr Trade) {
	t.trades = append(t.trades, tr)
	if t.lookback <= 0 {
		return
	}
	cutoff := tr.Ts.Add(-t.lookback)
	i := 0
	for i < len(t.trades) && t.trades[i].Ts.Before(cutoff) {
		i++
	}
	if i > 0 {
		t.trades = append(t.trades[:0], t.trades[i:]...)
	}
}

// Len 返回当前保存的成交数。
func (t *TradeTape) Len() int { return len(t.trades) }

// Each 从旧到新遍历，fn 返回 false 时停止。
func (t *TradeTape) Each(fn func(Trade) bool) {
	for _, tr := range t.trades {
		if !fn(tr) {
			return
		}
	}
}
