package inventory

// Valuation 基于估值价计算持仓市值与未实现盈亏。
func (t *Tracker) Valuation(mark float64) (value float64, pnl float64) {
	value = t.net * mark
	pnl = (mark - t.cost) * t.net
	return
}
