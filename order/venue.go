package order

import "market-maker-engine/market"

// Venue 外部撮合场所：接受下单/撤单请求，成交通过账户回报异步返回。
// 调用在事件处理线程上同步进行。
type Venue interface {
	// PlaceMarketOrder 返回是否被受理。
	PlaceMarketOrder(side market.Side, inst market.Instrument, qty float64) bool
	// PlaceLimitOrder 返回订单号，0 表示被拒绝。
	PlaceLimitOrder(side market.Side, inst market.Instrument, qty, price float64, ioc bool) int64
	// CancelOrder 返回 (true,nil) 确认撤单，(false,nil) 被拒绝，err 非空表示结果未知。
	CancelOrder(inst market.Instrument, id int64) (bool, error)
	// Log 诊断输出，不保证送达。
	Log(text string)
}
