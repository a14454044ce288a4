package order

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"market-maker-engine/infrastructure/logger"
	"market-maker-engine/market"
	"market-maker-engine/metrics"
)

// NeedReplace 没有挂单（价格为 0）或 |resting-target| 超过 tick 的一半时需要替换。
func NeedReplace(resting, target, tick float64) bool {
	return resting == 0 || math.Abs(resting-target) > 0.5*tick
}

// Manager 维护各标的挂单句柄，并通过 Venue 下发下单/撤单请求。
// 非并发安全，由引擎在单线程内调用。
type Manager struct {
	venue   Venue
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewManager(venue Venue, lg *logger.Logger, m *metrics.Metrics) *Manager {
	if lg == nil {
		lg = logger.NewNop()
	}
	return &Manager{venue: venue, log: lg, metrics: m}
}

// Reconcile 比较目标价与当前挂单，必要时撤旧挂新。allowed=false 时只撤不挂。
func (m *Manager) Reconcile(inst market.Instrument, slots *Slots, side market.Side, target, size, tick float64, allowed bool) Action {
	cur := slots.Get(side)
	if !NeedReplace(cur.Price, target, tick) {
		return ActionKept
	}
	m.cancelSlot(inst, slots, side)
	if !allowed {
		return ActionBlocked
	}
	return m.place(inst, slots, side, target, size)
}

// Withdraw 撤掉某侧挂单且不重挂。
func (m *Manager) Withdraw(inst market.Instrument, slots *Slots, side market.Side) Action {
	m.cancelSlot(inst, slots, side)
	return ActionWithdrawn
}

// CancelAll 撤掉该标的全部挂单。
func (m *Manager) CancelAll(inst market.Instrument, slots *Slots) {
	for _, side := range []market.Side{market.Buy, market.Sell} {
		m.cancelSlot(inst, slots, side)
	}
}

// PlacePair 同时挂出买卖两侧，不做逐侧检查。
func (m *Manager) PlacePair(inst market.Instrument, slots *Slots, buyPrice, sellPrice, size float64) (buy, sell Action) {
	buy = m.place(inst, slots, market.Buy, buyPrice, size)
	sell = m.place(inst, slots, market.Sell, sellPrice, size)
	return buy, sell
}

// Cancel 发送撤单并归类结果；场所 panic 视为结果未知。
func (m *Manager) Cancel(inst market.Instrument, id int64) (res CancelResult) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Warn("cancel panicked",
				zap.String("instrument", inst.String()),
				zap.Int64("order_id", id),
				zap.Any("panic", r))
			res = CancelUnknown
		}
		m.metrics.Cancel(inst.String(), res.String())
	}()
	ok, err := m.venue.CancelOrder(inst, id)
	switch {
	case err != nil:
		m.log.Warn("cancel outcome unknown",
			zap.String("instrument", inst.String()),
			zap.Int64("order_id", id),
			zap.Error(err))
		return CancelUnknown
	case !ok:
		m.log.Debug("cancel rejected",
			zap.String("instrument", inst.String()),
			zap.Int64("order_id", id))
		return CancelRejected
	}
	return CancelConfirmed
}

// MarketOrder 发送市价单；场所 panic 视为失败。
func (m *Manager) MarketOrder(inst market.Instrument, side market.Side, qty float64, kind string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("market order panicked",
				zap.String("instrument", inst.String()),
				zap.String("side", side.String()),
				zap.Any("panic", r))
			ok = false
		}
		if ok {
			m.metrics.MarketOrder(inst.String(), side.String(), kind)
		}
	}()
	ok = m.venue.PlaceMarketOrder(side, inst, qty)
	if !ok {
		m.log.Warn("market order rejected",
			zap.String("instrument", inst.String()),
			zap.String("side", side.String()),
			zap.Float64("qty", qty),
			zap.String("kind", kind))
	}
	return ok
}

// Log 透传到场所日志。
func (m *Manager) Log(text string) {
	defer func() { _ = recover() }()
	m.venue.Log(text)
}

// cancelSlot 撤单后无论结果如何都清空本地句柄（乐观清除）。
func (m *Manager) cancelSlot(inst market.Instrument, slots *Slots, side market.Side) {
	h := slots.Get(side)
	if h.Empty() {
		return
	}
	res := m.Cancel(inst, h.ID)
	slots.Clear(side)
	m.log.LogOrder("cancel", inst.String(), side.String(), h.ID,
		zap.Float64("price", h.Price),
		zap.String("result", res.String()))
}

func (m *Manager) place(inst market.Instrument, slots *Slots, side market.Side, price, size float64) Action {
	id, err := m.placeLimit(inst, side, price, size)
	if err != nil || id == 0 {
		slots.Clear(side)
		m.metrics.OrderRejected(inst.String(), side.String())
		fields := []zap.Field{zap.Float64("price", price), zap.Float64("size", size)}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		m.log.LogOrder("rejected", inst.String(), side.String(), 0, fields...)
		return ActionRejected
	}
	slots.Set(side, Handle{ID: id, Price: price})
	m.metrics.OrderPlaced(inst.String(), side.String())
	m.log.LogOrder("placed", inst.String(), side.String(), id,
		zap.Float64("price", price),
		zap.Float64("size", size))
	return ActionPlaced
}

func (m *Manager) placeLimit(inst market.Instrument, side market.Side, price, size float64) (id int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			id, err = 0, fmt.Errorf("place limit order panicked: %v", r)
		}
	}()
	return m.venue.PlaceLimitOrder(side, inst, size, price, false), nil
}
