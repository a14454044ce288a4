package order

import "market-maker-engine/market"

// Handle 一笔挂单：订单号与挂单价。ID 为 0 表示该侧没有挂单。
type Handle struct {
	ID    int64
	Price float64
}

// Empty 是否为空槽。
func (h Handle) Empty() bool { return h.ID == 0 }

// Slots 单个标的每侧最多一笔挂单。
type Slots struct {
	buy  Handle
	sell Handle
}

// Get 返回某侧当前挂单。
func (s *Slots) Get(side market.Side) Handle {
	if side == market.Buy {
		return s.buy
	}
	return s.sell
}

// Set 记录某侧挂单。
func (s *Slots) Set(side market.Side, h Handle) {
	if side == market.Buy {
		s.buy = h
		return
	}
	s.sell = h
}

// Clear 清空某侧。
func (s *Slots) Clear(side market.Side) {
	s.Set(side, Handle{})
}

// Active 返回全部非空挂单（至多两笔），买单在前。
func (s *Slots) Active() []Handle {
	out := make([]Handle, 0, 2)
	if !s.buy.Empty() {
		out = append(out, s.buy)
	}
	if !s.sell.Empty() {
		out = append(out, s.sell)
	}
	return out
}

// CancelResult 撤单结果。
type CancelResult int

const (
	// CancelConfirmed 场所确认撤单。
	CancelConfirmed CancelResult = iota
	// CancelUnknown 场所报错或异常，结果不明；按已撤处理。
	CancelUnknown
	// CancelRejected 场所拒绝撤单（可能已成交或不存在）。
	CancelRejected
)

func (r CancelResult) String() string {
	switch r {
	case CancelConfirmed:
		return "confirmed"
	case CancelUnknown:
		return "unknown"
	case CancelRejected:
		return "rejected"
	default:
		return "invalid"
	}
}

// Action 单侧调整的结果，用于日志与测试。
type Action int

const (
	// ActionKept 价差未超过阈值，保留原挂单。
	ActionKept Action = iota
	// ActionPlaced 撤旧（如有）并挂出新单。
	ActionPlaced
	// ActionRejected 新单被场所拒绝，该侧无挂单。
	ActionRejected
	// ActionBlocked 风控不允许挂单，该侧无挂单。
	ActionBlocked
	// ActionWithdrawn 撤单且不重挂。
	ActionWithdrawn
)

func (a Action) String() string {
	switch a {
	case ActionKept:
		return "kept"
	case ActionPlaced:
		return "placed"
	case ActionRejected:
		return "rejected"
	case ActionBlocked:
		return "blocked"
	case ActionWithdrawn:
		return "withdrawn"
	default:
		return "invalid"
	}
}
