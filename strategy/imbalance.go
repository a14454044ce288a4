package strategy

// ImbalanceConfig 失衡条件下的方向性报价参数。
type ImbalanceConfig struct {
	BookThreshold float64 // 看多阈值，看空阈值为其倒数
	FlowLo        float64
	FlowHi        float64
	MidShift      float64 // mid 偏移 = MidShift * spread
	OrderSize     float64
	Precision     int
}

// ImbalancePolicy 只在成交流中性、盘口明显失衡时报价；每个周期先撤掉全部挂单。
type ImbalancePolicy struct {
	cfg ImbalanceConfig
}

func NewImbalancePolicy(cfg ImbalanceConfig) *ImbalancePolicy {
	return &ImbalancePolicy{cfg: cfg}
}

func (p *ImbalancePolicy) Name() string { return KindImbalance }

func (p *ImbalancePolicy) Quote(ctx Context) Decision {
	if !ctx.Valid {
		return skip("no valid market")
	}

	flow := ctx.Signals.FlowImbalance
	if flow < p.cfg.FlowLo || flow > p.cfg.FlowHi {
		// 成交流有方向，回避逆向选择
		return withdrawAll("flow not neutral", true)
	}

	mid := ctx.Book.Mid()
	spread := ctx.Book.Spread()
	half := spread / 2

	book := ctx.Signals.BookImbalance
	var shifted float64
	var reason string
	switch {
	case book > p.cfg.BookThreshold:
		shifted = mid + p.cfg.MidShift*spread
		reason = "bullish book"
	case book < 1/p.cfg.BookThreshold:
		shifted = mid - p.cfg.MidShift*spread
		reason = "bearish book"
	default:
		return withdrawAll("book balanced", true)
	}

	return Decision{
		CancelAll: true,
		Paired:    true,
		Tick:      half,
		Buy:       SideQuote{Price: roundPrice(shifted-half, p.cfg.Precision), Size: p.cfg.OrderSize},
		Sell:      SideQuote{Price: roundPrice(shifted+half, p.cfg.Precision), Size: p.cfg.OrderSize},
		Reason:    reason,
	}
}
