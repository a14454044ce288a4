package sim

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"market-maker-engine/infrastructure/logger"
	"market-maker-engine/market"
	"market-maker-engine/risk"
)

// Handler 引擎的三个入站处理器。
type Handler interface {
	OnTradeUpdate(inst market.Instrument, side market.Side, qty, price float64)
	OnOrderbookUpdate(inst market.Instrument, side market.Side, qty, price float64)
	OnAccountUpdate(inst market.Instrument, side market.Side, price, qty, capital float64)
}

// RunnerConfig 随机游走行情的参数。
type RunnerConfig struct {
	Instruments []market.Instrument
	StartMid    map[market.Instrument]float64 // 缺省 100
	Volatility  float64                       // 每步 mid 的相对波动
	Spread      float64                       // 相对价差
	TradeProb   float64                       // 每步产生成交的概率
	MaxQty      float64                       // 挂单量/成交量上限
	EventGap    time.Duration                 // 相邻两个行情事件之间的模拟时间
	InitialCash float64

	// MaxSettleRounds 单步内结算市价单的最大轮数（对冲单可能再触发对冲）。
	MaxSettleRounds int
}

func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Instruments:     market.Instruments(),
		Volatility:      0.001,
		Spread:          0.0004,
		TradeProb:       0.6,
		MaxQty:          5,
		EventGap:        100 * time.Millisecond,
		InitialCash:     100000,
		MaxSettleRounds: 4,
	}
}

// Result 一次运行的统计。
type Result struct {
	Steps       int
	BookUpdates int
	Trades      int
	LimitFills  int
	MarketFills int
	Resting     int // 仍挂在场所的限价单
	Cash        float64
	Positions   map[market.Instrument]float64
}

type touch struct {
	bid, ask float64
}

// Runner 驱动引擎：每步生成盘口增量与成交，撮合纸面挂单并回报成交。
type Runner struct {
	cfg   RunnerConfig
	venue *Venue
	rng   *rand.Rand
	log   *logger.Logger
	now   time.Time
	mids  map[market.Instrument]float64
	tops  map[market.Instrument]touch
	cash  float64
	pos   map[market.Instrument]float64
	res   Result
}

func NewRunner(cfg RunnerConfig, venue *Venue, rng *rand.Rand, lg *logger.Logger) (*Runner, error) {
	if venue == nil {
		return nil, errors.New("venue is required")
	}
	if len(cfg.Instruments) == 0 {
		return nil, errors.New("no instruments")
	}
	if cfg.EventGap <= 0 {
		cfg.EventGap = 100 * time.Millisecond
	}
	if cfg.MaxQty <= 0 {
		cfg.MaxQty = 1
	}
	if cfg.MaxSettleRounds <= 0 {
		cfg.MaxSettleRounds = 1
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if lg == nil {
		lg = logger.NewNop()
	}
	r := &Runner{
		cfg:   cfg,
		venue: venue,
		rng:   rng,
		log:   lg,
		now:   time.Unix(1700000000, 0).UTC(),
		mids:  make(map[market.Instrument]float64),
		tops:  make(map[market.Instrument]touch),
		cash:  cfg.InitialCash,
		pos:   make(map[market.Instrument]float64),
	}
	for _, inst := range cfg.Instruments {
		mid := cfg.StartMid[inst]
		if mid <= 0 {
			mid = 100
		}
		r.mids[inst] = mid
	}
	return r, nil
}

// Clock 模拟时钟，供引擎限频与成交窗口使用。
func (r *Runner) Clock() risk.Clock {
	return risk.ClockFunc(func() time.Time { return r.now })
}

// Result 返回当前统计快照。
func (r *Runner) Result() Result { return r.result() }

// Cash 场所侧记录的剩余资金。
func (r *Runner) Cash() float64 { return r.cash }

// Run 执行 steps 步，ctx 取消时提前返回。
func (r *Runner) Run(ctx context.Context, h Handler, steps int) (Result, error) {
	if h == nil {
		return r.result(), errors.New("handler is required")
	}
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return r.result(), err
		}
		r.Step(h)
	}
	return r.result(), nil
}

// Step 推进一步：所有标的先更新盘口，再按概率打印成交。
// 每个行情事件前模拟时钟前进 EventGap。
func (r *Runner) Step(h Handler) {
	r.res.Steps++
	for _, inst := range r.cfg.Instruments {
		r.moveBook(h, inst)
		r.settleMarketOrders(h)
	}
	for _, inst := range r.cfg.Instruments {
		if r.rng.Float64() >= r.cfg.TradeProb {
			continue
		}
		r.printTrade(h, inst)
		r.settleMarketOrders(h)
	}
}

func (r *Runner) moveBook(h Handler, inst market.Instrument) {
	mid := r.mids[inst] * (1 + r.rng.NormFloat64()*r.cfg.Volatility)
	if mid <= 0 {
		mid = r.mids[inst]
	}
	r.mids[inst] = mid
	half := mid * r.cfg.Spread / 2
	next := touch{bid: round2(mid - half), ask: round2(mid + half)}
	if next.ask <= next.bid {
		next.ask = next.bid + 0.01
	}
	prev, seen := r.tops[inst]
	r.tops[inst] = next

	// 先删旧价位再挂新价位：轻量盘口会被删除事件覆盖，新价位必须最后到达
	if seen && prev.bid != next.bid {
		r.emitBook(h, inst, market.Buy, 0, prev.bid)
	}
	r.emitBook(h, inst, market.Buy, r.qty(), next.bid)
	if seen && prev.ask != next.ask {
		r.emitBook(h, inst, market.Sell, 0, prev.ask)
	}
	r.emitBook(h, inst, market.Sell, r.qty(), next.ask)
}

func (r *Runner) emitBook(h Handler, inst market.Instrument, side market.Side, qty, price float64) {
	r.now = r.now.Add(r.cfg.EventGap)
	r.res.BookUpdates++
	h.OnOrderbookUpdate(inst, side, qty, price)
}

// printTrade 主动方以对手价成交，同时撮合被穿越的纸面挂单。
func (r *Runner) printTrade(h Handler, inst market.Instrument) {
	t := r.tops[inst]
	side := market.Buy
	price := t.ask
	if r.rng.Intn(2) == 1 {
		side, price = market.Sell, t.bid
	}
	// 偶尔打穿一档，便于撮合到引擎挂单
	if r.rng.Float64() < 0.3 {
		if side == market.Buy {
			price = round2(price + (t.ask - t.bid))
		} else {
			price = round2(price - (t.ask - t.bid))
		}
	}
	qty := r.qty()
	r.now = r.now.Add(r.cfg.EventGap)
	r.res.Trades++
	h.OnTradeUpdate(inst, side, qty, price)

	for _, f := range r.venue.Match(inst, side, qty, price) {
		r.res.LimitFills++
		r.report(h, f)
	}
}

// settleMarketOrders 在当前盘口结算排队的市价单；对冲单可能继续产生市价单，轮数有上限。
func (r *Runner) settleMarketOrders(h Handler) {
	for round := 0; round < r.cfg.MaxSettleRounds; round++ {
		orders := r.venue.DrainMarketOrders()
		if len(orders) == 0 {
			return
		}
		for _, o := range orders {
			t, ok := r.tops[o.Instrument]
			if !ok {
				r.log.Warn("market order without book, dropped",
					zap.String("instrument", o.Instrument.String()),
					zap.Int64("order_id", o.ID))
				continue
			}
			price := t.ask
			if o.Side == market.Sell {
				price = t.bid
			}
			r.res.MarketFills++
			r.report(h, Fill{OrderID: o.ID, Instrument: o.Instrument, Side: o.Side, Qty: o.Qty, Price: price})
		}
	}
}

func (r *Runner) report(h Handler, f Fill) {
	if f.Side == market.Buy {
		r.cash -= f.Price * f.Qty
		r.pos[f.Instrument] += f.Qty
	} else {
		r.cash += f.Price * f.Qty
		r.pos[f.Instrument] -= f.Qty
	}
	r.log.Debug("fill",
		zap.Int64("order_id", f.OrderID),
		zap.String("instrument", f.Instrument.String()),
		zap.String("side", f.Side.String()),
		zap.Float64("qty", f.Qty),
		zap.Float64("price", f.Price),
		zap.Float64("cash", r.cash))
	h.OnAccountUpdate(f.Instrument, f.Side, f.Price, f.Qty, r.cash)
}

func (r *Runner) qty() float64 {
	return math.Max(1, math.Ceil(r.rng.Float64()*r.cfg.MaxQty))
}

func (r *Runner) result() Result {
	res := r.res
	res.Cash = r.cash
	for _, inst := range r.cfg.Instruments {
		res.Resting += len(r.venue.Resting(inst))
	}
	res.Positions = make(map[market.Instrument]float64, len(r.pos))
	for k, v := range r.pos {
		res.Positions[k] = v
	}
	return res
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
