// Package engine 把行情、信号、报价策略、挂单管理与风控串成同步的事件处理器。
// 所有处理器在调用方线程上同步执行，不启动 goroutine，不加锁；调用方负责串行化。
package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"market-maker-engine/config"
	"market-maker-engine/infrastructure/logger"
	"market-maker-engine/market"
	"market-maker-engine/metrics"
	"market-maker-engine/order"
	"market-maker-engine/risk"
	"market-maker-engine/signal"
	"market-maker-engine/strategy"
)

// globalKey 全局限频作用域使用的限频键。
const globalKey = "*"

// Option 可选依赖。
type Option func(*Engine)

func WithLogger(l *logger.Logger) Option { return func(e *Engine) { e.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(e *Engine) { e.metrics = m } }

// WithClock 注入事件时间源，测试中使用假时钟。
func WithClock(c risk.Clock) Option { return func(e *Engine) { e.clock = c } }

// WithPolicy 覆盖按配置创建的报价策略。
func WithPolicy(p strategy.Policy) Option { return func(e *Engine) { e.policy = p } }

// Statistics 引擎统计信息
type Statistics struct {
	Trades      int64
	BookUpdates int64
	Fills       int64
	Cycles      int64 // 执行的报价周期（按标的计）
	Throttled   int64 // 落在限频间隔内的触发
	Skips       int64
	Scalps      int64
	Hedges      int64
	Ignored     int64 // 被标的过滤丢弃的事件
	Recovered   int64
	LastValue   float64
}

// Engine 决策引擎。
type Engine struct {
	cfg         config.AppConfig
	instruments []market.Instrument
	records     map[market.Instrument]*Record
	mode        market.BookMode
	signals     signal.Params

	policy   strategy.Policy
	orders   *order.Manager
	risk     *risk.Controller
	throttle *risk.Throttle
	clock    risk.Clock

	log     *logger.Logger
	metrics *metrics.Metrics
	stats   Statistics
}

// New 按配置为每个标的建立记录。
func New(cfg config.AppConfig, venue order.Venue, opts ...Option) (*Engine, error) {
	if venue == nil {
		return nil, errors.New("venue is required")
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	insts, err := cfg.InstrumentList()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		cfg:         cfg,
		instruments: insts,
		records:     make(map[market.Instrument]*Record, len(insts)),
		mode:        cfg.Mode(),
		signals:     cfg.Signals(),
		throttle:    risk.NewThrottle(cfg.MinRequoteInterval),
		clock:       risk.NowUTC,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.NewNop()
	}
	if e.policy == nil {
		if e.policy, err = strategy.New(cfg.Strategy()); err != nil {
			return nil, fmt.Errorf("create policy: %w", err)
		}
	}
	e.log = e.log.With(zap.String("policy", e.policy.Name()))
	for _, inst := range insts {
		e.records[inst] = newRecord(inst, cfg.State())
	}

	e.orders = order.NewManager(venue, e.log.Named("order"), e.metrics)
	if e.risk, err = risk.NewController(cfg.Risk(), e.orders, e.log.Named("risk"), e.metrics); err != nil {
		return nil, fmt.Errorf("create risk controller: %w", err)
	}

	names := make([]string, len(insts))
	for i, inst := range insts {
		names[i] = inst.String()
	}
	e.orders.Log(fmt.Sprintf("Market maker initialized - policy %s, trading %s",
		e.policy.Name(), strings.Join(names, ",")))
	e.log.Info("engine initialized",
		zap.Strings("instruments", names),
		zap.String("book_mode", e.mode.String()),
		zap.Duration("min_requote_interval", cfg.MinRequoteInterval),
		zap.String("requote_scope", cfg.RequoteScope),
		zap.Bool("requote_on_trade", cfg.TradeTriggersRequote()),
		zap.Float64("max_position", cfg.MaxPosition))
	return e, nil
}

// OnTradeUpdate 处理成交行情：写入成交带与价格环，按配置触发重报价。
func (e *Engine) OnTradeUpdate(inst market.Instrument, side market.Side, qty, price float64) {
	defer e.recoverHandler("trade")
	rec, ok := e.record(inst)
	if !ok {
		return
	}
	now := e.clock.Now()
	e.stats.Trades++
	rec.State.ApplyTrade(now, side, qty, price)
	if e.cfg.TradeTriggersRequote() {
		e.maybeRequote(inst, now)
	}
}

// OnOrderbookUpdate 处理盘口增量：qty==0 删除价位，然后尝试重报价。
func (e *Engine) OnOrderbookUpdate(inst market.Instrument, side market.Side, qty, price float64) {
	defer e.recoverHandler("orderbook")
	rec, ok := e.record(inst)
	if !ok {
		return
	}
	now := e.clock.Now()
	e.stats.BookUpdates++
	rec.State.ApplyBookDelta(side, qty, price)
	e.maybeRequote(inst, now)
}

// OnAccountUpdate 处理成交回报：更新仓位与现金，超限立即对冲，然后报告组合市值。
// 不受限频约束。
func (e *Engine) OnAccountUpdate(inst market.Instrument, side market.Side, price, qty, capital float64) {
	defer e.recoverHandler("account")
	rec, ok := e.record(inst)
	if !ok {
		return
	}
	e.stats.Fills++
	if hedged := e.risk.OnFill(inst, &rec.Position, side, qty, price, capital); hedged != 0 {
		e.stats.Hedges++
	}
	e.stats.LastValue = e.risk.Report(e.holdings())
}

// CancelAll 撤掉所有标的的挂单，用于退出前清理。
func (e *Engine) CancelAll() {
	defer e.recoverHandler("cancel_all")
	for _, inst := range e.instruments {
		slots := &e.records[inst].Slots
		if n := len(slots.Active()); n > 0 {
			e.log.Info("cancel all",
				zap.String("instrument", inst.String()),
				zap.Int("orders", n))
		}
		e.orders.CancelAll(inst, slots)
	}
}

// Record 返回标的记录；未配置的标的返回 false。
func (e *Engine) Record(inst market.Instrument) (*Record, bool) {
	rec, ok := e.records[inst]
	return rec, ok
}

func (e *Engine) Instruments() []market.Instrument { return e.instruments }

func (e *Engine) Policy() strategy.Policy { return e.policy }

func (e *Engine) Cash() float64 { return e.risk.Cash() }

// PortfolioValue 现金加各标的按估值价计算的持仓市值。
func (e *Engine) PortfolioValue() float64 { return e.risk.Value(e.holdings()) }

// Stats 返回统计信息副本。
func (e *Engine) Stats() Statistics { return e.stats }

func (e *Engine) record(inst market.Instrument) (*Record, bool) {
	rec, ok := e.records[inst]
	if !ok {
		e.stats.Ignored++
	}
	return rec, ok
}

// maybeRequote 按作用域限频：global 时所有标的共享一个键并全部重报价，
// instrument 时只处理事件所属标的。
func (e *Engine) maybeRequote(inst market.Instrument, now time.Time) {
	if e.cfg.RequoteScope == config.ScopeGlobal {
		if !e.throttle.Allow(globalKey, now) {
			e.throttled()
			return
		}
		for _, i := range e.instruments {
			e.quote(e.records[i], now)
		}
		return
	}
	if !e.throttle.Allow(inst.String(), now) {
		e.throttled()
		return
	}
	e.quote(e.records[inst], now)
}

func (e *Engine) throttled() {
	e.stats.Throttled++
	e.metrics.Throttled()
}

// quote 单个标的的一个报价周期：信号 -> 策略 -> 挂单管理。
func (e *Engine) quote(rec *Record, now time.Time) {
	inst := rec.Instrument
	book, valid := rec.State.Best(e.mode)
	pos := rec.Position.NetExposure()
	ctx := strategy.Context{
		Instrument:  inst,
		Book:        book,
		Valid:       valid,
		Signals:     signal.Compute(rec.State, now, e.signals),
		Position:    pos,
		MaxPosition: e.risk.MaxPosition(),
		Cash:        e.risk.Cash(),
	}
	d := e.policy.Quote(ctx)
	e.stats.Cycles++
	e.metrics.QuoteCycle(inst.String(), e.policy.Name())

	if d.Skip {
		e.skip(inst, d.Reason)
		return
	}
	if d.CancelAll {
		e.orders.CancelAll(inst, &rec.Slots)
	}

	e.log.Debug("quote decision",
		zap.String("instrument", inst.String()),
		zap.String("reason", d.Reason),
		zap.Float64("bid", book.Bid),
		zap.Float64("ask", book.Ask),
		zap.Int("bid_levels", rec.State.Book.Depth(market.Buy)),
		zap.Int("ask_levels", rec.State.Book.Depth(market.Sell)),
		zap.Int("tape_trades", rec.State.Tape.Len()),
		zap.Float64("book_imbalance", ctx.Signals.BookImbalance),
		zap.Float64("flow_imbalance", ctx.Signals.FlowImbalance),
		zap.Float64("momentum", ctx.Signals.Momentum),
		zap.Float64("position", pos),
		zap.Float64("buy", d.Buy.Price),
		zap.Float64("sell", d.Sell.Price))

	if d.Paired {
		if d.WithdrawAll() {
			e.skip(inst, d.Reason)
			return
		}
		e.orders.PlacePair(inst, &rec.Slots, d.Buy.Price, d.Sell.Price, d.Buy.Size)
		return
	}
	if d.WithdrawAll() && d.CancelAll {
		e.skip(inst, d.Reason)
		return
	}

	e.reconcile(rec, market.Buy, d.Buy, d.Tick, e.risk.CanBuy(pos, d.Buy.Price, d.Buy.Size))
	e.reconcile(rec, market.Sell, d.Sell, d.Tick, e.risk.CanSell(pos))

	if d.Scalp != nil && d.Scalp.Qty > 0 {
		if e.orders.MarketOrder(inst, d.Scalp.Side, d.Scalp.Qty, "scalp") {
			e.stats.Scalps++
		}
	}
}

func (e *Engine) reconcile(rec *Record, side market.Side, q strategy.SideQuote, tick float64, allowed bool) {
	if q.Withdraw {
		e.orders.Withdraw(rec.Instrument, &rec.Slots, side)
		return
	}
	e.orders.Reconcile(rec.Instrument, &rec.Slots, side, q.Price, q.Size, tick, allowed)
}

func (e *Engine) skip(inst market.Instrument, reason string) {
	e.stats.Skips++
	e.metrics.QuoteSkip(inst.String(), reason)
}

func (e *Engine) holdings() []risk.Holding {
	out := make([]risk.Holding, 0, len(e.instruments))
	for _, inst := range e.instruments {
		rec := e.records[inst]
		out = append(out, risk.Holding{
			Instrument: inst,
			Position:   &rec.Position,
			Mark:       rec.State.Mark(e.mode),
		})
	}
	return out
}

// recoverHandler 捕获处理器内的 panic，记录后吞掉，不向调用方传播。
func (e *Engine) recoverHandler(handler string) {
	if r := recover(); r != nil {
		e.stats.Recovered++
		e.metrics.HandlerRecovered(handler)
		e.log.Error("handler panicked",
			zap.String("handler", handler),
			zap.Any("panic", r),
			zap.Stack("stack"))
	}
}
