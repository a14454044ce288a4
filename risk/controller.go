package risk

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"market-maker-engine/infrastructure/logger"
	"market-maker-engine/inventory"
	"market-maker-engine/market"
	"market-maker-engine/metrics"
)

var ErrInvalidMaxPosition = errors.New("max position must be positive")

// Hedger 下发超限对冲的市价单并输出场所日志，由 order.Manager 实现。
type Hedger interface {
	MarketOrder(inst market.Instrument, side market.Side, qty float64, kind string) bool
	Log(text string)
}

// Config 风控参数。
type Config struct {
	MaxPosition float64 // 单标的绝对仓位上限
	InitialCash float64
}

// Holding 估值时使用的单标的持仓与估值价。
type Holding struct {
	Instrument market.Instrument
	Position   *inventory.Tracker
	Mark       float64
}

// Controller 维护现金、执行仓位硬上限并计算组合市值。
// 非并发安全。
type Controller struct {
	cfg     Config
	cash    float64
	hedger  Hedger
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewController(cfg Config, hedger Hedger, lg *logger.Logger, m *metrics.Metrics) (*Controller, error) {
	if cfg.MaxPosition <= 0 {
		return nil, ErrInvalidMaxPosition
	}
	if hedger == nil {
		return nil, fmt.Errorf("risk controller: hedger is nil")
	}
	if lg == nil {
		lg = logger.NewNop()
	}
	return &Controller{
		cfg:     cfg,
		cash:    cfg.InitialCash,
		hedger:  hedger,
		log:     lg,
		metrics: m,
	}, nil
}

func (c *Controller) Cash() float64 { return c.cash }

func (c *Controller) MaxPosition() float64 { return c.cfg.MaxPosition }

// OnFill 处理成交回报：调整仓位、以场所回报的剩余资金覆盖现金，然后执行上限检查。
// 返回对冲市价单的带符号数量（卖为负），未触发时为 0。
func (c *Controller) OnFill(inst market.Instrument, tr *inventory.Tracker, side market.Side, qty, price, capital float64) float64 {
	tr.Apply(side, qty, price)
	c.cash = capital
	c.metrics.SetPosition(inst.String(), tr.NetExposure())
	c.log.Debug("fill applied",
		zap.String("instrument", inst.String()),
		zap.String("side", side.String()),
		zap.Float64("qty", qty),
		zap.Float64("price", price),
		zap.Float64("position", tr.NetExposure()),
		zap.Float64("avg_cost", tr.AvgCost()),
		zap.Int("fills", tr.Fills()),
		zap.Float64("cash", capital))
	return c.Enforce(inst, tr.NetExposure())
}

// Enforce 仓位超出 ±MaxPosition 时立即以市价单对冲超出部分。
// 不经过限频与报价策略；失败只记日志，不重试。
// 本地仓位不做修改，等待对冲单的成交回报。
func (c *Controller) Enforce(inst market.Instrument, pos float64) float64 {
	var (
		side   market.Side
		excess float64
	)
	switch {
	case pos > c.cfg.MaxPosition:
		side, excess = market.Sell, pos-c.cfg.MaxPosition
	case pos < -c.cfg.MaxPosition:
		side, excess = market.Buy, -c.cfg.MaxPosition-pos
	default:
		return 0
	}
	ok := c.hedger.MarketOrder(inst, side, excess, "hedge")
	fields := []zap.Field{
		zap.String("side", side.String()),
		zap.Float64("position", pos),
		zap.Float64("excess", excess),
		zap.Bool("accepted", ok),
	}
	if !ok {
		c.log.Error("position cap hedge failed", append(fields, zap.String("instrument", inst.String()))...)
	} else {
		c.log.LogRisk("cap_hedge", inst.String(), fields...)
	}
	if side == market.Sell {
		return -excess
	}
	return excess
}

// CanBuy 仓位未达上限且现金足以覆盖本次买单。
func (c *Controller) CanBuy(pos, price, size float64) bool {
	return pos < c.cfg.MaxPosition && c.cash > price*size
}

// CanSell 空头仓位未达上限。
func (c *Controller) CanSell(pos float64) bool {
	return pos > -c.cfg.MaxPosition
}

// Value 组合市值 = 现金 + Σ 仓位 × 估值价。
func (c *Controller) Value(holdings []Holding) float64 {
	total := c.cash
	for _, h := range holdings {
		if h.Position == nil {
			continue
		}
		value, _ := h.Position.Valuation(h.Mark)
		total += value
	}
	return total
}

// Report 计算组合市值并输出到场所日志、zap 与指标，同时逐标的上报未实现盈亏。
func (c *Controller) Report(holdings []Holding) float64 {
	total := c.Value(holdings)
	c.hedger.Log(fmt.Sprintf("Portfolio Value: %.2f", total))
	for _, h := range holdings {
		if h.Position == nil {
			continue
		}
		_, pnl := h.Position.Valuation(h.Mark)
		c.metrics.SetUnrealizedPnL(h.Instrument.String(), pnl)
		if h.Position.NetExposure() == 0 {
			continue
		}
		c.log.Debug("holding",
			zap.String("instrument", h.Instrument.String()),
			zap.Float64("position", h.Position.NetExposure()),
			zap.Float64("avg_cost", h.Position.AvgCost()),
			zap.Float64("mark", h.Mark),
			zap.Float64("unrealized_pnl", pnl))
	}
	c.log.Info("portfolio value",
		zap.Float64("value", total),
		zap.Float64("cash", c.cash))
	c.metrics.SetPortfolioValue(total)
	return total
}
