package config

import (
	"time"

	"market-maker-engine/market"
	"market-maker-engine/risk"
	"market-maker-engine/signal"
	"market-maker-engine/strategy"
)

// InstrumentList 解析 instruments 配置，保持配置顺序并去重。
func (c AppConfig) InstrumentList() ([]market.Instrument, error) {
	seen := make(map[market.Instrument]bool, len(c.Instruments))
	out := make([]market.Instrument, 0, len(c.Instruments))
	for _, s := range c.Instruments {
		inst, err := market.ParseInstrument(s)
		if err != nil {
			return nil, err
		}
		if seen[inst] {
			continue
		}
		seen[inst] = true
		out = append(out, inst)
	}
	return out, nil
}

func (c AppConfig) Mode() market.BookMode {
	mode, _ := market.ParseBookMode(c.BookMode)
	return mode
}

func (c AppConfig) State() market.StateConfig {
	return market.StateConfig{
		TradeLookback: seconds(c.TradeLookbackSeconds),
		PriceHistory:  c.PriceHistory,
	}
}

func (c AppConfig) Signals() signal.Params {
	return signal.Params{
		Mode:        c.Mode(),
		FlowWindow:  seconds(c.FlowWindowSeconds),
		ShortWindow: c.ShortWindow,
		LongWindow:  c.LongWindow,
	}
}

func (c AppConfig) Strategy() strategy.Config {
	return strategy.Config{
		Kind: c.Policy,
		Skew: strategy.SkewConfig{
			MinTick:           c.MinTick,
			SpreadFactor:      c.SpreadFactor,
			MinSpreadFraction: c.MinSpreadFraction,
			MomentumThreshold: c.MomentumThreshold,
			OrderSize:         c.OrderSize,
			ScalpSize:         c.ScalpSize,
			Precision:         c.PricePrecision,
		},
		Imbalance: strategy.ImbalanceConfig{
			BookThreshold: c.BookImbalanceThreshold,
			FlowLo:        c.FlowBandLo,
			FlowHi:        c.FlowBandHi,
			MidShift:      c.MidShiftFraction,
			OrderSize:     c.OrderSize,
			Precision:     c.PricePrecision,
		},
	}
}

func (c AppConfig) Risk() risk.Config {
	return risk.Config{MaxPosition: c.MaxPosition, InitialCash: c.InitialCash}
}

// TradeTriggersRequote 成交事件是否触发重报价。
func (c AppConfig) TradeTriggersRequote() bool {
	return c.RequoteOnTrade != nil && *c.RequoteOnTrade
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
