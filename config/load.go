package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"market-maker-engine/infrastructure/logger"
	"market-maker-engine/market"
	"market-maker-engine/metrics"
	"market-maker-engine/strategy"
)

// 重报价限频作用域。
const (
	ScopeGlobal     = "global"     // 所有标的共享一个限频键，触发时全部重报价
	ScopeInstrument = "instrument" // 每个标的独立限频，只重报价事件所属标的
)

// AppConfig holds the engine runtime configuration.
type AppConfig struct {
	Policy      string   `yaml:"policy"`
	Instruments []string `yaml:"instruments"`

	MaxPosition float64 `yaml:"max_position"`
	InitialCash float64 `yaml:"initial_cash"`

	// skew 策略
	MinTick           float64 `yaml:"min_tick"`
	SpreadFactor      float64 `yaml:"spread_factor"`
	MinSpreadFraction float64 `yaml:"min_spread_fraction"`
	MomentumThreshold float64 `yaml:"momentum_threshold"`
	ScalpSize         float64 `yaml:"scalp_size"`

	// imbalance 策略
	BookImbalanceThreshold float64 `yaml:"book_imbalance_threshold"`
	FlowBandLo             float64 `yaml:"flow_band_lo"`
	FlowBandHi             float64 `yaml:"flow_band_hi"`
	MidShiftFraction       float64 `yaml:"mid_shift_fraction"`

	// 信号与行情。flow_window_seconds 为 0 时成交流失衡统计整个 trade_lookback_seconds 窗口。
	ShortWindow          int     `yaml:"short_window"`
	LongWindow           int     `yaml:"long_window"`
	PriceHistory         int     `yaml:"price_history"`
	TradeLookbackSeconds float64 `yaml:"trade_lookback_seconds"`
	FlowWindowSeconds    float64 `yaml:"flow_window_seconds"`
	BookMode             string  `yaml:"book_mode"`

	// 报价与限频
	OrderSize          float64       `yaml:"order_size"`
	PricePrecision     int           `yaml:"price_precision"` // <0 不取整
	MinRequoteInterval time.Duration `yaml:"min_requote_interval"`
	RequoteScope       string        `yaml:"requote_scope"`
	RequoteOnTrade     *bool         `yaml:"requote_on_trade"`

	Log     logger.Config  `yaml:"log"`
	Metrics metrics.Config `yaml:"metrics"`
}

// Default 返回与策略无关的默认值；依赖策略的字段留空，由 ApplyPolicyDefaults 补齐。
func Default() AppConfig {
	return AppConfig{
		Policy:                 strategy.KindSkew,
		MaxPosition:            250,
		InitialCash:            100000,
		MinTick:                0.0001,
		SpreadFactor:           0.25,
		MinSpreadFraction:      0.0002,
		MomentumThreshold:      0.0025,
		ScalpSize:              1,
		BookImbalanceThreshold: 1.5,
		FlowBandLo:             0.95,
		FlowBandHi:             1.05,
		MidShiftFraction:       0.25,
		ShortWindow:            3,
		LongWindow:             12,
		PriceHistory:           32,
		TradeLookbackSeconds:   60,
		FlowWindowSeconds:      10,
		PricePrecision:         8,
		Log:                    logger.DefaultConfig(),
		Metrics:                metrics.DefaultConfig(),
	}
}

// ApplyPolicyDefaults 按策略补齐未显式配置的字段。
func ApplyPolicyDefaults(cfg *AppConfig) {
	imbalance := cfg.Policy == strategy.KindImbalance
	if len(cfg.Instruments) == 0 {
		if imbalance {
			cfg.Instruments = []string{market.LTC.String()}
		} else {
			for _, inst := range market.Instruments() {
				cfg.Instruments = append(cfg.Instruments, inst.String())
			}
		}
	}
	if cfg.OrderSize == 0 {
		cfg.OrderSize = 2
		if imbalance {
			cfg.OrderSize = 100
		}
	}
	if cfg.MinRequoteInterval == 0 {
		cfg.MinRequoteInterval = time.Millisecond
		if imbalance {
			cfg.MinRequoteInterval = 50 * time.Millisecond
		}
	}
	if cfg.RequoteScope == "" {
		cfg.RequoteScope = ScopeGlobal
		if imbalance {
			cfg.RequoteScope = ScopeInstrument
		}
	}
	if cfg.RequoteOnTrade == nil {
		v := !imbalance
		cfg.RequoteOnTrade = &v
	}
	if cfg.BookMode == "" {
		cfg.BookMode = market.ModeTop.String()
		if imbalance {
			cfg.BookMode = market.ModeDepth.String()
		}
	}
}

// Parse decodes YAML on top of defaults and validates the result.
func Parse(raw []byte) (AppConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	ApplyPolicyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// LoadWithEnvOverrides loads config then overrides fields from env vars if present.
// MM_POLICY 切换策略时，依赖策略的默认值按新策略重新推导（显式配置的值保留）。
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if v := os.Getenv("MM_POLICY"); v != "" {
		cfg.Policy = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("MM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	ApplyPolicyDefaults(&cfg)
	return cfg, Validate(cfg)
}

// Validate ensures required fields are present.
func Validate(cfg AppConfig) error {
	if cfg.Policy != strategy.KindSkew && cfg.Policy != strategy.KindImbalance {
		return fmt.Errorf("policy must be %q or %q, got %q", strategy.KindSkew, strategy.KindImbalance, cfg.Policy)
	}
	if len(cfg.Instruments) == 0 {
		return errors.New("instruments is required")
	}
	for _, s := range cfg.Instruments {
		if _, err := market.ParseInstrument(s); err != nil {
			return fmt.Errorf("instruments: %w", err)
		}
	}
	if cfg.MaxPosition <= 0 {
		return errors.New("max_position must be > 0")
	}
	if cfg.OrderSize <= 0 {
		return errors.New("order_size must be > 0")
	}
	if cfg.MinRequoteInterval < 0 {
		return errors.New("min_requote_interval must be >= 0")
	}
	if cfg.RequoteScope != ScopeGlobal && cfg.RequoteScope != ScopeInstrument {
		return fmt.Errorf("requote_scope must be %q or %q", ScopeGlobal, ScopeInstrument)
	}
	if _, ok := market.ParseBookMode(cfg.BookMode); !ok {
		return fmt.Errorf("book_mode %q is invalid", cfg.BookMode)
	}
	if cfg.PriceHistory <= 0 {
		return errors.New("price_history must be > 0")
	}
	if cfg.ShortWindow <= 0 || cfg.LongWindow <= 0 {
		return errors.New("short_window/long_window must be > 0")
	}
	if cfg.ShortWindow >= cfg.LongWindow {
		return errors.New("short_window must be < long_window")
	}
	if cfg.LongWindow > cfg.PriceHistory {
		return errors.New("long_window must be <= price_history")
	}
	if cfg.TradeLookbackSeconds < 0 || cfg.FlowWindowSeconds < 0 {
		return errors.New("trade_lookback_seconds/flow_window_seconds must be >= 0")
	}
	switch cfg.Policy {
	case strategy.KindSkew:
		if cfg.SpreadFactor <= 0 {
			return errors.New("spread_factor must be > 0")
		}
		if cfg.MinTick < 0 || cfg.MinSpreadFraction < 0 || cfg.MomentumThreshold < 0 {
			return errors.New("min_tick/min_spread_fraction/momentum_threshold must be >= 0")
		}
		if cfg.ScalpSize < 0 {
			return errors.New("scalp_size must be >= 0")
		}
	case strategy.KindImbalance:
		if cfg.BookImbalanceThreshold <= 0 {
			return errors.New("book_imbalance_threshold must be > 0")
		}
		if cfg.FlowBandLo > cfg.FlowBandHi {
			return errors.New("flow_band_lo must be <= flow_band_hi")
		}
	}
	return nil
}
