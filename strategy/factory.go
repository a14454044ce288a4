package strategy

import (
	"errors"
	"fmt"
)

// 策略类型。
const (
	KindSkew      = "skew"
	KindImbalance = "imbalance"
)

// Config 两种策略的参数合集，由 Kind 选择实现。
type Config struct {
	Kind      string
	Skew      SkewConfig
	Imbalance ImbalanceConfig
}

var ErrUnknownPolicy = errors.New("unknown policy")

// New 根据配置创建报价策略。
func New(cfg Config) (Policy, error) {
	switch cfg.Kind {
	case KindSkew:
		if cfg.Skew.SpreadFactor <= 0 || cfg.Skew.OrderSize <= 0 {
			return nil, errors.New("invalid skew policy config")
		}
		return NewSkewPolicy(cfg.Skew), nil
	case KindImbalance:
		c := cfg.Imbalance
		if c.BookThreshold <= 0 || c.OrderSize <= 0 || c.FlowLo > c.FlowHi {
			return nil, errors.New("invalid imbalance policy config")
		}
		return NewImbalancePolicy(c), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, cfg.Kind)
	}
}
