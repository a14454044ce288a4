package market

import (
	"fmt"
	"strings"
)

// Instrument 可交易标的，固定枚举。
type Instrument uint8

const (
	ETH Instrument = iota
	BTC
	LTC
)

// Instruments 返回全部标的（按枚举顺序）。
func Instruments() []Instrument {
	return []Instrument{ETH, BTC, LTC}
}

func (i Instrument) String() string {
	switch i {
	case ETH:
		return "ETH"
	case BTC:
		return "BTC"
	case LTC:
		return "LTC"
	default:
		return fmt.Sprintf("Instrument(%d)", uint8(i))
	}
}

// ParseInstrument 解析标的名称，大小写不敏感。
func ParseInstrument(s string) (Instrument, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ETH":
		return ETH, nil
	case "BTC":
		return BTC, nil
	case "LTC":
		return LTC, nil
	}
	return 0, fmt.Errorf("unknown instrument %q", s)
}

// Side 买卖方向；成交回报中为主动方。
type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Opposite 返回反方向。
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}
