package engine

import (
	"market-maker-engine/inventory"
	"market-maker-engine/market"
	"market-maker-engine/order"
)

// Record 单个标的的全部可变状态，由引擎独占。
type Record struct {
	Instrument market.Instrument
	State      *market.State
	Slots      order.Slots
	Position   inventory.Tracker
}

func newRecord(inst market.Instrument, cfg market.StateConfig) *Record {
	return &Record{
		Instrument: inst,
		State:      market.NewState(cfg),
	}
}
