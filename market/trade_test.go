package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTradeTapePrunesOldEntries(t *testing.T) {
	tape := NewTradeTape(60 * time.Second)
	base := time.Unix(1000, 0)

	tape.Append(Trade{Ts: base, Side: Buy, Qty: 1})
	tape.Append(Trade{Ts: base.Add(30 * time.Second), Side: Sell, Qty: 2})
	assert.Equal(t, 2, tape.Len())

	// 第一笔早于 cutoff（t+61-60=t+1）被裁剪
	tape.Append(Trade{Ts: base.Add(61 * time.Second), Side: Buy, Qty: 3})
	assert.Equal(t, 2, tape.Len())

	var qtys []float64
	tape.Each(func(tr Trade) bool {
		qtys = append(qtys, tr.Qty)
		return true
	})
	assert.Equal(t, []float64{2, 3}, qtys)
}

func TestTradeTapeKeepsBoundaryEntry(t *testing.T) {
	tape := NewTradeTape(10 * time.Second)
	base := time.Unix(0, 0)
	tape.Append(Trade{Ts: base, Side: Buy, Qty: 1})
	tape.Append(Trade{Ts: base.Add(10 * time.Second), Side: Buy, Qty: 1})
	assert.Equal(t, 2, tape.Len(), "entry exactly at the cutoff is kept")
}

func TestTradeTapeEachStops(t *testing.T) {
	tape := NewTradeTape(0)
	for i := 0; i < 5; i++ {
		tape.Append(Trade{Ts: time.Unix(int64(i), 0), Qty: 1})
	}
	n := 0
	tape.Each(func(Trade) bool {
		n++
		return n < 2
	})
	assert.Equal(t, 2, n)
	assert.Equal(t, 5, tape.Len(), "zero lookback never prunes")
}
