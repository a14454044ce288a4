package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceRingWrapAround(t *testing.T) {
	r := NewPriceRing(3)
	assert.Empty(t, r.Recent(0))
	assert.Zero(t, r.Latest())

	for _, p := range []float64{1, 2, 3, 4} {
		r.Push(p)
	}
	// 4 覆盖最旧的 1
	assert.Equal(t, []float64{4, 3, 2}, r.Recent(0))
	assert.Equal(t, []float64{4, 3}, r.Recent(2))
	assert.Equal(t, 4.0, r.Latest())
	assert.Equal(t, 4.0, r.LastTrade())
}

func TestPriceRingSkipsEmptySlots(t *testing.T) {
	r := NewPriceRing(5)
	r.Push(10)
	r.Push(0)
	r.Push(11)
	assert.Equal(t, []float64{11, 10}, r.Recent(0))
}

func TestPriceRingDefaultCapacity(t *testing.T) {
	r := NewPriceRing(0)
	for i := 1; i <= 40; i++ {
		r.Push(float64(i))
	}
	assert.Len(t, r.Recent(0), 32)
}
