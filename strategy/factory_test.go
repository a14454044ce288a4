package strategy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPolicy(t *testing.T) {
	p, err := New(Config{Kind: KindSkew, Skew: SkewConfig{SpreadFactor: 0.25, OrderSize: 2}})
	require.NoError(t, err)
	assert.Equal(t, KindSkew, p.Name())
	assert.Equal(t, 1.0, p.(*SkewPolicy).cfg.ScalpSize, "scalp size defaults to 1")

	p, err = New(Config{Kind: KindImbalance, Imbalance: ImbalanceConfig{BookThreshold: 1.5, FlowLo: 0.95, FlowHi: 1.05, OrderSize: 100}})
	require.NoError(t, err)
	assert.Equal(t, KindImbalance, p.Name())
}

func TestNewPolicyErrors(t *testing.T) {
	_, err := New(Config{Kind: "grid"})
	assert.True(t, errors.Is(err, ErrUnknownPolicy))

	_, err = New(Config{Kind: KindSkew})
	assert.Error(t, err)

	_, err = New(Config{Kind: KindImbalance, Imbalance: ImbalanceConfig{BookThreshold: 1.5, FlowLo: 2, FlowHi: 1, OrderSize: 1}})
	assert.Error(t, err)
}
