package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderMetrics(t *testing.T) {
	m := New("test")
	m.OrderPlaced("ETH", "BUY")
	m.OrderPlaced("ETH", "BUY")
	m.OrderRejected("ETH", "SELL")
	m.Cancel("ETH", "confirmed")
	m.MarketOrder("BTC", "SELL", "hedge")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersPlaced.WithLabelValues("ETH", "BUY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersRejected.WithLabelValues("ETH", "SELL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cancels.WithLabelValues("ETH", "confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.marketOrders.WithLabelValues("BTC", "SELL", "hedge")))
}

func TestGaugeMetrics(t *testing.T) {
	m := New("")
	m.SetPosition("LTC", -12)
	m.SetPortfolioValue(100250.5)
	m.QuoteCycle("LTC", "imbalance")
	m.QuoteSkip("LTC", "flow not neutral")
	m.Throttled()
	m.HandlerRecovered("trade")
	m.SetUnrealizedPnL("LTC", -3.5)

	assert.Equal(t, -12.0, testutil.ToFloat64(m.position.WithLabelValues("LTC")))
	assert.Equal(t, 100250.5, testutil.ToFloat64(m.portfolioValue))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.throttled))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.handlerRecovers.WithLabelValues("trade")))
	assert.Equal(t, -3.5, testutil.ToFloat64(m.unrealizedPnL.WithLabelValues("LTC")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.OrderPlaced("ETH", "BUY")
		m.SetPortfolioValue(1)
		m.Throttled()
		m.Cancel("ETH", "unknown")
	})
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New("mm")
	m.SetPortfolioValue(42)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "mm_portfolio_value 42"))
}
