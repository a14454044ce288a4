// Package metrics provides Prometheus metrics for the market maker
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config 指标配置
type Config struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Listen    string `yaml:"listen"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{Namespace: "mm", Listen: ":9100"}
}

// Metrics 决策引擎的 Prometheus 指标，使用独立 registry。
// 所有方法对 nil 接收者安全。
type Metrics struct {
	registry *prometheus.Registry

	quoteCycles     *prometheus.CounterVec
	quoteSkips      *prometheus.CounterVec
	throttled       prometheus.Counter
	ordersPlaced    *prometheus.CounterVec
	ordersRejected  *prometheus.CounterVec
	cancels         *prometheus.CounterVec
	marketOrders    *prometheus.CounterVec
	position        *prometheus.GaugeVec
	portfolioValue  prometheus.Gauge
	unrealizedPnL   *prometheus.GaugeVec
	handlerRecovers *prometheus.CounterVec
}

// New 创建并注册全部指标
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "mm"
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		quoteCycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_cycles_total",
			Help:      "报价周期执行次数",
		}, []string{"instrument", "policy"}),
		quoteSkips: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_skips_total",
			Help:      "放弃报价或全部撤单的周期数",
		}, []string{"instrument", "reason"}),
		throttled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "throttled_events_total",
			Help:      "落在最小重报价间隔内、未触发报价的事件数",
		}),
		ordersPlaced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "限价单下单成功数",
		}, []string{"instrument", "side"}),
		ordersRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "限价单被拒绝数",
		}, []string{"instrument", "side"}),
		cancels: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cancels_total",
			Help:      "撤单请求数，按结果分类",
		}, []string{"instrument", "result"}),
		marketOrders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "market_orders_total",
			Help:      "市价单数（hedge=超限对冲, scalp=动量单）",
		}, []string{"instrument", "side", "kind"}),
		position: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "position",
			Help:      "净仓位",
		}, []string{"instrument"}),
		portfolioValue: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "portfolio_value",
			Help:      "现金加持仓市值",
		}),
		unrealizedPnL: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unrealized_pnl",
			Help:      "按持仓均价计算的未实现盈亏",
		}, []string{"instrument"}),
		handlerRecovers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_recovers_total",
			Help:      "事件处理中被捕获的 panic 数",
		}, []string{"handler"}),
	}
}

// Registry 返回底层 registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler 返回 /metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) QuoteCycle(instrument, policy string) {
	if m == nil {
		return
	}
	m.quoteCycles.WithLabelValues(instrument, policy).Inc()
}

func (m *Metrics) QuoteSkip(instrument, reason string) {
	if m == nil {
		return
	}
	m.quoteSkips.WithLabelValues(instrument, reason).Inc()
}

func (m *Metrics) Throttled() {
	if m == nil {
		return
	}
	m.throttled.Inc()
}

func (m *Metrics) OrderPlaced(instrument, side string) {
	if m == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(instrument, side).Inc()
}

func (m *Metrics) OrderRejected(instrument, side string) {
	if m == nil {
		return
	}
	m.ordersRejected.WithLabelValues(instrument, side).Inc()
}

func (m *Metrics) Cancel(instrument, result string) {
	if m == nil {
		return
	}
	m.cancels.WithLabelValues(instrument, result).Inc()
}

func (m *Metrics) MarketOrder(instrument, side, kind string) {
	if m == nil {
		return
	}
	m.marketOrders.WithLabelValues(instrument, side, kind).Inc()
}

func (m *Metrics) SetPosition(instrument string, qty float64) {
	if m == nil {
		return
	}
	m.position.WithLabelValues(instrument).Set(qty)
}

func (m *Metrics) SetPortfolioValue(v float64) {
	if m == nil {
		return
	}
	m.portfolioValue.Set(v)
}

func (m *Metrics) SetUnrealizedPnL(instrument string, pnl float64) {
	if m == nil {
		return
	}
	m.unrealizedPnL.WithLabelValues(instrument).Set(pnl)
}

func (m *Metrics) HandlerRecovered(handler string) {
	if m == nil {
		return
	}
	m.handlerRecovers.WithLabelValues(handler).Inc()
}

// StartMetricsServer 启动Prometheus指标服务器
func StartMetricsServer(addr string, m *Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return srv
}
