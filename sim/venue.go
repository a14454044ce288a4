package sim

import (
	"errors"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"market-maker-engine/infrastructure/logger"
	"market-maker-engine/market"
)

var ErrCancelTimeout = errors.New("cancel request timed out")

// Order 纸面场所中的订单。
type Order struct {
	ID         int64
	Instrument market.Instrument
	Side       market.Side
	Qty        float64
	Price      float64
	Market     bool
}

// Fill 一笔待回报的成交。
type Fill struct {
	OrderID    int64
	Instrument market.Instrument
	Side       market.Side
	Qty        float64
	Price      float64
}

// VenueConfig 故障注入参数，概率取值 [0,1]。
type VenueConfig struct {
	RejectRate     float64 // 限价单被拒概率
	CancelFailRate float64 // 撤单返回错误（结果未知）概率
}

// Venue 内存撮合场所，实现 order.Venue。
// 限价单挂在本地，由 Match 按成交打印撮合；市价单进入队列，由 Runner 在盘口价结算。
// 成交不会在下单调用内回调引擎，避免重入。
type Venue struct {
	cfg     VenueConfig
	rng     *rand.Rand
	log     *logger.Logger
	nextID  int64
	resting map[int64]*Order
	markets []Order

	Placed    []Order
	Cancelled []int64
	Logs      []string
}

func NewVenue(cfg VenueConfig, rng *rand.Rand, lg *logger.Logger) *Venue {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if lg == nil {
		lg = logger.NewNop()
	}
	return &Venue{
		cfg:     cfg,
		rng:     rng,
		log:     lg,
		resting: make(map[int64]*Order),
	}
}

func (v *Venue) PlaceMarketOrder(side market.Side, inst market.Instrument, qty float64) bool {
	if qty <= 0 {
		return false
	}
	v.nextID++
	o := Order{ID: v.nextID, Instrument: inst, Side: side, Qty: qty, Market: true}
	v.markets = append(v.markets, o)
	v.Placed = append(v.Placed, o)
	return true
}

func (v *Venue) PlaceLimitOrder(side market.Side, inst market.Instrument, qty, price float64, ioc bool) int64 {
	if qty <= 0 || price <= 0 || v.roll(v.cfg.RejectRate) {
		return 0
	}
	v.nextID++
	o := &Order{ID: v.nextID, Instrument: inst, Side: side, Qty: qty, Price: price}
	v.Placed = append(v.Placed, *o)
	if !ioc {
		v.resting[o.ID] = o
	}
	return o.ID
}

func (v *Venue) CancelOrder(inst market.Instrument, id int64) (bool, error) {
	if v.roll(v.cfg.CancelFailRate) {
		return false, ErrCancelTimeout
	}
	o, ok := v.resting[id]
	if !ok || o.Instrument != inst {
		return false, nil
	}
	delete(v.resting, id)
	v.Cancelled = append(v.Cancelled, id)
	return true, nil
}

func (v *Venue) Log(text string) {
	v.Logs = append(v.Logs, text)
	v.log.Info("venue log", zap.String("text", text))
}

// Resting 返回某标的当前挂单，按订单号排序。
func (v *Venue) Resting(inst market.Instrument) []Order {
	var out []Order
	for _, o := range v.resting {
		if o.Instrument == inst {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Match 用一笔主动成交撮合挂单：主动买吃掉价格 <= price 的卖单，主动卖吃掉价格 >= price 的买单。
// 按价格优先、订单号次之的顺序，最多消耗 qty。
func (v *Venue) Match(inst market.Instrument, aggressor market.Side, qty, price float64) []Fill {
	var candidates []*Order
	for _, o := range v.resting {
		if o.Instrument != inst || o.Side != aggressor.Opposite() {
			continue
		}
		if (aggressor == market.Buy && o.Price <= price) || (aggressor == market.Sell && o.Price >= price) {
			candidates = append(candidates, o)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Price != b.Price {
			if aggressor == market.Buy {
				return a.Price < b.Price
			}
			return a.Price > b.Price
		}
		return a.ID < b.ID
	})

	var fills []Fill
	for _, o := range candidates {
		if qty <= 0 {
			break
		}
		n := o.Qty
		if qty < n {
			n = qty
		}
		qty -= n
		o.Qty -= n
		fills = append(fills, Fill{OrderID: o.ID, Instrument: inst, Side: o.Side, Qty: n, Price: o.Price})
		if o.Qty <= 0 {
			delete(v.resting, o.ID)
		}
	}
	return fills
}

// DrainMarketOrders 取出排队中的市价单。
func (v *Venue) DrainMarketOrders() []Order {
	out := v.markets
	v.markets = nil
	return out
}

func (v *Venue) roll(p float64) bool {
	return p > 0 && v.rng.Float64() < p
}
