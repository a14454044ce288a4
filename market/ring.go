package market

// PriceRing 固定容量的成交价环形缓冲，写满后覆盖最旧的槽位。
// 未写入的槽位为 0。
type PriceRing struct {
	buf  []float64
	next int
	last float64
}

func NewPriceRing(capacity int) *PriceRing {
	if capacity <= 0 {
		capacity = 32
	}
	return &PriceRing{buf: make([]float64, capacity)}
}

// Push 写入价格。
func (r *PriceRing) Push(price float64) {
	r.buf[r.next] = price
	r.next = (r.next + 1) % len(r.buf)
	r.last = price
}

// Latest 返回最近写入槽位的值（可能为 0）。
func (r *PriceRing) Latest() float64 {
	return r.buf[(r.next+len(r.buf)-1)%len(r.buf)]
}

// LastTrade 返回最近一笔成交价。
func (r *PriceRing) LastTrade() float64 { return r.last }

// Recent 从新到旧返回非零样本，最多 n 个（n<=0 表示全部）。
func (r *PriceRing) Recent(n int) []float64 {
	size := len(r.buf)
	if n <= 0 || n > size {
		n = size
	}
	out := make([]float64, 0, n)
	for k := 0; k < size && len(out) < n; k++ {
		v := r.buf[(r.next+size-1-k)%size]
		if v != 0 {
			out = append(out, v)
		}
	}
	return out
}
