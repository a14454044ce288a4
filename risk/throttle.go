package risk

import "time"

// Throttle 以事件时间戳做限频：每个 key 记录上一次放行的时间，
// 不依赖定时器，每次事件到达时比较即可。
type Throttle struct {
	MinInterval time.Duration
	last        map[string]time.Time
}

func NewThrottle(minInterval time.Duration) *Throttle {
	return &Throttle{
		MinInterval: minInterval,
		last:        make(map[string]time.Time),
	}
}

// Allow 从未放行过或距上次放行 >= MinInterval 时返回 true 并记录 now。
// 被拒绝的事件不刷新时间戳。
func (t *Throttle) Allow(key string, now time.Time) bool {
	if t == nil || t.MinInterval <= 0 {
		return true
	}
	if t.last == nil {
		t.last = make(map[string]time.Time)
	}
	prev, ok := t.last[key]
	if ok && now.Sub(prev) < t.MinInterval {
		return false
	}
	t.last[key] = now
	return true
}
