package clock

import (
	"sync"
	"time"
)

var systemResolution = sync.OnceValue(func() time.Duration {
	return measureResolution(func() int64 { return time.Now().UnixNano() }, 0)
})

// measureResolution samples now until it has seen three changes and returns
// the largest power of ten, up to a second, dividing every step. Steps may
// be off by one nanosecond, which is what clocks derived from floating
// point produce. A positive limit caps the number of samples; a clock that
// does not move often enough gets 1ns.
func measureResolution(now func() int64, limit int) time.Duration {
	var deltas [3]int64
	prev := now()
	for n, reads := 0, 0; n < len(deltas); reads++ {
		if limit > 0 && reads >= limit {
			return time.Nanosecond
		}
		t := now()
		if t == prev {
			continue
		}
		d := t - prev
		if d < 0 {
			d = -d
		}
		deltas[n] = d
		n++
		prev = t
	}

	res := int64(1)
	for res < int64(time.Second) {
		next := res * 10
		for _, d := range deltas {
			if !divisible(d, next) {
				return time.Duration(res)
			}
		}
		res = next
	}
	return time.Duration(res)
}

func divisible(d, p int64) bool {
	r := d % p
	return r == 0 || r == 1 || r == p-1
}
