package clock

import (
	"time"

	"github.com/rustyeddy/sortid/persist"
	"github.com/rustyeddy/sortid/random"
)

type outcome int

const (
	issued outcome = iota
	exhausted
	restarted
)

const (
	seqMask  = 0x3FFF
	seqHigh  = 0x3F80 // top 7 of the 14 sequence bits
	tailHigh = 0xFFFFFF0000000000
)

// arbiter is the clock state machine. Times are in adjustment units since
// the Unix epoch. Readings are rounded down to a multiple of res, and the
// value handed out for a tick is lastTime+adjustment, so consecutive ticks
// never overlap.
type arbiter struct {
	unit      int64
	res       int64
	maxAdj    int64
	tolerance int64
	monotonic bool
	wide      bool
	rnd       random.Source

	lastTime   int64
	reading    int64 // most recent quantized reading, never above lastTime
	adjustment int64
	stalled    bool // disambiguator wrapped; wait for a new tick

	seq uint16
	hi  uint16
	lo  uint64
}

func newArbiter(p params, resolution time.Duration, tolerance time.Duration, rnd random.Source) arbiter {
	res := int64(resolution) / p.unit
	if res < 1 {
		res = 1
	}
	return arbiter{
		unit:      p.unit,
		res:       res,
		maxAdj:    res - 1,
		tolerance: int64(tolerance) / p.unit,
		monotonic: p.monotonic,
		wide:      p.wide,
		rnd:       rnd,
	}
}

func (a *arbiter) quantize(ns int64) int64 {
	q := ns / a.unit
	if a.res > 1 {
		q -= q % a.res
	}
	return q
}

// reset starts over as if the last id had been issued a second ago.
func (a *arbiter) reset(ns int64) {
	a.lastTime = a.quantize(ns) - int64(time.Second)/a.unit
	a.reading = a.lastTime
	a.adjustment = 0
	a.stalled = false
	a.randomize()
}

func (a *arbiter) advance(ns int64) outcome {
	q := a.quantize(ns)
	jumped := q < a.reading
	a.reading = q

	if jumped && a.lastTime-q > a.tolerance {
		a.lastTime = q
		a.adjustment = 0
		a.stalled = false
		a.freshDisambiguator()
		return restarted
	}

	// A small step back: the non-repeatable clock keeps lastTime and moves
	// to the next sequence, the monotonic one carries on as in the same tick.
	if jumped && !a.monotonic {
		a.seq = (a.seq + 1) & seqMask
		a.adjustment = 0
		return issued
	}

	if q <= a.lastTime+a.adjustment {
		if a.stalled {
			return exhausted
		}
		if a.adjustment < a.maxAdj {
			a.adjustment++
			return issued
		}
		if !a.monotonic {
			return exhausted
		}
		if a.increment() {
			a.stalled = true
			return exhausted
		}
		return issued
	}

	a.lastTime = q
	a.adjustment = 0
	if a.stalled {
		a.stalled = false
		a.randomizeHigh()
	}
	return issued
}

func (a *arbiter) value() int64 {
	return a.lastTime + a.adjustment
}

func (a *arbiter) randomize() {
	if a.wide {
		a.hi = uint16(a.rnd.Uint64())
		a.lo = a.rnd.Uint64()
		return
	}
	a.seq = uint16(a.rnd.Uint64()) & seqMask
}

// freshDisambiguator randomizes to a value different from the current one.
func (a *arbiter) freshDisambiguator() {
	seq, hi, lo := a.seq, a.hi, a.lo
	for {
		a.randomize()
		if a.seq != seq || a.hi != hi || a.lo != lo {
			return
		}
	}
}

// randomizeHigh refills the high half of a disambiguator that wrapped to
// zero, leaving the low half as counting room.
func (a *arbiter) randomizeHigh() {
	if a.wide {
		a.hi = uint16(a.rnd.Uint64())
		a.lo = a.lo&^tailHigh | a.rnd.Uint64()&tailHigh
		return
	}
	a.seq = a.seq&^seqHigh | uint16(a.rnd.Uint64())&seqHigh
}

// increment adds one to the disambiguator and reports whether it wrapped.
func (a *arbiter) increment() bool {
	if a.wide {
		a.lo++
		if a.lo != 0 {
			return false
		}
		a.hi++
		return a.hi == 0
	}
	a.seq = (a.seq + 1) & seqMask
	return a.seq == 0
}

func (a *arbiter) save(d any) {
	switch v := d.(type) {
	case *persist.UUIDData:
		v.When = a.lastTime * a.unit
		v.Seq = a.seq
		v.Adjustment = int32(a.adjustment)
	case *persist.ULIDData:
		v.When = a.lastTime * a.unit
		v.Adjustment = int32(a.adjustment)
		v.RandomHigh = a.hi
		v.RandomLow = a.lo
	}
}

func (a *arbiter) restore(d any) {
	var when int64
	var adj int32
	switch v := d.(type) {
	case *persist.UUIDData:
		when, adj = v.When, v.Adjustment
		a.seq = v.Seq & seqMask
	case *persist.ULIDData:
		when, adj = v.When, v.Adjustment
		a.hi, a.lo = v.RandomHigh, v.RandomLow
	}
	a.lastTime = when / a.unit
	a.reading = a.lastTime
	a.adjustment = max(int64(adj), 0)
	a.stalled = false
}

func (a *arbiter) result(v Variant) Reading {
	r := Reading{Variant: v, Seq: a.seq, TailHigh: a.hi, TailLow: a.lo}
	val := a.value()
	switch v {
	case V1, V6:
		r.Time = val + GregorianOffset
	case V7:
		r.Time = val / 1000
		r.Extra = uint16((val%1000*4096 + 500) / 1000)
	case ULID:
		r.Time = val
	}
	if a.wide {
		r.Seq = 0
	} else {
		r.TailHigh, r.TailLow = 0, 0
	}
	return r
}
