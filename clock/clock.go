// Package clock hands out timestamps for time-ordered ids. A State turns
// wall-clock readings into (time, adjustment, disambiguator) triples that
// never repeat, and for the monotonic variants never go backwards, within a
// process or across processes that share a persist.Backend.
package clock

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/sortid/persist"
	"github.com/rustyeddy/sortid/random"
)

// Variant selects the id layout a State serves.
type Variant int

const (
	V1 Variant = iota + 1
	V6
	V7
	ULID
)

func (v Variant) String() string {
	switch v {
	case V1:
		return "uuid-v1"
	case V6:
		return "uuid-v6"
	case V7:
		return "uuid-v7"
	case ULID:
		return "ulid"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// GregorianOffset is the number of 100ns intervals between the start of
// the Gregorian calendar (1582-10-15) and the Unix epoch.
const GregorianOffset = 0x01B21DD213814000

type params struct {
	unit      int64 // adjustment unit in nanoseconds
	monotonic bool
	wide      bool // 80-bit tail rather than a 14-bit clock sequence
	tolerance time.Duration
}

var variants = map[Variant]params{
	V1:   {unit: 100, tolerance: 0},
	V6:   {unit: 100, monotonic: true, tolerance: time.Second},
	V7:   {unit: 1000, monotonic: true, tolerance: time.Second},
	ULID: {unit: 1_000_000, monotonic: true, wide: true, tolerance: time.Second},
}

func lookup(v Variant) params {
	p, ok := variants[v]
	if !ok {
		panic(fmt.Sprintf("clock: unknown variant %d", int(v)))
	}
	return p
}

// Reading is one issued timestamp.
type Reading struct {
	Variant Variant

	// Time is in 100ns intervals since 1582-10-15 for V1 and V6, and in
	// milliseconds since the Unix epoch for V7 and ULID.
	Time int64

	// Extra is the 12-bit sub-millisecond fraction of a V7 reading.
	Extra uint16

	// Seq is the 14-bit clock sequence of V1, V6 and V7.
	Seq uint16

	// TailHigh and TailLow hold the 80-bit random tail of a ULID.
	TailHigh uint16
	TailLow  uint64
}

// Clock supplies wall-clock readings.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System is the real-time clock.
var System Clock = systemClock{}

type options struct {
	clock      Clock
	rnd        random.Source
	resolution time.Duration
	tolerance  *time.Duration
	logger     *slog.Logger
	backend    any
}

type Option func(*options)

func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithRandom(r random.Source) Option {
	return func(o *options) { o.rnd = r }
}

// WithResolution fixes the clock resolution instead of measuring it. The
// largest adjustment is one less than the resolution in adjustment units.
func WithResolution(d time.Duration) Option {
	return func(o *options) { o.resolution = d }
}

// WithTolerance sets how far the clock may step backwards before the state
// is reset to the new time.
func WithTolerance(d time.Duration) Option {
	return func(o *options) { o.tolerance = &d }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBackend persists the state through b. The record type must match the
// state: persist.UUIDData for V1, V6 and V7, persist.ULIDData for ULID.
func WithBackend[D persist.Data](b persist.Backend[D]) Option {
	return func(o *options) {
		if b != nil {
			o.backend = b
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = System
	}
	if o.rnd == nil {
		o.rnd = random.Default()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
