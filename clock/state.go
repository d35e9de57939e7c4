package clock

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/rustyeddy/sortid/persist"
)

// State arbitrates one clock. It is safe for concurrent use; goroutines
// calling Get on the same State receive distinct readings.
type State[D persist.Data] struct {
	mu      sync.Mutex
	variant Variant
	clock   Clock
	logger  *slog.Logger
	arb     arbiter

	backend persist.Backend[D]
	handle  persist.Handle[D]
	loaded  bool
}

// NewUUIDState returns a state for V1, V6 or V7 readings.
func NewUUIDState(v Variant, opts ...Option) *State[persist.UUIDData] {
	if v == ULID {
		panic("clock: ULID readings need NewULIDState")
	}
	return newState[persist.UUIDData](v, opts)
}

func NewULIDState(opts ...Option) *State[persist.ULIDData] {
	return newState[persist.ULIDData](ULID, opts)
}

func newState[D persist.Data](v Variant, opts []Option) *State[D] {
	p := lookup(v)
	o := buildOptions(opts)

	res := o.resolution
	if res <= 0 {
		if _, ok := o.clock.(systemClock); ok {
			res = systemResolution()
		} else {
			res = measureResolution(func() int64 { return o.clock.Now().UnixNano() }, 1000)
		}
	}
	tol := p.tolerance
	if o.tolerance != nil {
		tol = *o.tolerance
	}

	s := &State[D]{
		variant: v,
		clock:   o.clock,
		logger:  o.logger,
		arb:     newArbiter(p, res, tol, o.rnd),
	}
	s.arb.reset(s.clock.Now().UnixNano())

	if o.backend != nil {
		b, ok := o.backend.(persist.Backend[D])
		if !ok {
			panic(fmt.Sprintf("clock: backend %T does not store %s state", o.backend, v))
		}
		b.AddRef()
		s.backend = b
	}
	return s
}

func (s *State[D]) Variant() Variant { return s.variant }

// Get returns the next reading. When the current tick is used up it waits
// for the clock to move on. Errors come from the persistence backend only.
func (s *State[D]) Get() (Reading, error) {
	for {
		r, ok, err := s.try(s.clock.Now().UnixNano())
		if err != nil || ok {
			return r, err
		}
		runtime.Gosched()
	}
}

func (s *State[D]) try(ns int64) (r Reading, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend != nil {
		if err = s.lock(); err != nil {
			return Reading{}, false, err
		}
		defer func() {
			if uerr := s.handle.Unlock(); uerr != nil && err == nil {
				err = fmt.Errorf("unlock %s clock state: %w", s.variant, uerr)
			}
		}()
	}

	switch s.arb.advance(ns) {
	case exhausted:
		return Reading{}, false, nil
	case restarted:
		s.logger.Warn("clock moved backwards, state reset",
			"variant", s.variant,
			"time", s.arb.lastTime*s.arb.unit,
		)
	}

	if s.handle != nil {
		var d D
		s.arb.save(&d)
		if err = s.handle.Store(&d); err != nil {
			return Reading{}, false, fmt.Errorf("store %s clock state: %w", s.variant, err)
		}
	}
	return s.arb.result(s.variant), true, nil
}

// lock acquires the backend lock, opening a handle and loading the stored
// record the first time through.
func (s *State[D]) lock() error {
	if s.handle == nil {
		h, err := s.backend.Handle()
		if err != nil {
			return fmt.Errorf("open %s clock state: %w", s.variant, err)
		}
		s.handle = h
		s.loaded = false
	}

	if err := s.handle.Lock(); err != nil {
		return fmt.Errorf("lock %s clock state: %w", s.variant, err)
	}
	if s.loaded {
		return nil
	}

	var d D
	found, err := s.handle.Load(&d)
	if err != nil {
		// Drop the handle so the next attempt loads through a fresh one.
		_ = s.handle.Unlock()
		_ = s.handle.Close()
		s.handle = nil
		return fmt.Errorf("load %s clock state: %w", s.variant, err)
	}
	s.loaded = true
	if found {
		s.arb.restore(&d)
		s.logger.Debug("loaded persisted clock state", "variant", s.variant, "time", s.arb.lastTime*s.arb.unit)
	}
	return nil
}

// SetBackend switches persistence to b, or turns it off when b is nil. The
// old handle is closed, the old backend released, and the state starts
// over so that the next Get loads from b.
func (s *State[D]) SetBackend(b persist.Backend[D]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.release()
	if b != nil {
		b.AddRef()
	}
	s.backend = b
	s.arb.reset(s.clock.Now().UnixNano())
	s.logger.Debug("clock persistence changed", "variant", s.variant, "enabled", b != nil)
	return err
}

// Close releases the backend. The state keeps working without persistence.
func (s *State[D]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.release()
}

func (s *State[D]) release() error {
	var err error
	if s.handle != nil {
		err = s.handle.Close()
		s.handle = nil
	}
	if s.backend != nil {
		s.backend.SubRef()
		s.backend = nil
	}
	return err
}

func (s *State[D]) PrepareFork()     { s.mu.Lock() }
func (s *State[D]) AfterForkParent() { s.mu.Unlock() }
