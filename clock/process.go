package clock

import (
	"sync/atomic"

	"github.com/rustyeddy/sortid/lifecycle"
	"github.com/rustyeddy/sortid/persist"
)

// processState is the process-wide State of one variant plus the backend
// configured for it, which a child process re-attaches after fork.
type processState[D persist.Data] struct {
	state   *lifecycle.Singleton[State[D]]
	backend atomic.Pointer[persist.Backend[D]]

	// setMu serializes SetPersistence calls. It is created after state,
	// which setBackend builds while holding it.
	setMu *lifecycle.Mutex
}

func newProcessState[D persist.Data](v Variant) *processState[D] {
	p := &processState[D]{}
	p.state = lifecycle.NewSingleton(func() *State[D] {
		var opts []Option
		if b := p.backend.Load(); b != nil && *b != nil {
			opts = append(opts, WithBackend(*b))
		}
		return newState[D](v, opts)
	})
	p.setMu = lifecycle.NewMutex()
	return p
}

func (p *processState[D]) setBackend(b persist.Backend[D]) error {
	p.setMu.Lock()
	defer p.setMu.Unlock()

	st := p.state.Instance()
	p.backend.Store(&b)
	return st.SetBackend(b)
}

var (
	processV1   = newProcessState[persist.UUIDData](V1)
	processV6   = newProcessState[persist.UUIDData](V6)
	processV7   = newProcessState[persist.UUIDData](V7)
	processULID = newProcessState[persist.ULIDData](ULID)
)

func processUUID(v Variant) *processState[persist.UUIDData] {
	switch v {
	case V1:
		return processV1
	case V6:
		return processV6
	case V7:
		return processV7
	}
	panic("clock: " + v.String() + " is not a UUID variant")
}

// Next returns a reading from the process-wide state of v.
func Next(v Variant) (Reading, error) {
	if v == ULID {
		return processULID.state.Instance().Get()
	}
	return processUUID(v).state.Instance().Get()
}

// SetUUIDPersistence makes the process-wide V1, V6 or V7 state persist
// through b, or stop persisting when b is nil.
func SetUUIDPersistence(v Variant, b persist.Backend[persist.UUIDData]) error {
	return processUUID(v).setBackend(b)
}

func SetULIDPersistence(b persist.Backend[persist.ULIDData]) error {
	return processULID.setBackend(b)
}
