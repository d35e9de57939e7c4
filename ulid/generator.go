package ulid

import (
	"github.com/rustyeddy/sortid/clock"
	"github.com/rustyeddy/sortid/lifecycle"
	"github.com/rustyeddy/sortid/persist"
)

// Generator owns a private clock state, so it never contends with other
// goroutines. Its ids increase monotonically among themselves, and with
// clock.WithBackend they continue from where an earlier generator on the
// same backend left off. A Generator must not be shared between goroutines.
type Generator struct {
	state *lifecycle.Local[clock.State[persist.ULIDData]]
}

func NewGenerator(opts ...clock.Option) *Generator {
	return &Generator{
		state: lifecycle.NewLocal(func() *clock.State[persist.ULIDData] {
			return clock.NewULIDState(opts...)
		}),
	}
}

func (g *Generator) New() (ULID, error) {
	r, err := g.state.Get().Get()
	if err != nil {
		return ULID{}, err
	}
	return fromReading(r), nil
}

// Close releases the generator's backend reference, if any.
func (g *Generator) Close() error {
	return g.state.Close()
}
