package uuid

import (
	"github.com/rustyeddy/sortid/clock"
	"github.com/rustyeddy/sortid/lifecycle"
	"github.com/rustyeddy/sortid/random"
)

// Generator draws random bits from its own stream instead of the shared
// process source, so it avoids lock contention. Timestamps still come from
// the process-wide clock states. A Generator must not be shared between
// goroutines.
type Generator struct {
	rnd *lifecycle.Local[random.Generator]
}

func NewGenerator() *Generator {
	return &Generator{rnd: random.NewLocal()}
}

func (g *Generator) NewV1() (UUID, error) {
	r, err := clock.Next(clock.V1)
	if err != nil {
		return Nil, err
	}
	return layoutV1(r, NodeID()), nil
}

func (g *Generator) NewV6() (UUID, error) {
	r, err := clock.Next(clock.V6)
	if err != nil {
		return Nil, err
	}
	return layoutV6(r, NodeID()), nil
}

func (g *Generator) NewV7() (UUID, error) {
	r, err := clock.Next(clock.V7)
	if err != nil {
		return Nil, err
	}
	return layoutV7(r, g.rnd.Get()), nil
}

func (g *Generator) NewV4() UUID {
	return newRandom(g.rnd.Get())
}

func (g *Generator) Close() error {
	return g.rnd.Close()
}
