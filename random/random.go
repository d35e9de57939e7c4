// Package random supplies the uniform bits consumed by the id generators
// and clock states. It makes no cryptographic promises.
package random

import (
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/rustyeddy/sortid/lifecycle"
)

// Source produces uniformly distributed bits. Every Source satisfies
// math/rand/v2.Source.
type Source interface {
	Uint64() uint64
	Read(p []byte) (int, error)
}

// Generator is a ChaCha8 stream. It is not safe for concurrent use.
type Generator struct {
	c *rand.ChaCha8
}

// New returns a Generator seeded from crypto/rand.
func New() *Generator {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic(fmt.Sprintf("random: seed generator: %v", err))
	}
	return NewSeeded(seed)
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed [32]byte) *Generator {
	return &Generator{c: rand.NewChaCha8(seed)}
}

func (g *Generator) Uint64() uint64 {
	return g.c.Uint64()
}

func (g *Generator) Read(p []byte) (int, error) {
	return g.c.Read(p)
}

// NewLocal returns a goroutine-owned Generator that is reseeded in a child
// process after fork.
func NewLocal() *lifecycle.Local[Generator] {
	return lifecycle.NewLocal(New)
}

// Uint64N returns a uniform value in [0, n). It panics if n is zero.
func Uint64N(s Source, n uint64) uint64 {
	return rand.New(s).Uint64N(n)
}

type locked struct {
	mu sync.Mutex
	g  *Generator
}

func (l *locked) Uint64() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Uint64()
}

func (l *locked) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Read(p)
}

func (l *locked) PrepareFork()     { l.mu.Lock() }
func (l *locked) AfterForkParent() { l.mu.Unlock() }

var shared = lifecycle.NewSingleton(func() *locked {
	return &locked{g: New()}
})

type processSource struct{}

func (processSource) Uint64() uint64             { return shared.Instance().Uint64() }
func (processSource) Read(p []byte) (int, error) { return shared.Instance().Read(p) }

// Default returns the process-wide Source. It is safe for concurrent use
// and a forked child draws from a freshly seeded stream.
func Default() Source {
	return processSource{}
}
