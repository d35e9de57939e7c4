package lifecycle

import "sync"

// Mutex is a process-wide lock. PrepareFork waits for it to be free and
// holds it across the fork, and a child process finds it unlocked.
type Mutex struct {
	mu sync.Mutex
}

// NewMutex returns a Mutex registered with the fork hooks. Like
// NewSingleton it belongs at package level, created after anything the
// lock's holder goes on to use.
func NewMutex() *Mutex {
	m := &Mutex{}
	register(m, m)
	return m
}

func (m *Mutex) Lock()   { m.mu.Lock() }
func (m *Mutex) Unlock() { m.mu.Unlock() }

func (m *Mutex) prepare() { m.mu.Lock() }
func (m *Mutex) parent()  { m.mu.Unlock() }
func (m *Mutex) child()   { m.mu = sync.Mutex{} }
