package lifecycle

import (
	"sync"
	"sync/atomic"
)

// Singleton is a lazily constructed process-wide object. After a fork the
// child starts over: the next Instance call constructs a new object and the
// one inherited from the parent is abandoned without being closed.
type Singleton[T any] struct {
	ctor func() *T

	mu    sync.Mutex
	ready atomic.Bool
	obj   atomic.Pointer[T]
}

// NewSingleton returns a Singleton built by ctor on first use and registers
// it with the fork hooks. Call it at package level, never from a ctor. A ctor
// may use singletons created before its own; a ctor that cannot build its
// object should panic.
func NewSingleton[T any](ctor func() *T) *Singleton[T] {
	s := &Singleton[T]{ctor: ctor}
	register(s, s)
	return s
}

// Instance returns the object, constructing it if this process has not yet.
func (s *Singleton[T]) Instance() *T {
	if s.ready.Load() {
		return s.obj.Load()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready.Load() {
		s.obj.Store(s.ctor())
		s.ready.Store(true)
	}
	return s.obj.Load()
}

func (s *Singleton[T]) prepare() {
	s.mu.Lock()
	if !s.ready.Load() {
		return
	}
	if fa, ok := any(s.obj.Load()).(ForkAware); ok {
		fa.PrepareFork()
	}
}

func (s *Singleton[T]) parent() {
	if s.ready.Load() {
		if fa, ok := any(s.obj.Load()).(ForkAware); ok {
			fa.AfterForkParent()
		}
	}
	s.mu.Unlock()
}

func (s *Singleton[T]) child() {
	s.ready.Store(false)
	s.mu = sync.Mutex{}
}
