package lifecycle

import "io"

// Local is a lazily constructed object owned by a single goroutine. It is
// not safe for concurrent use. When the process has forked since the object
// was built, Get closes it (if it is an io.Closer) and builds a new one.
type Local[T any] struct {
	ctor func() *T
	gen  uint64
	obj  *T
}

func NewLocal[T any](ctor func() *T) *Local[T] {
	return &Local[T]{ctor: ctor}
}

func (l *Local[T]) Get() *T {
	g := generation.Load()
	if l.obj != nil && l.gen == g {
		return l.obj
	}
	_ = l.discard()
	l.obj = l.ctor()
	l.gen = g
	return l.obj
}

// Close releases the cached object, if any.
func (l *Local[T]) Close() error {
	return l.discard()
}

func (l *Local[T]) discard() error {
	if l.obj == nil {
		return nil
	}
	var err error
	if c, ok := any(l.obj).(io.Closer); ok {
		err = c.Close()
	}
	l.obj = nil
	return err
}
