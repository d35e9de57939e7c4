package persist

import "sync"

// Memory keeps the record in process memory. It lets goroutine-owned
// clock states share one logical clock.
type Memory[D Data] struct {
	RefCount

	mu     sync.Mutex
	stored bool
	rec    D
}

func NewMemory[D Data]() *Memory[D] {
	return &Memory[D]{}
}

func (m *Memory[D]) Handle() (Handle[D], error) {
	return &memoryHandle[D]{m: m}, nil
}

// Record returns the last stored record.
func (m *Memory[D]) Record() (D, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec, m.stored
}

type memoryHandle[D Data] struct {
	m      *Memory[D]
	closed bool
}

func (h *memoryHandle[D]) Lock() error {
	if h.closed {
		return ErrClosed
	}
	h.m.mu.Lock()
	return nil
}

func (h *memoryHandle[D]) Unlock() error {
	if h.closed {
		return ErrClosed
	}
	h.m.mu.Unlock()
	return nil
}

func (h *memoryHandle[D]) Load(d *D) (bool, error) {
	if h.closed {
		return false, ErrClosed
	}
	if !h.m.stored {
		return false, nil
	}
	*d = h.m.rec
	return true, nil
}

func (h *memoryHandle[D]) Store(d *D) error {
	if h.closed {
		return ErrClosed
	}
	h.m.rec = *d
	h.m.stored = true
	return nil
}

func (h *memoryHandle[D]) Close() error {
	h.closed = true
	return nil
}
