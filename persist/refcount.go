package persist

import "sync"

// RefCount counts the users of a shared resource. When the count drops back
// to zero the release function runs; a later AddRef starts a new cycle.
// Embed it to implement the AddRef and SubRef halves of Backend.
type RefCount struct {
	mu      sync.Mutex
	n       int
	release func()
}

func (r *RefCount) AddRef() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
}

func (r *RefCount) SubRef() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.n == 0 {
		panic("persist: SubRef without matching AddRef")
	}
	r.n--
	if r.n == 0 && r.release != nil {
		r.release()
	}
}

// Refs returns the current count.
func (r *RefCount) Refs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}
