// Package lifecycle provides lazily constructed process-wide and
// goroutine-owned objects that are rebuilt in a child process after fork.
//
// The Go runtime never forks behind the program's back, so nothing here is
// installed with pthread_atfork. An application that forks through a raw
// syscall, or snapshots and restores a process image, calls PrepareFork
// before, and AfterForkParent or AfterForkChild after.
package lifecycle

import (
	"sync"
	"sync/atomic"
)

// ForkAware is implemented by objects held in a Singleton that must reach a
// quiescent state before fork, typically by taking their own locks.
// AfterForkParent undoes PrepareFork. Nothing is called on the object in the
// child: the child discards it and constructs a fresh one on next use.
type ForkAware interface {
	PrepareFork()
	AfterForkParent()
}

// parentHook runs in the forking process.
type parentHook interface {
	prepare()
	parent()
}

// childHook runs in the child with a single thread alive. Only types in this
// package implement it, and their resets touch atomics and locks only.
type childHook interface {
	child()
}

var (
	hooksMu  sync.Mutex
	parents  []parentHook
	children []childHook

	generation atomic.Uint64
)

func register(p parentHook, c childHook) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	parents = append(parents, p)
	children = append(children, c)
}

// PrepareFork quiesces every registered singleton and mutex, newest first.
// Package level objects register after those of the packages they import,
// so a lock is always taken before the locks its holder may go on to take.
// The registry stays locked until AfterForkParent or AfterForkChild.
func PrepareFork() {
	hooksMu.Lock()
	for i := len(parents) - 1; i >= 0; i-- {
		parents[i].prepare()
	}
}

// AfterForkParent releases what PrepareFork took.
func AfterForkParent() {
	for _, h := range parents {
		h.parent()
	}
	hooksMu.Unlock()
}

// AfterForkChild invalidates every singleton and goroutine-owned object
// created before the fork. It must not allocate.
func AfterForkChild() {
	generation.Add(1)
	for _, h := range children {
		h.child()
	}
	hooksMu = sync.Mutex{}
}

// Generation counts the forks this process descends from.
func Generation() uint64 {
	return generation.Load()
}
