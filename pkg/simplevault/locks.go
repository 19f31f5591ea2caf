package simplevault

import (
	"sync"
)

// userLocks serializes all operations for a given user. Mutexes are created
// lazily on first touch and kept for the process lifetime; at the target
// scale the map stays small enough that eviction is not worth its complexity.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the user's mutex and returns the matching unlock function.
func (l *userLocks) Lock(user string) func() {
	l.mu.Lock()
	m, ok := l.locks[user]
	if !ok {
		m = &sync.Mutex{}
		l.locks[user] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
