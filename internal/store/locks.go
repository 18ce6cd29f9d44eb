package store

import "sync"

// Locks hands out one mutex per key so fetch→mutate→save on the same
// instance runs serially while different instances proceed in parallel.
// Entries are dropped once no goroutine holds or waits on them.
type Locks struct {
	mu sync.Mutex
	m  map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewLocks returns an empty lock table.
func NewLocks() *Locks {
	return &Locks{m: make(map[string]*keyLock)}
}

// Lock blocks until key is free and returns its release func.
func (l *Locks) Lock(key string) (unlock func()) {
	l.mu.Lock()
	k, ok := l.m[key]
	if !ok {
		k = &keyLock{}
		l.m[key] = k
	}
	k.refs++
	l.mu.Unlock()

	k.mu.Lock()
	return func() {
		k.mu.Unlock()
		l.mu.Lock()
		k.refs--
		if k.refs == 0 {
			delete(l.m, key)
		}
		l.mu.Unlock()
	}
}

// Len reports how many keys are currently tracked.
func (l *Locks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
