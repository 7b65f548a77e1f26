// Package keylock provides mutual exclusion scoped to a key, so callers working
// on different keys never wait on each other.
package keylock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

type KeyLock[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*entry
}

func New[K comparable]() *KeyLock[K] {
	return &KeyLock[K]{entries: make(map[K]*entry)}
}

// Lock blocks until key is free and returns the function that releases it.
// Entries are dropped once no goroutine holds or waits on them.
func (l *KeyLock[K]) Lock(key K) (unlock func()) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.entries, key)
			}
			l.mu.Unlock()
		})
	}
}

func (l *KeyLock[K]) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries)
}
