package service

import "sync"

// keyMutex serializes work per string key. Entries are reference counted
// and removed once the last holder unlocks, so the map does not grow with
// the number of distinct repositories seen over the process lifetime.
type keyMutex struct {
	mu      sync.Mutex
	entries map[string]*keyEntry
}

type keyEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyMutex() *keyMutex {
	return &keyMutex{entries: make(map[string]*keyEntry)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *keyMutex) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &keyEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

// LockPair acquires the mutexes for two keys in sorted order, so two
// callers locking the same pair in opposite order cannot deadlock. Equal
// keys are locked once.
func (k *keyMutex) LockPair(a, b string) func() {
	if a == b {
		return k.Lock(a)
	}
	if a > b {
		a, b = b, a
	}
	unlockA := k.Lock(a)
	unlockB := k.Lock(b)
	return func() {
		unlockB()
		unlockA()
	}
}
