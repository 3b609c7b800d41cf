package services

import (
	"sort"
	"sync"
)

// keyLocker serializes work per key (task id, setting key). Entries live
// only while some caller holds or waits on them. Disabled lockers hand out
// no-op unlocks.
type keyLocker struct {
	mu          sync.Mutex
	locks       map[string]*keyLock
	enableLocks bool
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyLocker(enable bool) *keyLocker {
	return &keyLocker{locks: make(map[string]*keyLock), enableLocks: enable}
}

func (l *keyLocker) lockKeys(keys ...string) func() {
	if !l.enableLocks {
		return func() {}
	}
	if len(keys) == 0 {
		return func() {}
	}
	keys = append([]string(nil), keys...)
	sort.Strings(keys)

	l.mu.Lock()
	held := make([]string, 0, len(keys))
	acquired := make([]*keyLock, 0, len(keys))
	for i, k := range keys {
		if i > 0 && k == keys[i-1] {
			continue
		}
		kl := l.locks[k]
		if kl == nil {
			kl = &keyLock{}
			l.locks[k] = kl
		}
		kl.refs++
		held = append(held, k)
		acquired = append(acquired, kl)
	}
	l.mu.Unlock()

	for _, kl := range acquired {
		kl.mu.Lock()
	}
	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].mu.Unlock()
		}
		l.mu.Lock()
		for i, k := range held {
			acquired[i].refs--
			if acquired[i].refs == 0 {
				delete(l.locks, k)
			}
		}
		l.mu.Unlock()
	}
}

func (l *keyLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
