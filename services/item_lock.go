package services

import "sync"

// itemLocks serializes commits per content id inside one process.
type itemLocks struct {
	mu    sync.Mutex
	locks map[uint]*itemLock
}

type itemLock struct {
	mu   sync.Mutex
	refs int
}

func newItemLocks() *itemLocks {
	return &itemLocks{locks: make(map[uint]*itemLock)}
}

// Lock blocks until id is free and returns the matching unlock function.
func (l *itemLocks) Lock(id uint) func() {
	l.mu.Lock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &itemLock{}
		l.locks[id] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
