package service

import "sync"

// spotLocker serializes the check-then-commit sequence per parking spot.
// Without it two concurrent requests for overlapping windows could both pass
// the conflict check before either inserts. Entries are refcounted so the
// map only holds spots with waiters.
type spotLocker struct {
	mu    sync.Mutex
	locks map[int]*spotLockEntry
}

type spotLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newSpotLocker() *spotLocker {
	return &spotLocker{locks: make(map[int]*spotLockEntry)}
}

func (l *spotLocker) Lock(spotID int) {
	l.mu.Lock()
	entry, ok := l.locks[spotID]
	if !ok {
		entry = &spotLockEntry{}
		l.locks[spotID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

func (l *spotLocker) Unlock(spotID int) {
	l.mu.Lock()
	entry := l.locks[spotID]
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, spotID)
	}
	l.mu.Unlock()

	entry.mu.Unlock()
}
