package plaidsync

import "sync"

// itemLocks provides per-item mutual exclusion so at most one sync
// invocation per bank connection is in flight. Non-blocking: losers get
// ErrSyncInProgress instead of queueing, since a concurrent sync will
// pick up the same cursor anyway.
type itemLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newItemLocks() *itemLocks {
	return &itemLocks{held: make(map[string]struct{})}
}

// TryAcquire takes the lock for the given item id. Returns false if the
// lock is already held.
func (l *itemLocks) TryAcquire(itemID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.held[itemID]; taken {
		return false
	}
	l.held[itemID] = struct{}{}
	return true
}

// Release frees the lock for the given item id.
func (l *itemLocks) Release(itemID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, itemID)
}
