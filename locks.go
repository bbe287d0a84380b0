package tally

import "sync"

// billLocks serializes mutations per bill. Two payments against the same
// bill queue behind one mutex; bills never contend with each other.
// Entries are never evicted: one mutex per touched bill is cheap and the
// set of active bills in a clinic is small.
type billLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newBillLocks() *billLocks {
	return &billLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for the given bill and returns the unlock func.
func (b *billLocks) acquire(billID string) func() {
	b.mu.Lock()
	l, ok := b.locks[billID]
	if !ok {
		l = &sync.Mutex{}
		b.locks[billID] = l
	}
	b.mu.Unlock()

	l.Lock()
	return l.Unlock
}
