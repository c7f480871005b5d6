package service

import "sync"

// parentLocks serializes read-modify-write sequences per parent entity id.
// Cascade-appends and channel position assignment for one parent run under
// its lock, so concurrent creations cannot compute the same position or lose
// an append. Locks are never removed; the map grows with the set of parents
// mutated by this process, which is bounded by the working set.
type parentLocks struct {
	locks sync.Map // parent id -> *sync.Mutex
}

func newParentLocks() *parentLocks {
	return &parentLocks{}
}

// Lock acquires the mutex for parentID, creating it on first use, and
// returns the unlock function.
func (p *parentLocks) Lock(parentID string) func() {
	muInterface, _ := p.locks.LoadOrStore(parentID, &sync.Mutex{})
	mu := muInterface.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
