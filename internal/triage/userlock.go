package triage

import "sync"

// userLocks serializes decision transactions per user. Lock granularity is
// the user, never the process: requests for different users are fully
// independent, while OTC/strike/quota mutations for one user never
// interleave.
//
// Locks are created on first use and kept for the process lifetime. The
// entry is a pointer-sized mutex per user seen, which is fine for the
// engine's working set; eviction would race with holders.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

// get returns the mutex owning the given user ID.
func (ul *userLocks) get(userID string) *sync.Mutex {
	ul.mu.Lock()
	defer ul.mu.Unlock()
	m, ok := ul.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		ul.locks[userID] = m
	}
	return m
}
