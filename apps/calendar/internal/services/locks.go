package services

import "sync"

// ownerLocks serializes the check-then-write sequences of one owner so two
// requests cannot both pass the conflict check before either is stored.
type ownerLocks struct {
	locks sync.Map
}

func (l *ownerLocks) lock(ownerID *string) func() {
	if ownerID == nil {
		return func() {}
	}

	value, _ := l.locks.LoadOrStore(*ownerID, &sync.Mutex{})
	mu, _ := value.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}
