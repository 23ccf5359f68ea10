package usecase

import (
	"sync"

	"github.com/google/uuid"
)

// carLocks hands out one mutex per car id. Entries are dropped once no
// goroutine holds or waits for them.
type carLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*carLock
}

type carLock struct {
	mu      sync.Mutex
	waiters int
}

func newCarLocks() *carLocks {
	return &carLocks{locks: make(map[uuid.UUID]*carLock)}
}

// Lock blocks until the caller owns the car's lock and returns the release func.
func (l *carLocks) Lock(carID uuid.UUID) func() {
	l.mu.Lock()
	lk, ok := l.locks[carID]
	if !ok {
		lk = &carLock{}
		l.locks[carID] = lk
	}
	lk.waiters++
	l.mu.Unlock()

	lk.mu.Lock()

	return func() {
		lk.mu.Unlock()

		l.mu.Lock()
		lk.waiters--
		if lk.waiters == 0 {
			delete(l.locks, carID)
		}
		l.mu.Unlock()
	}
}
