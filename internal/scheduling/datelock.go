package scheduling

import (
	"context"
	"sync"
	"time"
)

// dateLocks serializes booking commits per calendar day. Commits for
// different dates proceed in parallel; two commits for the same date take
// turns through the read-check-write critical section. Acquisition is
// bounded: a caller that cannot get the lock within wait gives up instead
// of queueing indefinitely.
type dateLocks struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newDateLocks() *dateLocks {
	return &dateLocks{locks: make(map[string]chan struct{})}
}

func (d *dateLocks) lockFor(key string) chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	lock, ok := d.locks[key]
	if !ok {
		lock = make(chan struct{}, 1)
		d.locks[key] = lock
	}
	return lock
}

// Acquire takes the lock for key, waiting at most wait. It returns a
// release func on success and false when the wait expired or ctx was
// cancelled first.
func (d *dateLocks) Acquire(ctx context.Context, key string, wait time.Duration) (func(), bool) {
	lock := d.lockFor(key)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case lock <- struct{}{}:
		return func() { <-lock }, true
	case <-timer.C:
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}
