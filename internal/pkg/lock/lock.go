// Package lock provides keyed mutexes: one lock per chat for game state and
// one per user for balance operations.
package lock

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// ErrLockTimeout is returned when a key stays held past the caller's wait bound.
var ErrLockTimeout = errors.New("lock acquisition timeout")

// KeyLock hands out one mutex per int64 key (a chat ID or a user ID).
// Mutexes are created on first use and kept for the lifetime of the process.
type KeyLock struct {
	locks sync.Map // map[int64]*sync.Mutex
}

// NewKeyLock creates a new KeyLock instance.
func NewKeyLock() *KeyLock {
	return &KeyLock{}
}

// getLock retrieves or creates the mutex for the given key.
func (kl *KeyLock) getLock(key int64) *sync.Mutex {
	if v, ok := kl.locks.Load(key); ok {
		return v.(*sync.Mutex)
	}
	actual, _ := kl.locks.LoadOrStore(key, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// Lock acquires the lock for a key, blocking until it is available.
func (kl *KeyLock) Lock(key int64) {
	kl.getLock(key).Lock()
}

// Unlock releases the lock for a key.
func (kl *KeyLock) Unlock(key int64) {
	if v, ok := kl.locks.Load(key); ok {
		v.(*sync.Mutex).Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
func (kl *KeyLock) TryLock(key int64) bool {
	return kl.getLock(key).TryLock()
}

// LockWithTimeout attempts to acquire the lock until timeout elapses or ctx is done.
// Returns true if the lock was acquired.
func (kl *KeyLock) LockWithTimeout(ctx context.Context, key int64, timeout time.Duration) bool {
	mu := kl.getLock(key)
	if mu.TryLock() {
		return true
	}

	done := make(chan struct{})
	go func() {
		mu.Lock()
		close(done)
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case <-done:
		return true
	case <-timeoutCtx.Done():
		// The waiter still gets the mutex eventually; hand it straight back.
		go func() {
			<-done
			mu.Unlock()
		}()
		return false
	}
}

// WithLock executes fn while holding the key's lock.
func (kl *KeyLock) WithLock(key int64, fn func() error) error {
	kl.Lock(key)
	defer kl.Unlock(key)
	return fn()
}

// WithLockContext executes fn while holding the key's lock, giving up with
// ErrLockTimeout if the lock is not acquired within timeout.
func (kl *KeyLock) WithLockContext(ctx context.Context, key int64, timeout time.Duration, fn func() error) error {
	if !kl.LockWithTimeout(ctx, key, timeout) {
		if err := ctx.Err(); err != nil {
			return err
		}
		return ErrLockTimeout
	}
	defer kl.Unlock(key)

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn()
}

// WithLocks acquires the locks of several keys in ascending order, so two
// callers locking overlapping key sets can never deadlock.
func (kl *KeyLock) WithLocks(keys []int64, fn func() error) error {
	ordered := slices.Clone(keys)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)
	for _, k := range ordered {
		kl.Lock(k)
	}
	defer func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			kl.Unlock(ordered[i])
		}
	}()
	return fn()
}

// IsLocked reports whether a key's lock is currently held.
// This is a point-in-time check and may change immediately after.
func (kl *KeyLock) IsLocked(key int64) bool {
	v, ok := kl.locks.Load(key)
	if !ok {
		return false
	}
	mu := v.(*sync.Mutex)
	if mu.TryLock() {
		mu.Unlock()
		return false
	}
	return true
}
