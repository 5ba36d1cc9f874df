// Package coord serializes writes per box and allocates event sequence numbers.
package coord

import (
	"context"
	"time"
)

// Locker grants exclusive access to a key.
// This abstraction allows swapping between an in-process lock (single instance)
// and a Redis lock (several instances sharing one event store).
type Locker interface {
	// Lock blocks until the key is held or ctx is done. The returned func releases it.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Sequencer hands out strictly increasing sequence numbers.
type Sequencer interface {
	// Next returns a number greater than every number returned before.
	Next(ctx context.Context) (int64, error)

	// Seed raises the counter to at least floor, e.g. the store's highest seq.
	Seed(ctx context.Context, floor int64) error
}

// Common coordination errors
type CoordError string

func (e CoordError) Error() string { return string(e) }

const (
	// ErrLockTimeout indicates the key could not be acquired before ctx expired.
	ErrLockTimeout CoordError = "lock timeout"
)

// Lock retry pacing shared by the implementations that poll.
const (
	lockRetryMin = 5 * time.Millisecond
	lockRetryMax = 200 * time.Millisecond
)
