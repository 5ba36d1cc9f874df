package coord

import (
	"context"
	"sync"
	"sync/atomic"
)

// lockEntry is a per-key mutex shared by the goroutines waiting on that key.
type lockEntry struct {
	ch   chan struct{}
	refs int
}

// MemoryLocker is an in-process keyed lock.
// Use this for single-instance deployments and tests.
type MemoryLocker struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

// NewMemoryLocker creates an empty keyed lock.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{entries: make(map[string]*lockEntry)}
}

// Lock acquires key. Entries are dropped once no goroutine references them.
func (l *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &lockEntry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	if ctx.Err() != nil {
		l.release(key, e)
		return nil, ErrLockTimeout
	}

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(key, e)
		})
	}, nil
}

func (l *MemoryLocker) release(key string, e *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Len returns the number of keys currently held or waited on.
func (l *MemoryLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// MemorySequencer is an atomic in-process counter.
type MemorySequencer struct {
	n atomic.Int64
}

// NewMemorySequencer creates a counter starting after floor.
func NewMemorySequencer(floor int64) *MemorySequencer {
	s := &MemorySequencer{}
	s.n.Store(floor)
	return s
}

// Next returns the next number.
func (s *MemorySequencer) Next(ctx context.Context) (int64, error) {
	return s.n.Add(1), nil
}

// Seed raises the counter to at least floor.
func (s *MemorySequencer) Seed(ctx context.Context, floor int64) error {
	for {
		cur := s.n.Load()
		if cur >= floor || s.n.CompareAndSwap(cur, floor) {
			return nil
		}
	}
}

// Current returns the last number handed out (or seeded).
func (s *MemorySequencer) Current() int64 {
	return s.n.Load()
}

var (
	_ Locker    = (*MemoryLocker)(nil)
	_ Sequencer = (*MemorySequencer)(nil)
)
