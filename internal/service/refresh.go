package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// RefreshConfig holds configuration for the refresh scheduler.
type RefreshConfig struct {
	// Interval is how often reference tables are reloaded and new events applied.
	// Default: 30 seconds
	Interval time.Duration

	// RebuildEvery forces a full projection rebuild every N runs,
	// picking up events that arrived with a seq below the last applied one.
	// Default: 10
	RebuildEvery int
}

// DefaultRefreshConfig returns default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Interval:     30 * time.Second,
		RebuildEvery: 10,
	}
}

// refresher is the part of InventoryService the scheduler drives.
type refresher interface {
	ReloadReferences(ctx context.Context) error
	CatchUp(ctx context.Context) (int, error)
	Rebuild(ctx context.Context) error
}

// RefreshScheduler periodically reloads reference data and the read projection.
type RefreshScheduler struct {
	svc       refresher
	config    RefreshConfig
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	runs      int
	mu        sync.Mutex
}

// NewRefreshScheduler creates a new refresh scheduler.
func NewRefreshScheduler(svc refresher, config RefreshConfig) *RefreshScheduler {
	def := DefaultRefreshConfig()
	if config.Interval <= 0 {
		config.Interval = def.Interval
	}
	if config.RebuildEvery <= 0 {
		config.RebuildEvery = def.RebuildEvery
	}

	return &RefreshScheduler{
		svc:    svc,
		config: config,
		stopCh: make(chan struct{}),
	}
}

// Start begins the refresh loop.
func (s *RefreshScheduler) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.ticker = time.NewTicker(s.config.Interval)
	s.mu.Unlock()

	log.Printf("[RefreshScheduler] Started - Interval: %v, RebuildEvery: %d", s.config.Interval, s.config.RebuildEvery)

	go s.run()
}

func (s *RefreshScheduler) run() {
	for {
		select {
		case <-s.ticker.C:
			s.RunNow()
		case <-s.stopCh:
			log.Printf("[RefreshScheduler] Stopped")
			return
		}
	}
}

// RunNow performs one refresh. Errors are logged; the previous index and
// projection stay in place.
func (s *RefreshScheduler) RunNow() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Interval)
	defer cancel()

	s.mu.Lock()
	s.runs++
	full := s.runs%s.config.RebuildEvery == 0
	s.mu.Unlock()

	if err := s.svc.ReloadReferences(ctx); err != nil {
		log.Printf("[RefreshScheduler] Error reloading references: %v", err)
	}

	if full {
		if err := s.svc.Rebuild(ctx); err != nil {
			log.Printf("[RefreshScheduler] Error rebuilding projection: %v", err)
		}
		return
	}

	applied, err := s.svc.CatchUp(ctx)
	if err != nil {
		log.Printf("[RefreshScheduler] Error applying new events: %v", err)
		return
	}
	if applied > 0 {
		log.Printf("[RefreshScheduler] Applied %d new events", applied)
	}
}

// Stop stops the refresh scheduler.
func (s *RefreshScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.isRunning = false
	})
}
