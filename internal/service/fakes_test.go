package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"warehouse-inventory-api/internal/coord"
	"warehouse-inventory-api/internal/model"
	"warehouse-inventory-api/internal/queue"
	"warehouse-inventory-api/internal/repository"
)

type memEvents struct {
	mu     sync.Mutex
	events []model.Event

	// afterListAll runs once ListAll has read the log, before it returns.
	afterListAll func()
}

func (m *memEvents) Append(ctx context.Context, e model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.events {
		if x.Seq == e.Seq {
			return repository.ErrDuplicateSeq
		}
	}
	m.events = append(m.events, e)
	return nil
}

func (m *memEvents) filter(keep func(model.Event) bool) []model.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Event, 0)
	for _, e := range m.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func (m *memEvents) ListAll(ctx context.Context) ([]model.Event, error) {
	out := m.filter(func(model.Event) bool { return true })
	if m.afterListAll != nil {
		m.afterListAll()
	}
	return out, nil
}

func (m *memEvents) ListByBox(ctx context.Context, boxID string) ([]model.Event, error) {
	return m.filter(func(e model.Event) bool { return e.BoxID == boxID }), nil
}

func (m *memEvents) ListSince(ctx context.Context, afterSeq int64) ([]model.Event, error) {
	return m.filter(func(e model.Event) bool { return e.Seq > afterSeq }), nil
}

func (m *memEvents) MaxSeq(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var max int64
	for _, e := range m.events {
		if e.Seq > max {
			max = e.Seq
		}
	}
	return max, nil
}

func (m *memEvents) GetStats(ctx context.Context) (map[string]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]interface{}{"total_events": len(m.events)}, nil
}

func (m *memEvents) Close() error { return nil }

func (m *memEvents) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

type memRefs struct {
	mu     sync.Mutex
	tables model.ReferenceTables
}

func (m *memRefs) Load(ctx context.Context) (model.ReferenceTables, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.ReferenceTables{
		Mappings: append([]model.BoxMapping(nil), m.tables.Mappings...),
		Items:    append([]model.ItemMaster(nil), m.tables.Items...),
		Aliases:  append([]model.AliasEntry(nil), m.tables.Aliases...),
	}, nil
}

func upsert[T any](existing []T, mode model.LoadMode, rows []T, key func(T) string) []T {
	if mode == model.LoadReplace {
		existing = nil
	}
	for _, r := range rows {
		replaced := false
		for i := range existing {
			if key(existing[i]) == key(r) {
				existing[i] = r
				replaced = true
			}
		}
		if !replaced {
			existing = append(existing, r)
		}
	}
	return existing
}

func (m *memRefs) SaveMappings(ctx context.Context, mode model.LoadMode, rows []model.BoxMapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables.Mappings = upsert(m.tables.Mappings, mode, rows, func(r model.BoxMapping) string { return r.BoxID })
	return nil
}

func (m *memRefs) SaveItems(ctx context.Context, mode model.LoadMode, rows []model.ItemMaster) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables.Items = upsert(m.tables.Items, mode, rows, func(r model.ItemMaster) string { return r.ItemCode })
	return nil
}

func (m *memRefs) SaveAliases(ctx context.Context, mode model.LoadMode, rows []model.AliasEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables.Aliases = upsert(m.tables.Aliases, mode, rows, func(r model.AliasEntry) string { return r.AliasCode })
	return nil
}

func (m *memRefs) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

func (m *memRefs) Close() error { return nil }

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []queue.InventoryEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, e queue.InventoryEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// lockCheckingPublisher tries to take the box lock of every event it receives.
type lockCheckingPublisher struct {
	locker coord.Locker

	mu   sync.Mutex
	errs []error
}

func (p *lockCheckingPublisher) Publish(ctx context.Context, e queue.InventoryEvent) error {
	lockCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	unlock, err := p.locker.Lock(lockCtx, "box:"+e.BoxID)
	if err == nil {
		unlock()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs = append(p.errs, err)
	return nil
}

func (p *lockCheckingPublisher) Close() error { return nil }

var (
	_ repository.EventRepository     = (*memEvents)(nil)
	_ repository.ReferenceRepository = (*memRefs)(nil)
	_ queue.Publisher                = (*recordingPublisher)(nil)
	_ queue.Publisher                = (*lockCheckingPublisher)(nil)
)
