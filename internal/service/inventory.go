package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"warehouse-inventory-api/internal/coord"
	"warehouse-inventory-api/internal/inventory"
	"warehouse-inventory-api/internal/model"
	"warehouse-inventory-api/internal/queue"
	"warehouse-inventory-api/internal/repository"
)

// DefaultLockTimeout bounds how long a scan waits for another scan of the same box.
const DefaultLockTimeout = 5 * time.Second

// BoxView is the current state of one box with its reference data.
type BoxView struct {
	Resolution inventory.Resolution  `json:"resolution"`
	Status     model.Status          `json:"status"`
	Record     *model.SnapshotRecord `json:"record,omitempty"`
	Enrichment model.Enrichment      `json:"enrichment"`
	Warnings   []string              `json:"warnings,omitempty"`
}

// ScanRequest is one scan submitted by an operator.
type ScanRequest struct {
	Code     string
	Action   model.Action
	Location string
	Pallet   string
}

// ScanResult is the outcome of an accepted scan.
type ScanResult struct {
	BoxView
	Action           model.Action `json:"action"`
	Event            *model.Event `json:"event,omitempty"`
	PreviousLocation string       `json:"previous_location,omitempty"`
}

// InventoryListing is a filtered view of the boxes currently in the warehouse.
type InventoryListing struct {
	Rows       []model.InventoryRow `json:"rows"`
	Total      int                  `json:"total"`
	Highlights []string             `json:"highlights"`
}

// InventoryService runs the scan write path and serves the read projection.
type InventoryService struct {
	events    repository.EventRepository
	refs      repository.ReferenceRepository
	locker    coord.Locker
	seq       coord.Sequencer
	publisher queue.Publisher

	lockTimeout time.Duration
	now         func() time.Time

	index atomic.Pointer[inventory.ReferenceIndex]

	mu       sync.RWMutex
	snapshot inventory.Snapshot
}

// NewInventoryService creates a new inventory service.
// Returns nil if events or refs is nil (required dependencies).
// A nil locker, sequencer or publisher falls back to the in-process implementation.
func NewInventoryService(
	events repository.EventRepository,
	refs repository.ReferenceRepository,
	locker coord.Locker,
	seq coord.Sequencer,
	publisher queue.Publisher,
) *InventoryService {
	if events == nil || refs == nil {
		return nil
	}
	if locker == nil {
		locker = coord.NewMemoryLocker()
	}
	if seq == nil {
		seq = coord.NewMemorySequencer(0)
	}
	if publisher == nil {
		publisher = queue.NoopPublisher{}
	}

	s := &InventoryService{
		events:      events,
		refs:        refs,
		locker:      locker,
		seq:         seq,
		publisher:   publisher,
		lockTimeout: DefaultLockTimeout,
		now:         time.Now,
		snapshot:    inventory.Snapshot{},
	}
	s.index.Store(inventory.NewReferenceIndex(model.ReferenceTables{}))
	return s
}

// SetLockTimeout overrides DefaultLockTimeout.
func (s *InventoryService) SetLockTimeout(d time.Duration) {
	if d > 0 {
		s.lockTimeout = d
	}
}

// Bootstrap seeds the sequencer from the store, loads the reference tables
// and builds the read projection. Call once before serving.
func (s *InventoryService) Bootstrap(ctx context.Context) error {
	maxSeq, err := s.events.MaxSeq(ctx)
	if err != nil {
		return fmt.Errorf("failed to read max seq: %w", err)
	}
	if err := s.seq.Seed(ctx, maxSeq); err != nil {
		return err
	}

	if err := s.ReloadReferences(ctx); err != nil {
		return err
	}
	return s.Rebuild(ctx)
}

// Index returns the reference index currently in use.
func (s *InventoryService) Index() *inventory.ReferenceIndex {
	return s.index.Load()
}

// ReloadReferences reads the reference tables and swaps in a new index.
func (s *InventoryService) ReloadReferences(ctx context.Context) error {
	tables, err := s.refs.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reference tables: %w", err)
	}

	ix := inventory.NewReferenceIndex(tables)
	s.index.Store(ix)

	st := ix.Stats()
	log.Printf("[InventoryService] Reference index loaded - mappings:%d, items:%d, aliases:%d", st.Mappings, st.Items, st.Aliases)
	return nil
}

// Rebuild replays the whole log into a fresh projection. Records applied
// to the current projection while the log was being read are kept.
func (s *InventoryService) Rebuild(ctx context.Context) error {
	events, err := s.events.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	snap := inventory.Reduce(events)

	s.mu.Lock()
	snap.Merge(s.snapshot)
	s.snapshot = snap
	s.mu.Unlock()

	log.Printf("[InventoryService] Projection rebuilt - events:%d, boxes:%d", len(events), len(snap))
	return nil
}

// CatchUp applies events stored after the projection's last seq,
// e.g. ones appended by another instance.
func (s *InventoryService) CatchUp(ctx context.Context) (int, error) {
	s.mu.RLock()
	after := s.snapshot.LastSeq()
	s.mu.RUnlock()

	events, err := s.events.ListSince(ctx, after)
	if err != nil {
		return 0, fmt.Errorf("failed to list events since %d: %w", after, err)
	}

	applied := 0
	s.mu.Lock()
	for _, e := range events {
		if s.snapshot.Apply(e) {
			applied++
		}
	}
	s.mu.Unlock()
	return applied, nil
}

// Scan resolves the scanned code and performs the requested action.
// Rejections are returned as *inventory.Rejection and leave the log unchanged.
func (s *InventoryService) Scan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	ix := s.index.Load()
	res := ix.Resolve(req.Code)
	if res.BoxID == "" {
		return nil, inventory.ErrMissingBoxID
	}

	if req.Action == model.ActionQuery {
		view := s.view(ix, res)
		return &ScanResult{BoxView: view, Action: req.Action}, nil
	}
	if _, ok := model.ParseAction(string(req.Action)); !ok {
		return nil, inventory.ErrUnknownAction
	}

	c, err := s.commit(ctx, res.BoxID, req)
	if err != nil {
		return nil, err
	}
	ev, rec := c.event, c.record

	result := &ScanResult{
		BoxView: BoxView{
			Resolution: res,
			Status:     rec.Status,
			Record:     &rec,
			Enrichment: ix.Enrich(res.BoxID),
		},
		Action: ev.Action,
		Event:  ev,
	}
	result.Warnings = warnings(res, result.Enrichment)
	if ev.Action == model.ActionMove && c.hadPrev {
		result.PreviousLocation = c.prev.Location
	}

	msg := queue.NewInventoryEvent(*ev, res.Code, result.PreviousLocation, result.Enrichment)
	if err := s.publisher.Publish(ctx, msg); err != nil {
		log.Printf("[InventoryService] Warning: failed to publish event %d: %v", ev.Seq, err)
	}

	log.Printf("[InventoryService] %s %s seq=%d location=%s", ev.Action, ev.BoxID, ev.Seq, ev.Location)
	return result, nil
}

// committed is the outcome of one accepted transition.
type committed struct {
	event   *model.Event
	prev    model.SnapshotRecord
	hadPrev bool
	record  model.SnapshotRecord
}

// commit validates and appends one event while holding the box lock, then
// applies it to the projection. The lock is released before it returns.
func (s *InventoryService) commit(ctx context.Context, boxID string, req ScanRequest) (*committed, error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	unlock, err := s.locker.Lock(lockCtx, "box:"+boxID)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to lock box %s: %w", boxID, err)
	}
	defer unlock()

	// The store is authoritative inside the critical section; the projection may lag.
	history, err := s.events.ListByBox(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("failed to read box history: %w", err)
	}
	current := inventory.Reduce(history)
	prev, hadPrev := current.Get(boxID)

	v := inventory.Validator{
		NextSeq: func() (int64, error) { return s.seq.Next(ctx) },
		Now:     s.now,
	}
	ev, err := v.Validate(inventory.Request{
		BoxID:    boxID,
		Action:   req.Action,
		Location: req.Location,
		Pallet:   req.Pallet,
	}, current.Status(boxID))
	if err != nil {
		return nil, err
	}

	if err := s.append(ctx, ev); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.snapshot.Apply(*ev)
	rec, _ := s.snapshot.Get(boxID)
	s.mu.Unlock()
	return &committed{event: ev, prev: prev, hadPrev: hadPrev, record: rec}, nil
}

// append stores ev. A duplicate seq means the sequencer fell behind the store
// (e.g. another writer without shared coordination); it is reseeded and the
// append retried once with a fresh seq.
func (s *InventoryService) append(ctx context.Context, ev *model.Event) error {
	err := s.events.Append(ctx, *ev)
	if !errors.Is(err, repository.ErrDuplicateSeq) {
		if err != nil {
			return fmt.Errorf("failed to append event: %w", err)
		}
		return nil
	}

	maxSeq, err := s.events.MaxSeq(ctx)
	if err != nil {
		return fmt.Errorf("failed to read max seq: %w", err)
	}
	if err := s.seq.Seed(ctx, maxSeq); err != nil {
		return err
	}
	if ev.Seq, err = s.seq.Next(ctx); err != nil {
		return fmt.Errorf("failed to allocate sequence: %w", err)
	}

	log.Printf("[InventoryService] Sequence reseeded to %d after duplicate", maxSeq)
	if err := s.events.Append(ctx, *ev); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// Lookup returns the state of the box behind a scanned code,
// including checked-out boxes.
func (s *InventoryService) Lookup(ctx context.Context, code string) (*BoxView, error) {
	ix := s.index.Load()
	res := ix.Resolve(code)
	if res.BoxID == "" {
		return nil, inventory.ErrMissingBoxID
	}
	view := s.view(ix, res)
	return &view, nil
}

func (s *InventoryService) view(ix *inventory.ReferenceIndex, res inventory.Resolution) BoxView {
	s.mu.RLock()
	rec, ok := s.snapshot.Get(res.BoxID)
	s.mu.RUnlock()

	view := BoxView{
		Resolution: res,
		Status:     model.StatusNew,
		Enrichment: ix.Enrich(res.BoxID),
	}
	if ok {
		view.Status = rec.Status
		view.Record = &rec
	}
	view.Warnings = warnings(res, view.Enrichment)
	return view
}

func warnings(res inventory.Resolution, e model.Enrichment) []string {
	w := res.Warnings()
	if e.Dangling {
		w = append(w, inventory.WarnDanglingReference)
	}
	return w
}

// BoxEvents returns the stored history of the box behind a scanned code.
func (s *InventoryService) BoxEvents(ctx context.Context, code string) (inventory.Resolution, []model.Event, error) {
	res := s.index.Load().Resolve(code)
	if res.BoxID == "" {
		return res, nil, inventory.ErrMissingBoxID
	}

	events, err := s.events.ListByBox(ctx, res.BoxID)
	if err != nil {
		return res, nil, fmt.Errorf("failed to list box events: %w", err)
	}
	return res, events, nil
}

// ListInventory returns the enriched boxes currently in the warehouse that match query.
// Highlights are the location buckets of the matches when a query is given.
func (s *InventoryService) ListInventory(field inventory.Field, query string, exact bool) InventoryListing {
	s.mu.RLock()
	active := s.snapshot.Active()
	s.mu.RUnlock()

	rows := inventory.Search(s.index.Load().EnrichAll(active), field, query, exact)

	highlights := []string{}
	if inventory.Normalize(query) != "" {
		highlights = inventory.HighlightBuckets(rows)
	}

	return InventoryListing{Rows: rows, Total: len(rows), Highlights: highlights}
}

// Occupancy counts boxes in the warehouse per rack bucket.
func (s *InventoryService) Occupancy() map[string]int {
	s.mu.RLock()
	active := s.snapshot.Active()
	s.mu.RUnlock()

	return inventory.Occupancy(active)
}

// Ready reports whether the projection has been built.
func (s *InventoryService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot != nil && s.index.Load() != nil
}

// GetStats returns statistics about the projection and the stores.
func (s *InventoryService) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	tracked := len(s.snapshot)
	active := len(s.snapshot.Active())
	lastSeq := s.snapshot.LastSeq()
	s.mu.RUnlock()

	st := s.index.Load().Stats()
	stats := map[string]interface{}{
		"projection": map[string]interface{}{
			"tracked_boxes": tracked,
			"active_boxes":  active,
			"last_seq":      lastSeq,
		},
		"reference_index": map[string]interface{}{
			"mappings": st.Mappings,
			"items":    st.Items,
			"aliases":  st.Aliases,
		},
	}

	if eventStats, err := s.events.GetStats(ctx); err == nil {
		stats["event_store"] = eventStats
	} else {
		stats["event_store"] = map[string]interface{}{"error": err.Error()}
	}
	if refStats, err := s.refs.GetStats(ctx); err == nil {
		stats["reference_store"] = refStats
	} else {
		stats["reference_store"] = map[string]interface{}{"error": err.Error()}
	}
	return stats
}
