package inventory

import (
	"sort"

	"warehouse-inventory-api/internal/model"
)

// Snapshot is the current record of every box that appears in the log.
type Snapshot map[string]model.SnapshotRecord

// StatusOf maps the action of a box's latest event to its status.
func StatusOf(a model.Action) model.Status {
	switch a {
	case model.ActionCheckIn, model.ActionMove:
		return model.StatusInWarehouse
	case model.ActionCheckOut:
		return model.StatusCheckedOut
	}
	return model.StatusNew
}

// Reduce folds the log into a snapshot. Only the event with the highest
// sequence number of each box matters, so the result does not depend on
// the order of events.
func Reduce(events []model.Event) Snapshot {
	s := make(Snapshot)
	for _, e := range events {
		s.Apply(e)
	}
	return s
}

// Apply folds one event into the snapshot. It reports whether the event
// replaced the box's record; older or non-logged events are ignored.
func (s Snapshot) Apply(e model.Event) bool {
	if StatusOf(e.Action) == model.StatusNew {
		return false
	}
	if cur, ok := s[e.BoxID]; ok && cur.Seq >= e.Seq {
		return false
	}
	s[e.BoxID] = model.SnapshotRecord{
		BoxID:      e.BoxID,
		Status:     StatusOf(e.Action),
		Location:   e.Location,
		Pallet:     e.Pallet,
		Seq:        e.Seq,
		LastAction: e.Action,
		UpdatedAt:  e.Timestamp,
	}
	return true
}

// Merge folds the records of other into s, keeping the higher seq per box.
func (s Snapshot) Merge(other Snapshot) {
	for boxID, rec := range other {
		if cur, ok := s[boxID]; ok && cur.Seq >= rec.Seq {
			continue
		}
		s[boxID] = rec
	}
}

// Get returns the record of a box, including checked-out boxes.
func (s Snapshot) Get(boxID string) (model.SnapshotRecord, bool) {
	rec, ok := s[boxID]
	return rec, ok
}

// Status returns the status of a box; boxes without events are New.
func (s Snapshot) Status(boxID string) model.Status {
	if rec, ok := s[boxID]; ok {
		return rec.Status
	}
	return model.StatusNew
}

// Active returns the boxes currently in the warehouse, ordered by box id.
func (s Snapshot) Active() []model.SnapshotRecord {
	out := make([]model.SnapshotRecord, 0, len(s))
	for _, rec := range s {
		if rec.Status == model.StatusInWarehouse {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BoxID < out[j].BoxID })
	return out
}

// LastSeq returns the highest sequence number folded into the snapshot.
func (s Snapshot) LastSeq() int64 {
	var last int64
	for _, rec := range s {
		if rec.Seq > last {
			last = rec.Seq
		}
	}
	return last
}

// Clone returns an independent copy.
func (s Snapshot) Clone() Snapshot {
	c := make(Snapshot, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}
