package inventory

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"warehouse-inventory-api/internal/model"
)

var propActions = []model.Action{model.ActionCheckIn, model.ActionMove, model.ActionCheckOut}

// buildLog turns generated indexes into a log with strictly increasing seqs.
func buildLog(boxes, actions []int) []model.Event {
	n := len(boxes)
	if len(actions) < n {
		n = len(actions)
	}
	events := make([]model.Event, n)
	for i := 0; i < n; i++ {
		events[i] = model.Event{
			Seq:      int64(i + 1),
			Action:   propActions[actions[i]],
			BoxID:    fmt.Sprintf("B%d", boxes[i]),
			Location: fmt.Sprintf("%d-1-%d", boxes[i], i),
		}
	}
	return events
}

func sameSnapshot(a, b Snapshot) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// TestReduceDeterminism verifies reduction is deterministic and order independent.
// Property: Reduce(log) == Reduce(log) == Reduce(permute(log))
func TestReduceDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("reduce ignores input order", prop.ForAll(
		func(boxes, actions []int, rot int) bool {
			events := buildLog(boxes, actions)
			first := Reduce(events)
			if !sameSnapshot(first, Reduce(events)) {
				return false
			}

			permuted := make([]model.Event, 0, len(events))
			if len(events) > 0 {
				k := rot % len(events)
				for i := len(events) - 1; i >= 0; i-- {
					permuted = append(permuted, events[(i+k)%len(events)])
				}
			}
			return sameSnapshot(first, Reduce(permuted))
		},
		gen.SliceOf(gen.IntRange(0, 5)),
		gen.SliceOf(gen.IntRange(0, 2)),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

// TestStatusPartition verifies each box has exactly one status, derived from its latest event.
func TestStatusPartition(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("one status per box matching its latest action", prop.ForAll(
		func(boxes, actions []int) bool {
			events := buildLog(boxes, actions)
			s := Reduce(events)

			latest := make(map[string]model.Event)
			for _, e := range events {
				latest[e.BoxID] = e
			}
			if len(latest) != len(s) {
				return false
			}

			active := make(map[string]bool)
			for _, rec := range s.Active() {
				active[rec.BoxID] = true
			}
			for id, e := range latest {
				st := s.Status(id)
				if st != StatusOf(e.Action) {
					return false
				}
				if active[id] != (st == model.StatusInWarehouse) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 5)),
		gen.SliceOf(gen.IntRange(0, 2)),
	))

	properties.TestingRun(t)
}

// TestValidatedLogNeverDoubleChecksIn replays random requests through the
// validator and checks no two check-ins of a box are accepted without a
// check-out in between.
func TestValidatedLogNeverDoubleChecksIn(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("no duplicate check-in reaches the log", prop.ForAll(
		func(boxes, actions []int) bool {
			var seq int64
			v := Validator{NextSeq: func() (int64, error) { seq++; return seq, nil }}
			s := make(Snapshot)
			inside := make(map[string]bool)

			for _, req := range buildLog(boxes, actions) {
				e, err := v.Validate(Request{BoxID: req.BoxID, Action: req.Action, Location: req.Location}, s.Status(req.BoxID))
				if err != nil {
					if _, ok := AsRejection(err); !ok {
						return false
					}
					continue
				}
				switch e.Action {
				case model.ActionCheckIn:
					if inside[e.BoxID] {
						return false
					}
					inside[e.BoxID] = true
				case model.ActionMove:
					if !inside[e.BoxID] {
						return false
					}
				case model.ActionCheckOut:
					if !inside[e.BoxID] {
						return false
					}
					inside[e.BoxID] = false
				}
				s.Apply(*e)
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 3)),
		gen.SliceOf(gen.IntRange(0, 2)),
	))

	properties.TestingRun(t)
}

// TestResolveIdempotence verifies resolving a resolved id yields the same id.
func TestResolveIdempotence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	ix := testIndex()
	properties.Property("resolve(resolve(x)) == resolve(x)", prop.ForAll(
		func(code string) bool {
			first := ix.Resolve(code)
			return ix.Resolve(first.BoxID).BoxID == first.BoxID
		},
		gen.OneGenOf(gen.AlphaString(), gen.OneConstOf("A1", "x9", " b2 ", "D4", "a1")),
	))

	properties.TestingRun(t)
}
