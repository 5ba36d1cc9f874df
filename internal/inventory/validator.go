package inventory

import (
	"fmt"
	"strings"
	"time"

	"warehouse-inventory-api/internal/model"
)

// Request is a requested action on a resolved box.
type Request struct {
	BoxID    string
	Action   model.Action
	Location string
	Pallet   string
}

// Validator decides whether a request is legal given the box's current status.
type Validator struct {
	// NextSeq allocates the sequence number of an accepted event.
	NextSeq func() (int64, error)
	// Now stamps accepted events; defaults to time.Now.
	Now func() time.Time
}

// Validate returns the event to append, or a *Rejection.
// A Query request is accepted with a nil event.
//
//	New         --CheckIn-->  InWarehouse(loc)
//	InWarehouse --Move-->     InWarehouse(loc')
//	InWarehouse --CheckOut--> CheckedOut
//	CheckedOut  --CheckIn-->  InWarehouse(loc)
func (v Validator) Validate(req Request, current model.Status) (*model.Event, error) {
	if strings.TrimSpace(req.BoxID) == "" {
		return nil, ErrMissingBoxID
	}

	location := strings.TrimSpace(req.Location)
	pallet := strings.TrimSpace(req.Pallet)

	switch req.Action {
	case model.ActionQuery:
		return nil, nil
	case model.ActionCheckIn:
		if current == model.StatusInWarehouse {
			return nil, ErrDuplicateCheckIn
		}
	case model.ActionMove:
		if current != model.StatusInWarehouse {
			return nil, ErrNotInWarehouse
		}
		if location == "" {
			return nil, ErrMissingLocation
		}
	case model.ActionCheckOut:
		switch current {
		case model.StatusCheckedOut:
			return nil, ErrAlreadyCheckedOut
		case model.StatusNew:
			return nil, ErrNeverCheckedIn
		}
	default:
		return nil, ErrUnknownAction
	}

	if location == "" {
		location = model.UnspecifiedLocation
	}
	if pallet == "" {
		pallet = model.UnnamedPallet
	}

	seq, err := v.NextSeq()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate sequence: %w", err)
	}

	now := time.Now
	if v.Now != nil {
		now = v.Now
	}

	return &model.Event{
		Seq:       seq,
		Timestamp: now().UTC(),
		Action:    req.Action,
		BoxID:     req.BoxID,
		Location:  location,
		Pallet:    pallet,
	}, nil
}
