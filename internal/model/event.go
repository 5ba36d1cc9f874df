package model

import "time"

// Action is the kind of movement recorded for a box.
type Action string

const (
	ActionCheckIn  Action = "CHECK_IN"
	ActionMove     Action = "MOVE"
	ActionCheckOut Action = "CHECK_OUT"

	// ActionQuery is accepted by the validator but never appended to the log.
	ActionQuery Action = "QUERY"
)

// ParseAction maps a client supplied action name to an Action.
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionCheckIn, ActionMove, ActionCheckOut, ActionQuery:
		return Action(s), true
	}
	return "", false
}

// Event is one immutable entry of the inventory log.
// Seq orders the log; Timestamp is informational only.
type Event struct {
	Seq       int64     `json:"seq" bson:"seq"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Action    Action    `json:"action" bson:"action"`
	BoxID     string    `json:"box_id" bson:"box_id"`
	Location  string    `json:"location" bson:"location"`
	Pallet    string    `json:"pallet" bson:"pallet"`
}

// Sentinels stored in place of omitted values.
const (
	UnspecifiedLocation = "UNSPECIFIED"
	UnnamedPallet       = "UNNAMED"
)
