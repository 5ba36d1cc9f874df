package inventory

import "errors"

// Rejection is a recoverable refusal of a requested transition.
// Nothing is appended to the log when a request is rejected.
type Rejection struct {
	Code    string
	Message string
}

func (r *Rejection) Error() string { return r.Message }

var (
	ErrDuplicateCheckIn  = &Rejection{Code: "DUPLICATE_CHECK_IN", Message: "box is already in the warehouse"}
	ErrNotInWarehouse    = &Rejection{Code: "NOT_IN_WAREHOUSE", Message: "box is not in the warehouse"}
	ErrMissingLocation   = &Rejection{Code: "MISSING_LOCATION", Message: "a destination location is required"}
	ErrAlreadyCheckedOut = &Rejection{Code: "ALREADY_CHECKED_OUT", Message: "box is already checked out"}
	ErrNeverCheckedIn    = &Rejection{Code: "NEVER_CHECKED_IN", Message: "box was never checked in"}
	ErrMissingBoxID      = &Rejection{Code: "MISSING_BOX_ID", Message: "a box code is required"}
	ErrUnknownAction     = &Rejection{Code: "UNKNOWN_ACTION", Message: "unsupported action"}
)

// Non-fatal lookup misses reported alongside results.
const (
	WarnUnknownAlias      = "UNKNOWN_ALIAS"
	WarnDanglingReference = "DANGLING_REFERENCE"
)

// AsRejection reports whether err is, or wraps, a Rejection.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
