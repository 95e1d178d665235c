// internal/planning/errors.go

package planning

import "errors"

// Validation errors surface to the immediate caller before any computation.
// Everything else expected in this domain (partial data, unresolvable
// conflicts) is represented in return values, not errors.
var (
	ErrEmptyGroup        = errors.New("group has no members")
	ErrInvalidDuration   = errors.New("event duration must be positive")
	ErrInvalidWindow     = errors.New("availability window start must precede end")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrNilProfile        = errors.New("preference profile is nil")
	ErrGroupNotFound     = errors.New("friend group not found")
	ErrEventNotFound     = errors.New("event not found")
	ErrInvalidTransition = errors.New("invalid event status transition")
	ErrFeedbackExists    = errors.New("feedback already submitted for this event")
	ErrAttendanceDropped = errors.New("attendance has dropped below the group threshold")
	ErrNotGroupMember    = errors.New("user is not a member of this group")
	ErrNoSuggestions     = errors.New("no candidate suggestions supplied")
)
