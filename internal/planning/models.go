// internal/planning/models.go

package planning

import (
	"time"

	"github.com/google/uuid"
)

// User is the planning-side view of a member. The auth module owns accounts;
// the planner only needs identity, display name and timezone.
type User struct {
	ID          int64  `json:"id" db:"id"`
	Username    string `json:"username" db:"username"`
	DisplayName string `json:"display_name" db:"display_name"`
	Timezone    string `json:"timezone" db:"timezone"`
}

// PreferenceProfile holds a member's learned and edited preference weights.
// All weights live in [0,1]. Only the FeedbackProcessor and the explicit
// profile-edit endpoint mutate it; the engines treat it as read-only input.
type PreferenceProfile struct {
	UserID           int64              `json:"user_id" db:"user_id"`
	CategoryWeights  map[string]float64 `json:"category_weights"`
	AttributeWeights map[string]float64 `json:"attribute_weights"`
	UpdatedAt        time.Time          `json:"updated_at" db:"updated_at"`
}

// NewPreferenceProfile returns an empty profile for a user with no history.
func NewPreferenceProfile(userID int64) *PreferenceProfile {
	return &PreferenceProfile{
		UserID:           userID,
		CategoryWeights:  map[string]float64{},
		AttributeWeights: map[string]float64{},
	}
}

// Clone returns a deep copy so engine code can return updated profiles
// without mutating the caller's snapshot.
func (p *PreferenceProfile) Clone() *PreferenceProfile {
	if p == nil {
		return nil
	}
	out := &PreferenceProfile{
		UserID:           p.UserID,
		CategoryWeights:  make(map[string]float64, len(p.CategoryWeights)),
		AttributeWeights: make(map[string]float64, len(p.AttributeWeights)),
		UpdatedAt:        p.UpdatedAt,
	}
	for k, v := range p.CategoryWeights {
		out.CategoryWeights[k] = v
	}
	for k, v := range p.AttributeWeights {
		out.AttributeWeights[k] = v
	}
	return out
}

// AvailabilityWindow is a contiguous UTC interval during which a user is free.
// Start and End are absolute instants; timezone handling happens at the API
// boundary. A user with zero windows has unknown availability, not none.
type AvailabilityWindow struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	Start      time.Time `json:"start" db:"start_time"`
	End        time.Time `json:"end" db:"end_time"`
	Recurrence *string   `json:"recurrence,omitempty" db:"recurrence"`
}

// Validate enforces the start < end invariant.
func (w AvailabilityWindow) Validate() error {
	if !w.Start.Before(w.End) {
		return ErrInvalidWindow
	}
	return nil
}

// FriendGroup is the planning unit: an ordered member list with optional
// per-member priority weights used by the optimizer and conflict resolver.
type FriendGroup struct {
	ID        int64   `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	CreatedBy int64   `json:"created_by" db:"created_by"`
	MemberIDs []int64 `json:"member_ids"`
	// PriorityWeights maps member id -> weight; missing entries default to 1.0.
	PriorityWeights map[int64]float64 `json:"priority_weights,omitempty"`
	// MinAttendance is the fraction of total weight required to finalize an
	// event; zero means "use the configured default".
	MinAttendance float64   `json:"min_attendance" db:"min_attendance"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Weight returns the priority weight for a member, defaulting to 1.0.
func (g *FriendGroup) Weight(userID int64) float64 {
	if w, ok := g.PriorityWeights[userID]; ok && w > 0 {
		return w
	}
	return 1.0
}

// TotalWeight is the sum of all member weights; the denominator for
// attendance fractions.
func (g *FriendGroup) TotalWeight() float64 {
	total := 0.0
	for _, id := range g.MemberIDs {
		total += g.Weight(id)
	}
	return total
}

// HasMember reports whether userID belongs to the group.
func (g *FriendGroup) HasMember(userID int64) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Suggestion is a candidate activity or venue, produced by the suggestions
// catalog (the external search/filter step) and scored by the engine.
type Suggestion struct {
	ID         int64             `json:"id" db:"id"`
	Name       string            `json:"name" db:"name"`
	Category   string            `json:"category" db:"category"`
	Attributes map[string]string `json:"attributes"`
}

// Slot is a candidate meeting interval computed by the optimizer.
type Slot struct {
	Start                  time.Time `json:"start"`
	End                    time.Time `json:"end"`
	AttendeeIDs            []int64   `json:"attendee_ids"`
	AttendanceFraction     float64   `json:"attendance_fraction"`
	IncompleteAvailability bool      `json:"incomplete_availability"`
}

// Duration is the slot length.
func (s Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Overlaps reports whether the slot intersects [start, end).
func (s Slot) Overlaps(start, end time.Time) bool {
	return s.Start.Before(end) && start.Before(s.End)
}

// RankedSuggestion pairs a suggestion with its group consensus score.
type RankedSuggestion struct {
	Suggestion      Suggestion        `json:"suggestion"`
	ConsensusScore  float64           `json:"consensus_score"`
	Variance        float64           `json:"variance"`
	PerMemberScores map[int64]float64 `json:"per_member_scores"`
}

// SplitOption proposes an event for a subset of the group when no single
// slot works for everyone.
type SplitOption struct {
	MemberIDs []int64 `json:"member_ids"`
	Slot      Slot    `json:"slot"`
}

// PartialOption is the best below-threshold slot together with who misses it.
type PartialOption struct {
	Slot        Slot    `json:"slot"`
	AbsenteeIDs []int64 `json:"absentee_ids"`
}

// ConflictResolution is the structured outcome of conflict handling.
// "No slot works" is a normal value here, never an error.
type ConflictResolution struct {
	Alternatives  []Slot         `json:"alternatives"`
	BestPartial   *PartialOption `json:"best_partial,omitempty"`
	SplitOptions  []SplitOption  `json:"split_options,omitempty"`
	NeedsMoreData bool           `json:"needs_more_data"`
}

// EventStatus is the event lifecycle state.
type EventStatus string

const (
	StatusPending   EventStatus = "pending"
	StatusConfirmed EventStatus = "confirmed"
	StatusCancelled EventStatus = "cancelled"
)

// CanTransitionTo encodes the lifecycle state machine:
// pending -> confirmed, pending -> cancelled, confirmed -> cancelled.
// Nothing leaves cancelled.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	default:
		return false
	}
}

// Event is a planned gathering. Cancellation is a soft transition; the row
// and its feedback survive so the group keeps its history.
type Event struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	GroupID      int64       `json:"group_id" db:"group_id"`
	SuggestionID *int64      `json:"suggestion_id,omitempty" db:"suggestion_id"`
	Title        string      `json:"title" db:"title"`
	Start        time.Time   `json:"start" db:"start_time"`
	End          time.Time   `json:"end" db:"end_time"`
	Status       EventStatus `json:"status" db:"status"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	FinalizedAt  *time.Time  `json:"finalized_at,omitempty" db:"finalized_at"`
	CancelledAt  *time.Time  `json:"cancelled_at,omitempty" db:"cancelled_at"`
}

// Slot returns the event's chosen time window as a Slot value.
func (e *Event) Slot() Slot {
	return Slot{Start: e.Start, End: e.End}
}

// Feedback is a post-event rating. The learner only reads the numeric
// rating; the comment is stored for display.
type Feedback struct {
	ID        int64     `json:"id" db:"id"`
	EventID   uuid.UUID `json:"event_id" db:"event_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   *string   `json:"comment,omitempty" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
