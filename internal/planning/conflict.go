// internal/planning/conflict.go

package planning

import (
	"sort"
	"time"
)

// ConflictResolver turns a chosen or rejected time window into an attendance
// decision, and when nothing satisfies the group's threshold, produces a
// structured set of remediation options instead of an error.
type ConflictResolver struct {
	optimizer       *Optimizer
	minAttendance   float64
	maxAlternatives int
}

// NewConflictResolver creates a resolver. minAttendance is the default
// threshold for groups that do not set their own; maxAlternatives caps the
// alternatives list.
func NewConflictResolver(optimizer *Optimizer, minAttendance float64, maxAlternatives int) *ConflictResolver {
	if minAttendance <= 0 || minAttendance > 1 {
		minAttendance = 0.5
	}
	if maxAlternatives <= 0 {
		maxAlternatives = 5
	}
	return &ConflictResolver{
		optimizer:       optimizer,
		minAttendance:   minAttendance,
		maxAlternatives: maxAlternatives,
	}
}

// Threshold returns the attendance threshold in effect for a group.
func (r *ConflictResolver) Threshold(group *FriendGroup) float64 {
	if group != nil && group.MinAttendance > 0 {
		return group.MinAttendance
	}
	return r.minAttendance
}

// AttendancePercentage is the weighted share of the group attending a slot.
func (r *ConflictResolver) AttendancePercentage(slot Slot, group *FriendGroup) float64 {
	total := group.TotalWeight()
	if total <= 0 {
		return 0
	}
	attending := 0.0
	for _, id := range slot.AttendeeIDs {
		if group.HasMember(id) {
			attending += group.Weight(id)
		}
	}
	return attending / total
}

// AttendanceAt recomputes attendance for an arbitrary interval from current
// windows, returning the fraction and the attending member ids. Used when
// finalizing an event, since availability may have changed since planning.
func (r *ConflictResolver) AttendanceAt(group *FriendGroup, windowsByUser map[int64][]AvailabilityWindow, start, end time.Time) (float64, []int64) {
	total := group.TotalWeight()
	if total <= 0 || !start.Before(end) {
		return 0, nil
	}

	attending := 0.0
	var attendees []int64
	for _, id := range group.MemberIDs {
		if coversInterval(mergeWindows(windowsByUser[id]), start, end) {
			attending += group.Weight(id)
			attendees = append(attendees, id)
		}
	}
	return attending / total, attendees
}

// SuggestAlternatives re-runs the optimizer with the rejected slot's exact
// interval carved out of every member's availability, returning the
// next-best slots ranked by attendance desc, duration desc, start asc.
func (r *ConflictResolver) SuggestAlternatives(group *FriendGroup, windowsByUser map[int64][]AvailabilityWindow, duration time.Duration, rejected Slot) ([]Slot, error) {
	carved := carveInterval(windowsByUser, rejected.Start, rejected.End)
	slots, err := r.optimizer.FindCommonAvailability(group, carved, duration)
	if err != nil {
		return nil, err
	}
	rankSlots(slots)
	if len(slots) > r.maxAlternatives {
		slots = slots[:r.maxAlternatives]
	}
	return slots, nil
}

// Resolve computes the conflict outcome for a group. A rejected slot, when
// given, is excluded from consideration. "No viable slot" is a normal
// result: alternatives come back empty and the remediation fields carry the
// best partial slot, a two-way group split, and the more-data signal.
func (r *ConflictResolver) Resolve(group *FriendGroup, windowsByUser map[int64][]AvailabilityWindow, duration time.Duration, rejected *Slot) (*ConflictResolution, error) {
	if group == nil || len(group.MemberIDs) == 0 {
		return nil, ErrEmptyGroup
	}
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}

	windows := windowsByUser
	if rejected != nil {
		windows = carveInterval(windowsByUser, rejected.Start, rejected.End)
	}

	slots, err := r.optimizer.FindCommonAvailability(group, windows, duration)
	if err != nil {
		return nil, err
	}
	rankSlots(slots)

	needsMoreData := false
	for _, id := range group.MemberIDs {
		if len(windowsByUser[id]) == 0 {
			needsMoreData = true
			break
		}
	}

	threshold := r.Threshold(group)
	var viable []Slot
	for _, s := range slots {
		if s.AttendanceFraction >= threshold {
			viable = append(viable, s)
		}
	}

	if len(viable) > 0 {
		if len(viable) > r.maxAlternatives {
			viable = viable[:r.maxAlternatives]
		}
		return &ConflictResolution{
			Alternatives:  viable,
			NeedsMoreData: needsMoreData,
		}, nil
	}

	resolution := &ConflictResolution{NeedsMoreData: needsMoreData}
	if len(slots) == 0 {
		return resolution, nil
	}

	best := slots[0]
	resolution.BestPartial = &PartialOption{
		Slot:        best,
		AbsenteeIDs: absentees(group, best.AttendeeIDs),
	}
	resolution.SplitOptions = r.splitOptions(group, windows, duration, best)
	return resolution, nil
}

// splitOptions proposes the two largest disjoint attendee subsets with their
// respective best slots: the best partial slot's attendees, then the best
// slot achievable by everyone left over.
func (r *ConflictResolver) splitOptions(group *FriendGroup, windowsByUser map[int64][]AvailabilityWindow, duration time.Duration, best Slot) []SplitOption {
	options := []SplitOption{{MemberIDs: best.AttendeeIDs, Slot: best}}

	rest := absentees(group, best.AttendeeIDs)
	if len(rest) == 0 {
		return options
	}

	subgroup := &FriendGroup{
		ID:              group.ID,
		Name:            group.Name,
		MemberIDs:       rest,
		PriorityWeights: group.PriorityWeights,
	}
	subWindows := make(map[int64][]AvailabilityWindow, len(rest))
	for _, id := range rest {
		if ws := windowsByUser[id]; len(ws) > 0 {
			subWindows[id] = ws
		}
	}

	slots, err := r.optimizer.FindCommonAvailability(subgroup, subWindows, duration)
	if err != nil || len(slots) == 0 {
		return options
	}
	rankSlots(slots)
	second := slots[0]
	options = append(options, SplitOption{MemberIDs: second.AttendeeIDs, Slot: second})
	return options
}

// rankSlots orders slots for conflict resolution: attendance fraction
// descending, then longer duration, then earlier start.
func rankSlots(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].AttendanceFraction != slots[j].AttendanceFraction {
			return slots[i].AttendanceFraction > slots[j].AttendanceFraction
		}
		if slots[i].Duration() != slots[j].Duration() {
			return slots[i].Duration() > slots[j].Duration()
		}
		return slots[i].Start.Before(slots[j].Start)
	})
}

// carveInterval removes [start, end) from every member's windows.
func carveInterval(windowsByUser map[int64][]AvailabilityWindow, start, end time.Time) map[int64][]AvailabilityWindow {
	out := make(map[int64][]AvailabilityWindow, len(windowsByUser))
	for id, ws := range windowsByUser {
		out[id] = subtractInterval(ws, start, end)
	}
	return out
}

// coversInterval reports whether merged, sorted windows fully contain
// [start, end).
func coversInterval(merged []AvailabilityWindow, start, end time.Time) bool {
	for _, w := range merged {
		if !w.Start.After(start) && !w.End.Before(end) {
			return true
		}
	}
	return false
}

// absentees lists group members missing from a sorted attendee set,
// preserving group member order.
func absentees(group *FriendGroup, attendeeIDs []int64) []int64 {
	attending := make(map[int64]bool, len(attendeeIDs))
	for _, id := range attendeeIDs {
		attending[id] = true
	}
	var out []int64
	for _, id := range group.MemberIDs {
		if !attending[id] {
			out = append(out, id)
		}
	}
	return out
}
