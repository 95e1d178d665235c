// internal/planning/optimizer.go

package planning

import (
	"log"
	"sort"
	"time"
)

// weightEpsilon absorbs float drift when comparing summed priority weights.
const weightEpsilon = 1e-9

// Optimizer computes shared meeting windows for a group using a sweep line
// over window endpoints. The counter swept along the timeline is the sum of
// priority weights of currently-available members, so "full overlap" means
// the sum reaches the total weight of every member that supplied windows.
type Optimizer struct {
	maxSlots int
}

// NewOptimizer creates an optimizer capping results at maxSlots per call.
func NewOptimizer(maxSlots int) *Optimizer {
	if maxSlots <= 0 {
		maxSlots = 10
	}
	return &Optimizer{maxSlots: maxSlots}
}

// FindCommonAvailability returns candidate slots of at least duration length.
//
// When a full-overlap interval exists it returns only full-overlap slots.
// Otherwise it falls back to the highest achievable weighted overlap that
// still fits the duration, annotating each slot with the attending member
// set. Members with zero windows are excluded from the overlap requirement
// but counted in the attendance denominator, and their presence marks every
// returned slot as having incomplete availability.
//
// Slots are ordered by start time ascending, ties broken by longer duration.
// Total cost is O(N log N) in the number of window endpoints.
func (o *Optimizer) FindCommonAvailability(group *FriendGroup, windowsByUser map[int64][]AvailabilityWindow, duration time.Duration) ([]Slot, error) {
	if group == nil || len(group.MemberIDs) == 0 {
		return nil, ErrEmptyGroup
	}
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}

	members := make(map[int64]bool, len(group.MemberIDs))
	for _, id := range group.MemberIDs {
		members[id] = true
	}

	// Validate up front, then coalesce each member's windows so duplicate
	// or overlapping entries cannot double-count their weight.
	merged := make(map[int64][]AvailabilityWindow, len(windowsByUser))
	for userID, windows := range windowsByUser {
		if !members[userID] {
			// Stale windows from removed members are ignored, not fatal.
			log.Printf("planning: ignoring %d availability window(s) from non-member user %d in group %d", len(windows), userID, group.ID)
			continue
		}
		for _, w := range windows {
			if err := w.Validate(); err != nil {
				return nil, err
			}
		}
		merged[userID] = mergeWindows(windows)
	}

	incomplete := false
	dataWeight := 0.0
	for _, id := range group.MemberIDs {
		if len(merged[id]) == 0 {
			incomplete = true
		} else {
			dataWeight += group.Weight(id)
		}
	}
	if dataWeight <= 0 {
		// Nobody supplied windows; there is nothing to sweep.
		return []Slot{}, nil
	}

	blocks := sweep(group, merged)
	totalWeight := group.TotalWeight()

	// Prefer full overlap among members that supplied windows; otherwise
	// descend to the highest weight level with a long-enough block.
	candidates := blocksAtWeight(blocks, dataWeight, duration)
	if len(candidates) == 0 {
		for _, level := range weightLevels(blocks, dataWeight) {
			candidates = blocksAtWeight(blocks, level, duration)
			if len(candidates) > 0 {
				break
			}
		}
	}

	slots := make([]Slot, 0, len(candidates))
	for _, b := range candidates {
		slots = append(slots, Slot{
			Start:                  b.start,
			End:                    b.end,
			AttendeeIDs:            b.attendees,
			AttendanceFraction:     b.weight / totalWeight,
			IncompleteAvailability: incomplete,
		})
	}

	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Start.Equal(slots[j].Start) {
			return slots[i].Start.Before(slots[j].Start)
		}
		return slots[i].Duration() > slots[j].Duration()
	})

	if len(slots) > o.maxSlots {
		slots = slots[:o.maxSlots]
	}
	return slots, nil
}

// block is a maximal timeline interval with a constant attending member set.
type block struct {
	start, end time.Time
	weight     float64
	attendees  []int64
}

// boundary is a sweep-line event at a window endpoint.
type boundary struct {
	at      time.Time
	userID  int64
	opening bool
}

// sweep walks all window endpoints in time order and emits the maximal
// constant-attendee-set blocks between them.
func sweep(group *FriendGroup, windowsByUser map[int64][]AvailabilityWindow) []block {
	var bounds []boundary
	for userID, windows := range windowsByUser {
		for _, w := range windows {
			bounds = append(bounds, boundary{at: w.Start, userID: userID, opening: true})
			bounds = append(bounds, boundary{at: w.End, userID: userID, opening: false})
		}
	}
	if len(bounds) == 0 {
		return nil
	}

	// Windows are half-open [start, end): at equal instants closings come
	// first so a window ending at T and another starting at T never meet.
	sort.Slice(bounds, func(i, j int) bool {
		if !bounds[i].at.Equal(bounds[j].at) {
			return bounds[i].at.Before(bounds[j].at)
		}
		return !bounds[i].opening && bounds[j].opening
	})

	current := make(map[int64]bool)
	weight := 0.0
	prev := bounds[0].at

	var blocks []block
	flush := func(until time.Time) {
		if weight > weightEpsilon && prev.Before(until) {
			attendees := make([]int64, 0, len(current))
			for id := range current {
				attendees = append(attendees, id)
			}
			sort.Slice(attendees, func(i, j int) bool { return attendees[i] < attendees[j] })
			blocks = append(blocks, block{start: prev, end: until, weight: weight, attendees: attendees})
		}
	}

	for _, b := range bounds {
		flush(b.at)
		if b.opening {
			current[b.userID] = true
			weight += group.Weight(b.userID)
		} else {
			delete(current, b.userID)
			weight -= group.Weight(b.userID)
		}
		prev = b.at
	}

	return coalesceBlocks(blocks)
}

// coalesceBlocks merges adjacent blocks whose attendee sets are identical,
// so a set change inside an equal-weight stretch still splits the block.
func coalesceBlocks(blocks []block) []block {
	if len(blocks) == 0 {
		return blocks
	}
	out := blocks[:1]
	for _, b := range blocks[1:] {
		last := &out[len(out)-1]
		if last.end.Equal(b.start) && sameMembers(last.attendees, b.attendees) {
			last.end = b.end
			continue
		}
		out = append(out, b)
	}
	return out
}

// blocksAtWeight returns blocks whose weight matches level and whose length
// satisfies the requested duration.
func blocksAtWeight(blocks []block, level float64, duration time.Duration) []block {
	var out []block
	for _, b := range blocks {
		if b.weight >= level-weightEpsilon && b.weight <= level+weightEpsilon && b.end.Sub(b.start) >= duration {
			out = append(out, b)
		}
	}
	return out
}

// weightLevels lists the distinct block weights strictly below full, highest
// first, for the maximum-overlap fallback.
func weightLevels(blocks []block, full float64) []float64 {
	seen := make(map[float64]bool)
	var levels []float64
	for _, b := range blocks {
		if b.weight >= full-weightEpsilon {
			continue
		}
		if !seen[b.weight] {
			seen[b.weight] = true
			levels = append(levels, b.weight)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(levels)))
	return levels
}

// mergeWindows coalesces a single member's windows into disjoint intervals
// sorted by start time. Touching windows merge because availability is
// continuous across the shared endpoint.
func mergeWindows(windows []AvailabilityWindow) []AvailabilityWindow {
	if len(windows) <= 1 {
		return windows
	}
	sorted := make([]AvailabilityWindow, len(windows))
	copy(sorted, windows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	out := sorted[:1]
	for _, w := range sorted[1:] {
		last := &out[len(out)-1]
		if !w.Start.After(last.End) {
			if w.End.After(last.End) {
				last.End = w.End
			}
			continue
		}
		out = append(out, w)
	}
	return out
}

// subtractInterval removes [start, end) from every window, splitting windows
// that span it. Used when a proposed slot is rejected and alternatives must
// avoid its exact interval.
func subtractInterval(windows []AvailabilityWindow, start, end time.Time) []AvailabilityWindow {
	var out []AvailabilityWindow
	for _, w := range windows {
		if !w.Start.Before(end) || !start.Before(w.End) {
			out = append(out, w)
			continue
		}
		if w.Start.Before(start) {
			left := w
			left.End = start
			out = append(out, left)
		}
		if w.End.After(end) {
			right := w
			right.Start = end
			out = append(out, right)
		}
	}
	return out
}

// sameMembers compares two sorted member id slices.
func sameMembers(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
