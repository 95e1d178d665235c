package planning

import (
	"testing"
	"time"
)

func newTestResolver() *ConflictResolver {
	return NewConflictResolver(NewOptimizer(10), 0.5, 5)
}

func TestResolve_ViableAlternatives(t *testing.T) {
	group := testGroup(1, 2, 3)
	windows := map[int64][]AvailabilityWindow{
		1: {window(1, 10, 12)},
		2: {window(2, 10, 12)},
		3: {window(3, 10, 12)},
	}

	res, err := newTestResolver().Resolve(group, windows, time.Hour, nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if len(res.Alternatives) == 0 {
		t.Fatal("Alternatives empty, want the full-overlap slot")
	}
	if res.BestPartial != nil || len(res.SplitOptions) != 0 {
		t.Error("remediation fields populated despite a viable slot")
	}
	if res.NeedsMoreData {
		t.Error("NeedsMoreData = true, want false when everyone supplied windows")
	}
}

func TestResolve_SplitsWhenNothingReachesThreshold(t *testing.T) {
	// Three disjoint pairs: the best any slot achieves is 2/6, below the
	// 50% threshold, so the resolver must propose the two best disjoint
	// subsets instead of alternatives.
	group := testGroup(1, 2, 3, 4, 5, 6)
	windows := map[int64][]AvailabilityWindow{
		1: {window(1, 10, 12)},
		2: {window(2, 10, 12)},
		3: {window(3, 13, 15)},
		4: {window(4, 13, 15)},
		5: {window(5, 16, 17)},
		6: {window(6, 16, 17)},
	}

	res, err := newTestResolver().Resolve(group, windows, time.Hour, nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if len(res.Alternatives) != 0 {
		t.Errorf("Alternatives = %v, want none below threshold", res.Alternatives)
	}
	if res.NeedsMoreData {
		t.Error("NeedsMoreData = true, want false: everyone supplied windows")
	}

	if res.BestPartial == nil {
		t.Fatal("BestPartial = nil, want the best below-threshold slot")
	}
	if !res.BestPartial.Slot.Start.Equal(at(10, 0)) {
		t.Errorf("BestPartial starts %v, want 10:00", res.BestPartial.Slot.Start)
	}
	if len(res.BestPartial.AbsenteeIDs) != 4 {
		t.Errorf("AbsenteeIDs = %v, want the four members who miss it", res.BestPartial.AbsenteeIDs)
	}

	if len(res.SplitOptions) != 2 {
		t.Fatalf("got %d split options, want 2", len(res.SplitOptions))
	}

	// The two subsets must be disjoint.
	first := map[int64]bool{}
	for _, id := range res.SplitOptions[0].MemberIDs {
		first[id] = true
	}
	for _, id := range res.SplitOptions[1].MemberIDs {
		if first[id] {
			t.Errorf("member %d appears in both split options", id)
		}
	}

	// Second subset gets its own best slot: the longer 13:00-15:00 pair.
	if !res.SplitOptions[1].Slot.Start.Equal(at(13, 0)) {
		t.Errorf("second split slot starts %v, want 13:00", res.SplitOptions[1].Slot.Start)
	}
}

func TestResolve_NeedsMoreData(t *testing.T) {
	group := testGroup(1, 2, 3)
	windows := map[int64][]AvailabilityWindow{
		1: {window(1, 10, 11)},
		// members 2 and 3 contributed nothing
	}

	res, err := newTestResolver().Resolve(group, windows, time.Hour, nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !res.NeedsMoreData {
		t.Error("NeedsMoreData = false, want true with members missing windows")
	}
}

func TestResolve_RejectedSlotExcluded(t *testing.T) {
	group := testGroup(1, 2)
	windows := map[int64][]AvailabilityWindow{
		1: {window(1, 9, 14)},
		2: {window(2, 9, 14)},
	}
	rejected := Slot{Start: at(10, 0), End: at(11, 0)}

	res, err := newTestResolver().Resolve(group, windows, time.Hour, &rejected)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(res.Alternatives) == 0 {
		t.Fatal("Alternatives empty, want slots around the rejected interval")
	}
	for _, s := range res.Alternatives {
		if s.Overlaps(rejected.Start, rejected.End) {
			t.Errorf("alternative [%v, %v) overlaps the rejected slot", s.Start, s.End)
		}
	}
}

func TestResolve_Validation(t *testing.T) {
	r := newTestResolver()

	if _, err := r.Resolve(nil, nil, time.Hour, nil); err != ErrEmptyGroup {
		t.Errorf("nil group error = %v, want ErrEmptyGroup", err)
	}
	if _, err := r.Resolve(testGroup(1), nil, 0, nil); err != ErrInvalidDuration {
		t.Errorf("zero duration error = %v, want ErrInvalidDuration", err)
	}
}

func TestSuggestAlternatives_RankedAndCapped(t *testing.T) {
	group := testGroup(1, 2)
	windows := map[int64][]AvailabilityWindow{
		1: {window(1, 8, 18)},
		2: {window(2, 8, 10), window(2, 11, 18)},
	}
	rejected := Slot{Start: at(12, 0), End: at(13, 0)}

	r := NewConflictResolver(NewOptimizer(10), 0.5, 2)
	slots, err := r.SuggestAlternatives(group, windows, time.Hour, rejected)
	if err != nil {
		t.Fatalf("SuggestAlternatives() error = %v", err)
	}
	if len(slots) > 2 {
		t.Errorf("got %d alternatives, want at most the cap of 2", len(slots))
	}
	for i := 1; i < len(slots); i++ {
		if slots[i].AttendanceFraction > slots[i-1].AttendanceFraction {
			t.Error("alternatives not ordered by attendance descending")
		}
	}
}

func TestAttendanceAt(t *testing.T) {
	group := testGroup(1, 2, 3)
	group.PriorityWeights = map[int64]float64{1: 2.0}
	windows := map[int64][]AvailabilityWindow{
		1: {window(1, 10, 13)},
		2: {window(2, 10, 11), window(2, 11, 13)}, // touching windows still cover
		3: {window(3, 12, 13)},
	}

	fraction, attendees := newTestResolver().AttendanceAt(group, windows, at(10, 0), at(12, 0))

	// Members 1 (weight 2) and 2 (weight 1) cover the interval; member 3
	// does not. Total weight is 4.
	if !closeTo(fraction, 0.75) {
		t.Errorf("fraction = %v, want 0.75", fraction)
	}
	if len(attendees) != 2 {
		t.Errorf("attendees = %v, want members 1 and 2", attendees)
	}
}

func TestThreshold(t *testing.T) {
	r := newTestResolver()

	if got := r.Threshold(testGroup(1)); got != 0.5 {
		t.Errorf("Threshold() = %v, want default 0.5", got)
	}

	g := testGroup(1)
	g.MinAttendance = 0.8
	if got := r.Threshold(g); got != 0.8 {
		t.Errorf("Threshold() = %v, want the group's own 0.8", got)
	}
}

func TestAttendancePercentage(t *testing.T) {
	group := testGroup(1, 2, 3, 4)
	slot := Slot{AttendeeIDs: []int64{1, 2, 99}} // 99 is stale

	if got := newTestResolver().AttendancePercentage(slot, group); !closeTo(got, 0.5) {
		t.Errorf("AttendancePercentage() = %v, want 0.5 ignoring non-members", got)
	}
}
