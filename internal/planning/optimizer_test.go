package planning

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// at builds a UTC instant on a fixed day; tests only care about hours.
func at(hour, min int) time.Time {
	return time.Date(2026, 3, 14, hour, min, 0, 0, time.UTC)
}

func window(userID int64, startHour, endHour int) AvailabilityWindow {
	return AvailabilityWindow{UserID: userID, Start: at(startHour, 0), End: at(endHour, 0)}
}

func testGroup(memberIDs ...int64) *FriendGroup {
	return &FriendGroup{ID: 1, Name: "friends", MemberIDs: memberIDs}
}

func TestFindCommonAvailability_FullOverlap(t *testing.T) {
	group := testGroup(1, 2, 3)
	windows := map[int64][]AvailabilityWindow{
		1: {window(1, 10, 12)},
		2: {window(2, 11, 13)},
		3: {window(3, 9, 14)},
	}

	slots, err := NewOptimizer(10).FindCommonAvailability(group, windows, time.Hour)
	if err != nil {
		t.Fatalf("FindCommonAvailability() error = %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("got %d slots, want 1", len(slots))
	}

	slot := slots[0]
	if !slot.Start.Equal(at(11, 0)) || !slot.End.Equal(at(12, 0)) {
		t.Errorf("slot = [%v, %v), want [11:00, 12:00)", slot.Start, slot.End)
	}
	if slot.AttendanceFraction != 1.0 {
		t.Errorf("AttendanceFraction = %v, want 1.0", slot.AttendanceFraction)
	}
	if slot.IncompleteAvailability {
		t.Error("IncompleteAvailability = true, want false")
	}
	if len(slot.AttendeeIDs) != 3 {
		t.Errorf("AttendeeIDs = %v, want all three members", slot.AttendeeIDs)
	}
}

func TestFindCommonAvailability_MissingMemberFlagsIncomplete(t *testing.T) {
	group := testGroup(1, 2, 3)
	windows := map[int64][]AvailabilityWindow{
		1: {window(1, 10, 12)},
		2: {window(2, 11, 13)},
		// member 3 contributed nothing
	}

	slots, err := NewOptimizer(10).FindCommonAvailability(group, windows, time.Hour)
	if err != nil {
		t.Fatalf("FindCommonAvailability() error = %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("got %d slots, want 1", len(slots))
	}

	slot := slots[0]
	if !slot.Start.Equal(at(11, 0)) || !slot.End.Equal(at(12, 0)) {
		t.Errorf("slot = [%v, %v), want [11:00, 12:00)", slot.Start, slot.End)
	}
	if !slot.IncompleteAvailability {
		t.Error("IncompleteAvailability = false, want true")
	}
	// Member 3 still counts in the denominator.
	if want := 2.0 / 3.0; !closeTo(slot.AttendanceFraction, want) {
		t.Errorf("AttendanceFraction = %v, want %v", slot.AttendanceFraction, want)
	}
}

func TestFindCommonAvailability_MaxOverlapFallback(t *testing.T) {
	group := testGroup(1, 2, 3)
	windows := map[int64][]AvailabilityWindow{
		1: {window(1, 10, 12)},
		2: {window(2, 10, 12)},
		3: {window(3, 13, 14)},
	}

	slots, err := NewOptimizer(10).FindCommonAvailability(group, windows, time.Hour)
	if err != nil {
		t.Fatalf("FindCommonAvailability() error = %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("got %d slots, want 1", len(slots))
	}

	slot := slots[0]
	if !slot.Start.Equal(at(10, 0)) || !slot.End.Equal(at(12, 0)) {
		t.Errorf("slot = [%v, %v), want [10:00, 12:00)", slot.Start, slot.End)
	}
	if len(slot.AttendeeIDs) != 2 {
		t.Errorf("AttendeeIDs = %v, want members 1 and 2", slot.AttendeeIDs)
	}
	if slot.IncompleteAvailability {
		t.Error("IncompleteAvailability = true, want false")
	}
}

func TestFindCommonAvailability_PriorityWeightSteersBestSlot(t *testing.T) {
	// Members 1+2 overlap in the morning; members 2+3 overlap in the
	// evening. With default weights the morning pair wins (first weight
	// level examined is the same, both weight 2, and morning starts
	// earlier); tripling member 3's weight must pull the result to the
	// evening slot.
	windows := map[int64][]AvailabilityWindow{
		1: {window(1, 10, 11)},
		2: {window(2, 10, 11), window(2, 13, 14)},
		3: {window(3, 13, 14)},
	}

	unweighted := testGroup(1, 2, 3)
	slots, err := NewOptimizer(10).FindCommonAvailability(unweighted, windows, time.Hour)
	if err != nil {
		t.Fatalf("FindCommonAvailability() error = %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want both pair slots", len(slots))
	}

	weighted := testGroup(1, 2, 3)
	weighted.PriorityWeights = map[int64]float64{3: 3.0}
	slots, err = NewOptimizer(10).FindCommonAvailability(weighted, windows, time.Hour)
	if err != nil {
		t.Fatalf("FindCommonAvailability() error = %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("got %d slots, want 1", len(slots))
	}
	if !slots[0].Start.Equal(at(13, 0)) {
		t.Errorf("best slot starts %v, want 13:00 once member 3 outweighs the pair", slots[0].Start)
	}
}

func TestFindCommonAvailability_HalfOpenWindowsDoNotTouch(t *testing.T) {
	// [10,11) and [11,12) share no instant, so there is no two-member slot.
	group := testGroup(1, 2)
	windows := map[int64][]AvailabilityWindow{
		1: {window(1, 10, 11)},
		2: {window(2, 11, 12)},
	}

	slots, err := NewOptimizer(10).FindCommonAvailability(group, windows, time.Hour)
	if err != nil {
		t.Fatalf("FindCommonAvailability() error = %v", err)
	}
	for _, s := range slots {
		if len(s.AttendeeIDs) > 1 {
			t.Errorf("slot [%v, %v) has %d attendees, want at most 1", s.Start, s.End, len(s.AttendeeIDs))
		}
	}
}

func TestFindCommonAvailability_DuplicateWindowsDoNotDoubleCount(t *testing.T) {
	group := testGroup(1, 2)
	windows := map[int64][]AvailabilityWindow{
		1: {window(1, 10, 12), window(1, 10, 12), window(1, 11, 13)},
		2: {window(2, 10, 12)},
	}

	slots, err := NewOptimizer(10).FindCommonAvailability(group, windows, time.Hour)
	if err != nil {
		t.Fatalf("FindCommonAvailability() error = %v", err)
	}
	for _, s := range slots {
		if s.AttendanceFraction > 1.0 {
			t.Errorf("AttendanceFraction = %v, want <= 1.0", s.AttendanceFraction)
		}
	}
}

func TestFindCommonAvailability_IgnoresNonMemberWindows(t *testing.T) {
	group := testGroup(1, 2)
	windows := map[int64][]AvailabilityWindow{
		1:  {window(1, 10, 12)},
		2:  {window(2, 10, 12)},
		99: {window(99, 10, 12)}, // removed member, stale data
	}

	slots, err := NewOptimizer(10).FindCommonAvailability(group, windows, time.Hour)
	if err != nil {
		t.Fatalf("FindCommonAvailability() error = %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("got %d slots, want 1", len(slots))
	}
	for _, id := range slots[0].AttendeeIDs {
		if id == 99 {
			t.Error("non-member 99 appears in attendee list")
		}
	}
}

func TestFindCommonAvailability_Validation(t *testing.T) {
	opt := NewOptimizer(10)

	tests := []struct {
		name     string
		group    *FriendGroup
		windows  map[int64][]AvailabilityWindow
		duration time.Duration
		wantErr  error
	}{
		{
			name:     "nil group",
			group:    nil,
			duration: time.Hour,
			wantErr:  ErrEmptyGroup,
		},
		{
			name:     "empty group",
			group:    testGroup(),
			duration: time.Hour,
			wantErr:  ErrEmptyGroup,
		},
		{
			name:     "zero duration",
			group:    testGroup(1),
			duration: 0,
			wantErr:  ErrInvalidDuration,
		},
		{
			name:  "inverted window",
			group: testGroup(1),
			windows: map[int64][]AvailabilityWindow{
				1: {{UserID: 1, Start: at(12, 0), End: at(10, 0)}},
			},
			duration: time.Hour,
			wantErr:  ErrInvalidWindow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := opt.FindCommonAvailability(tt.group, tt.windows, tt.duration)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFindCommonAvailability_NoWindowsAtAll(t *testing.T) {
	group := testGroup(1, 2)

	slots, err := NewOptimizer(10).FindCommonAvailability(group, nil, time.Hour)
	if err != nil {
		t.Fatalf("FindCommonAvailability() error = %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("got %d slots, want 0 when nobody supplied windows", len(slots))
	}
}

func TestFindCommonAvailability_CapsResults(t *testing.T) {
	group := testGroup(1)
	var windows []AvailabilityWindow
	for h := 0; h < 8; h += 2 {
		windows = append(windows, window(1, h, h+1))
	}

	slots, err := NewOptimizer(2).FindCommonAvailability(group, map[int64][]AvailabilityWindow{1: windows}, time.Hour)
	if err != nil {
		t.Fatalf("FindCommonAvailability() error = %v", err)
	}
	if len(slots) != 2 {
		t.Errorf("got %d slots, want cap of 2", len(slots))
	}
	if !slots[0].Start.Before(slots[1].Start) {
		t.Error("slots not ordered by start time")
	}
}

func TestMergeWindows(t *testing.T) {
	tests := []struct {
		name    string
		windows []AvailabilityWindow
		want    int
	}{
		{
			name:    "disjoint stay separate",
			windows: []AvailabilityWindow{window(1, 10, 11), window(1, 12, 13)},
			want:    2,
		},
		{
			name:    "overlapping merge",
			windows: []AvailabilityWindow{window(1, 10, 12), window(1, 11, 13)},
			want:    1,
		},
		{
			name:    "touching merge",
			windows: []AvailabilityWindow{window(1, 10, 11), window(1, 11, 12)},
			want:    1,
		},
		{
			name:    "contained absorbed",
			windows: []AvailabilityWindow{window(1, 10, 14), window(1, 11, 12)},
			want:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeWindows(tt.windows)
			if len(got) != tt.want {
				t.Errorf("mergeWindows() returned %d windows, want %d", len(got), tt.want)
			}
			for i := 1; i < len(got); i++ {
				if got[i].Start.Before(got[i-1].End) {
					t.Error("merged windows overlap")
				}
			}
		})
	}
}

func TestSubtractInterval(t *testing.T) {
	windows := []AvailabilityWindow{window(1, 9, 14)}

	out := subtractInterval(windows, at(11, 0), at(12, 0))
	if len(out) != 2 {
		t.Fatalf("got %d windows, want a split into 2", len(out))
	}
	if !out[0].End.Equal(at(11, 0)) || !out[1].Start.Equal(at(12, 0)) {
		t.Errorf("split = [%v, %v) and [%v, %v), want the carved interval removed",
			out[0].Start, out[0].End, out[1].Start, out[1].End)
	}

	// Untouched window passes through whole.
	out = subtractInterval([]AvailabilityWindow{window(1, 15, 16)}, at(11, 0), at(12, 0))
	if len(out) != 1 || !out[0].Start.Equal(at(15, 0)) {
		t.Errorf("non-overlapping window was modified: %v", out)
	}

	// Fully covered window disappears.
	out = subtractInterval([]AvailabilityWindow{window(1, 11, 12)}, at(10, 0), at(13, 0))
	if len(out) != 0 {
		t.Errorf("got %d windows, want 0 when fully covered", len(out))
	}
}

func closeTo(got, want float64) bool {
	d := got - want
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}

// bruteHourCovered reports whether any window fully contains [h, h+1) on the
// fixed test day. The oracle below keeps every span on whole hours.
func bruteHourCovered(windows []AvailabilityWindow, h int) bool {
	start, end := at(h, 0), at(h+1, 0)
	for _, w := range windows {
		if !w.Start.After(start) && !w.End.Before(end) {
			return true
		}
	}
	return false
}

// bruteBestWeight computes the heaviest constant-attendee stretch of at
// least durationHours by walking an hour-resolution timeline, independently
// of the sweep-line implementation.
func bruteBestWeight(group *FriendGroup, windowsByUser map[int64][]AvailabilityWindow, durationHours int) float64 {
	sets := make([]string, 24)
	weights := make([]float64, 24)
	for h := 0; h < 24; h++ {
		for _, id := range group.MemberIDs {
			if bruteHourCovered(windowsByUser[id], h) {
				sets[h] += fmt.Sprintf("%d,", id)
				weights[h] += group.Weight(id)
			}
		}
	}

	best := 0.0
	for h := 0; h < 24; {
		j := h
		for j < 24 && sets[j] == sets[h] {
			j++
		}
		if sets[h] != "" && j-h >= durationHours && weights[h] > best {
			best = weights[h]
		}
		h = j
	}
	return best
}

func TestFindCommonAvailability_MatchesBruteForce(t *testing.T) {
	spans := [][2]int{{9, 11}, {10, 13}, {11, 12}, {12, 14}, {13, 16}, {15, 17}}

	groups := []*FriendGroup{
		testGroup(1, 2, 3),
		{ID: 1, Name: "friends", MemberIDs: []int64{1, 2, 3}, PriorityWeights: map[int64]float64{2: 2.0}},
	}

	opt := NewOptimizer(50)
	for _, group := range groups {
		for _, durationHours := range []int{1, 2} {
			duration := time.Duration(durationHours) * time.Hour
			for i, a := range spans {
				for _, b := range spans {
					for k, c := range spans {
						extra := spans[(i+k)%len(spans)]
						windows := map[int64][]AvailabilityWindow{
							1: {window(1, a[0], a[1])},
							2: {window(2, b[0], b[1])},
							3: {window(3, c[0], c[1]), window(3, extra[0], extra[1])},
						}

						slots, err := opt.FindCommonAvailability(group, windows, duration)
						if err != nil {
							t.Fatalf("FindCommonAvailability(%v) error = %v", windows, err)
						}

						want := bruteBestWeight(group, windows, durationHours)
						if want == 0 {
							if len(slots) != 0 {
								t.Errorf("windows %v duration %dh: got %d slots, oracle says none fit", windows, durationHours, len(slots))
							}
							continue
						}
						if len(slots) == 0 {
							t.Fatalf("windows %v duration %dh: no slots, oracle weight %v", windows, durationHours, want)
						}
						got := slots[0].AttendanceFraction * group.TotalWeight()
						if !closeTo(got, want) {
							t.Errorf("windows %v duration %dh: best weight = %v, oracle = %v", windows, durationHours, got, want)
						}
					}
				}
			}
		}
	}
}
