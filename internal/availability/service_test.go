package availability

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRepository struct {
	windows map[int64]*Window
	nextID  int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{windows: map[int64]*Window{}}
}

func (f *fakeRepository) CreateWindow(_ context.Context, w *Window) error {
	f.nextID++
	w.ID = f.nextID
	w.CreatedAt = time.Now().UTC()
	f.windows[w.ID] = w
	return nil
}

func (f *fakeRepository) CreateWindows(ctx context.Context, windows []*Window) error {
	for _, w := range windows {
		if err := f.CreateWindow(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRepository) GetWindow(_ context.Context, id int64) (*Window, error) {
	w, ok := f.windows[id]
	if !ok {
		return nil, ErrWindowNotFound
	}
	return w, nil
}

func (f *fakeRepository) GetUserWindows(_ context.Context, userID int64, from, to time.Time) ([]*Window, error) {
	var out []*Window
	for _, w := range f.windows {
		if w.UserID == userID && w.Start.Before(to) && from.Before(w.End) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeRepository) DeleteWindow(_ context.Context, id int64) error {
	if _, ok := f.windows[id]; !ok {
		return ErrWindowNotFound
	}
	delete(f.windows, id)
	return nil
}

func (f *fakeRepository) DeleteUserWindowsBySource(_ context.Context, userID int64, source string, from, to time.Time) error {
	for id, w := range f.windows {
		if w.UserID == userID && w.Source == source && w.Start.Before(to) && from.Before(w.End) {
			delete(f.windows, id)
		}
	}
	return nil
}

type fakeCalendar struct {
	busy []Interval
	err  error
}

func (f *fakeCalendar) FreeBusy(_ context.Context, _, _ string, _, _ time.Time) ([]Interval, error) {
	return f.busy, f.err
}

func ts(hour int) time.Time {
	return time.Date(2026, 3, 14, hour, 0, 0, 0, time.UTC)
}

func TestCreateWindow_OneOff(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)

	windows, err := svc.CreateWindow(context.Background(), 1, &CreateWindowDTO{Start: ts(10), End: ts(12)})
	if err != nil {
		t.Fatalf("CreateWindow() error = %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}
	if windows[0].Source != SourceManual {
		t.Errorf("source = %q, want %q", windows[0].Source, SourceManual)
	}
	if windows[0].Recurrence != nil {
		t.Errorf("recurrence = %v, want nil for one-off windows", *windows[0].Recurrence)
	}
}

func TestCreateWindow_WeeklyMaterialization(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)

	windows, err := svc.CreateWindow(context.Background(), 1, &CreateWindowDTO{
		Start:      ts(10),
		End:        ts(12),
		Recurrence: "weekly",
	})
	if err != nil {
		t.Fatalf("CreateWindow() error = %v", err)
	}
	if len(windows) != WeeklyWeeks {
		t.Fatalf("got %d windows, want %d materialized occurrences", len(windows), WeeklyWeeks)
	}

	for i, w := range windows {
		wantStart := ts(10).Add(time.Duration(i) * 7 * 24 * time.Hour)
		if !w.Start.Equal(wantStart) {
			t.Errorf("occurrence %d starts %v, want %v", i, w.Start, wantStart)
		}
		if w.End.Sub(w.Start) != 2*time.Hour {
			t.Errorf("occurrence %d length = %v, want 2h", i, w.End.Sub(w.Start))
		}
		if w.Recurrence == nil || *w.Recurrence != "weekly" {
			t.Errorf("occurrence %d recurrence = %v, want weekly", i, w.Recurrence)
		}
	}
}

func TestCreateWindow_InvertedInterval(t *testing.T) {
	svc := NewService(newFakeRepository(), nil)

	_, err := svc.CreateWindow(context.Background(), 1, &CreateWindowDTO{Start: ts(12), End: ts(10)})
	if !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("error = %v, want ErrInvalidWindow", err)
	}
}

func TestDeleteWindow_OwnershipEnforced(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	windows, err := svc.CreateWindow(ctx, 1, &CreateWindowDTO{Start: ts(10), End: ts(12)})
	if err != nil {
		t.Fatalf("CreateWindow() error = %v", err)
	}

	if err := svc.DeleteWindow(ctx, 2, windows[0].ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("other user delete error = %v, want ErrNotOwner", err)
	}
	if err := svc.DeleteWindow(ctx, 1, windows[0].ID); err != nil {
		t.Errorf("owner delete error = %v", err)
	}
	if err := svc.DeleteWindow(ctx, 1, windows[0].ID); !errors.Is(err, ErrWindowNotFound) {
		t.Errorf("repeat delete error = %v, want ErrWindowNotFound", err)
	}
}

func TestImportGoogleCalendar(t *testing.T) {
	repo := newFakeRepository()
	calendar := &fakeCalendar{busy: []Interval{
		{Start: ts(11), End: ts(12)},
		{Start: ts(15), End: ts(16)},
	}}
	svc := NewService(repo, calendar)
	ctx := context.Background()

	// A stale imported window inside the range must be replaced.
	stale := &Window{UserID: 1, Start: ts(9), End: ts(10), Source: SourceGoogle}
	if err := repo.CreateWindow(ctx, stale); err != nil {
		t.Fatal(err)
	}
	// Manual windows survive the import.
	manual := &Window{UserID: 1, Start: ts(9), End: ts(10), Source: SourceManual}
	if err := repo.CreateWindow(ctx, manual); err != nil {
		t.Fatal(err)
	}

	windows, err := svc.ImportGoogleCalendar(ctx, 1, &ImportGoogleDTO{
		AccessToken: "token",
		From:        ts(9),
		To:          ts(18),
	})
	if err != nil {
		t.Fatalf("ImportGoogleCalendar() error = %v", err)
	}

	// Free gaps: [9,11), [12,15), [16,18).
	if len(windows) != 3 {
		t.Fatalf("got %d free windows, want 3", len(windows))
	}
	for _, w := range windows {
		if w.Source != SourceGoogle {
			t.Errorf("source = %q, want %q", w.Source, SourceGoogle)
		}
	}

	var google, kept int
	for _, w := range repo.windows {
		switch w.Source {
		case SourceGoogle:
			google++
		case SourceManual:
			kept++
		}
	}
	if google != 3 {
		t.Errorf("stored %d google windows, want 3 (stale one replaced)", google)
	}
	if kept != 1 {
		t.Errorf("stored %d manual windows, want the untouched 1", kept)
	}
}

func TestImportGoogleCalendar_Disabled(t *testing.T) {
	svc := NewService(newFakeRepository(), nil)

	_, err := svc.ImportGoogleCalendar(context.Background(), 1, &ImportGoogleDTO{
		AccessToken: "token",
		From:        ts(9),
		To:          ts(18),
	})
	if !errors.Is(err, ErrImportDisabled) {
		t.Errorf("error = %v, want ErrImportDisabled", err)
	}
}

func TestInvertBusy(t *testing.T) {
	tests := []struct {
		name string
		busy []Interval
		want []Interval
	}{
		{
			name: "no busy means fully free",
			busy: nil,
			want: []Interval{{Start: ts(9), End: ts(17)}},
		},
		{
			name: "fully busy means no free",
			busy: []Interval{{Start: ts(9), End: ts(17)}},
			want: nil,
		},
		{
			name: "gaps between busy blocks",
			busy: []Interval{{Start: ts(10), End: ts(11)}, {Start: ts(14), End: ts(15)}},
			want: []Interval{
				{Start: ts(9), End: ts(10)},
				{Start: ts(11), End: ts(14)},
				{Start: ts(15), End: ts(17)},
			},
		},
		{
			name: "unsorted overlapping busy input",
			busy: []Interval{{Start: ts(13), End: ts(15)}, {Start: ts(10), End: ts(14)}},
			want: []Interval{
				{Start: ts(9), End: ts(10)},
				{Start: ts(15), End: ts(17)},
			},
		},
		{
			name: "busy extending past the range is clipped",
			busy: []Interval{{Start: ts(8), End: ts(10)}, {Start: ts(16), End: ts(20)}},
			want: []Interval{{Start: ts(10), End: ts(16)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := invertBusy(tt.busy, ts(9), ts(17))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d intervals %v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if !got[i].Start.Equal(tt.want[i].Start) || !got[i].End.Equal(tt.want[i].End) {
					t.Errorf("interval %d = [%v, %v), want [%v, %v)",
						i, got[i].Start, got[i].End, tt.want[i].Start, tt.want[i].End)
				}
			}
		})
	}
}

func TestMergeIntervals(t *testing.T) {
	got := mergeIntervals([]Interval{
		{Start: ts(12), End: ts(13)},
		{Start: ts(9), End: ts(11)},
		{Start: ts(10), End: ts(12)},
	})
	if len(got) != 1 {
		t.Fatalf("got %d intervals, want 1 merged", len(got))
	}
	if !got[0].Start.Equal(ts(9)) || !got[0].End.Equal(ts(13)) {
		t.Errorf("merged = [%v, %v), want [9:00, 13:00)", got[0].Start, got[0].End)
	}
}
