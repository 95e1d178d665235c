// internal/availability/service.go

package availability

import (
	"context"
	"errors"
	"time"
)

var (
	ErrWindowNotFound = errors.New("availability window not found")
	ErrNotOwner       = errors.New("window belongs to another user")
	ErrInvalidWindow  = errors.New("window start must be before end")
	ErrImportDisabled = errors.New("calendar import is not enabled")
)

type Service interface {
	CreateWindow(ctx context.Context, userID int64, dto *CreateWindowDTO) ([]*Window, error)
	GetUserWindows(ctx context.Context, userID int64, from, to time.Time) ([]*Window, error)
	DeleteWindow(ctx context.Context, userID, windowID int64) error
	ImportGoogleCalendar(ctx context.Context, userID int64, dto *ImportGoogleDTO) ([]*Window, error)
}

type service struct {
	repo     Repository
	calendar CalendarClient
}

func NewService(repo Repository, calendar CalendarClient) Service {
	return &service{repo: repo, calendar: calendar}
}

// CreateWindow stores a window in UTC. A weekly recurrence is materialized
// as one row per occurrence over a fixed horizon so that range queries stay
// a plain index scan.
func (s *service) CreateWindow(ctx context.Context, userID int64, dto *CreateWindowDTO) ([]*Window, error) {
	start := dto.Start.UTC()
	end := dto.End.UTC()
	if !start.Before(end) {
		return nil, ErrInvalidWindow
	}

	occurrences := 1
	var recurrence *string
	if dto.Recurrence == "weekly" {
		occurrences = WeeklyWeeks
		r := dto.Recurrence
		recurrence = &r
	}

	windows := make([]*Window, 0, occurrences)
	for i := 0; i < occurrences; i++ {
		offset := time.Duration(i) * 7 * 24 * time.Hour
		windows = append(windows, &Window{
			UserID:     userID,
			Start:      start.Add(offset),
			End:        end.Add(offset),
			Recurrence: recurrence,
			Source:     SourceManual,
		})
	}

	if err := s.repo.CreateWindows(ctx, windows); err != nil {
		return nil, err
	}
	return windows, nil
}

func (s *service) GetUserWindows(ctx context.Context, userID int64, from, to time.Time) ([]*Window, error) {
	if from.IsZero() {
		from = time.Now().UTC()
	}
	if to.IsZero() {
		to = from.Add(WeeklyWeeks * 7 * 24 * time.Hour)
	}
	return s.repo.GetUserWindows(ctx, userID, from.UTC(), to.UTC())
}

func (s *service) DeleteWindow(ctx context.Context, userID, windowID int64) error {
	window, err := s.repo.GetWindow(ctx, windowID)
	if err != nil {
		return err
	}
	if window.UserID != userID {
		return ErrNotOwner
	}
	return s.repo.DeleteWindow(ctx, windowID)
}

// ImportGoogleCalendar replaces the user's previously imported windows in
// the range with free intervals derived from Google free/busy data.
func (s *service) ImportGoogleCalendar(ctx context.Context, userID int64, dto *ImportGoogleDTO) ([]*Window, error) {
	if s.calendar == nil {
		return nil, ErrImportDisabled
	}

	from := dto.From.UTC()
	to := dto.To.UTC()

	busy, err := s.calendar.FreeBusy(ctx, dto.AccessToken, dto.CalendarID, from, to)
	if err != nil {
		return nil, err
	}

	free := invertBusy(busy, from, to)
	windows := make([]*Window, 0, len(free))
	for _, iv := range free {
		windows = append(windows, &Window{
			UserID: userID,
			Start:  iv.Start,
			End:    iv.End,
			Source: SourceGoogle,
		})
	}

	if err := s.repo.DeleteUserWindowsBySource(ctx, userID, SourceGoogle, from, to); err != nil {
		return nil, err
	}
	if err := s.repo.CreateWindows(ctx, windows); err != nil {
		return nil, err
	}
	return windows, nil
}

// Interval is a half-open UTC time range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// invertBusy turns busy intervals into the free gaps within [from, to).
// Busy input may be unsorted and overlapping.
func invertBusy(busy []Interval, from, to time.Time) []Interval {
	merged := mergeIntervals(busy)

	var free []Interval
	cursor := from
	for _, b := range merged {
		if b.End.Before(from) || b.Start.After(to) {
			continue
		}
		if b.Start.After(cursor) {
			free = append(free, Interval{Start: cursor, End: minTime(b.Start, to)})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(to) {
		free = append(free, Interval{Start: cursor, End: to})
	}
	return free
}

func mergeIntervals(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Start.Before(sorted[j-1].Start); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	merged := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
