// internal/availability/calendar.go

package availability

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarClient fetches busy intervals from an external calendar.
type CalendarClient interface {
	FreeBusy(ctx context.Context, accessToken, calendarID string, from, to time.Time) ([]Interval, error)
}

type googleCalendarClient struct{}

// NewGoogleCalendarClient returns a client backed by the Google Calendar
// free/busy API. The user's OAuth access token comes with each request; no
// server-side credentials are stored.
func NewGoogleCalendarClient() CalendarClient {
	return &googleCalendarClient{}
}

func (c *googleCalendarClient) FreeBusy(ctx context.Context, accessToken, calendarID string, from, to time.Time) ([]Interval, error) {
	if calendarID == "" {
		calendarID = "primary"
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	svc, err := calendar.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	req := &calendar.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: calendarID}},
	}

	resp, err := svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("free/busy query failed: %w", err)
	}

	cal, ok := resp.Calendars[calendarID]
	if !ok {
		return nil, fmt.Errorf("calendar %q missing from free/busy response", calendarID)
	}

	var busy []Interval
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			continue
		}
		busy = append(busy, Interval{Start: start.UTC(), End: end.UTC()})
	}

	return busy, nil
}
