// internal/availability/models.go

package availability

import "time"

// Window is a contiguous interval during which a user is free. Times are
// stored in UTC; the API accepts RFC3339 with any offset and normalizes.
type Window struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	Start      time.Time `json:"start" db:"start_time"`
	End        time.Time `json:"end" db:"end_time"`
	Recurrence *string   `json:"recurrence,omitempty" db:"recurrence"`
	Source     string    `json:"source" db:"source"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

const (
	SourceManual   = "manual"
	SourceGoogle   = "google_calendar"
	RecurrenceNone = ""
	WeeklyWeeks    = 8 // horizon for materialized weekly occurrences
)
