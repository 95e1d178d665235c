// internal/availability/dto.go

package availability

import "time"

type CreateWindowDTO struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required,gtfield=Start"`
	// Recurrence is empty for one-off windows or "weekly" to repeat the
	// window at the same weekday and time.
	Recurrence string `json:"recurrence,omitempty" validate:"omitempty,oneof=weekly"`
}

type ListWindowsDTO struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type ImportGoogleDTO struct {
	AccessToken string    `json:"access_token" validate:"required"`
	CalendarID  string    `json:"calendar_id,omitempty"`
	From        time.Time `json:"from" validate:"required"`
	To          time.Time `json:"to" validate:"required,gtfield=From"`
}
