// internal/planning/dto.go

package planning

import "time"

type PlanEventDTO struct {
	GroupID         int64     `json:"group_id" validate:"required"`
	From            time.Time `json:"from" validate:"required"`
	To              time.Time `json:"to" validate:"required,gtfield=From"`
	DurationMinutes int       `json:"duration_minutes" validate:"omitempty,min=1"`
	Category        string    `json:"category,omitempty"`
	SuggestionIDs   []int64   `json:"suggestion_ids,omitempty"`
}

type CreateEventDTO struct {
	GroupID      int64     `json:"group_id" validate:"required"`
	Title        string    `json:"title" validate:"required,max=200"`
	SuggestionID *int64    `json:"suggestion_id,omitempty"`
	Start        time.Time `json:"start" validate:"required"`
	End          time.Time `json:"end" validate:"required,gtfield=Start"`
}

type SubmitFeedbackDTO struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=1000"`
}

type RejectedSlotDTO struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required,gtfield=Start"`
}

type ResolveConflictDTO struct {
	GroupID         int64            `json:"group_id" validate:"required"`
	From            time.Time        `json:"from" validate:"required"`
	To              time.Time        `json:"to" validate:"required,gtfield=From"`
	DurationMinutes int              `json:"duration_minutes" validate:"omitempty,min=1"`
	Rejected        *RejectedSlotDTO `json:"rejected,omitempty"`
}

// SlotRanking pairs a partial-overlap slot with suggestions re-ranked over
// the members who can actually attend it.
type SlotRanking struct {
	Slot        Slot               `json:"slot"`
	Suggestions []RankedSuggestion `json:"suggestions"`
}

// EventPlan is the combined output of one planning pass: viable slots for
// the group plus suggestions ranked by group consensus. Slots that only
// work for part of the group additionally carry attendee-only rankings.
type EventPlan struct {
	GroupID      int64              `json:"group_id"`
	Slots        []Slot             `json:"slots"`
	Suggestions  []RankedSuggestion `json:"suggestions"`
	SlotRankings []SlotRanking      `json:"slot_rankings,omitempty"`
	GeneratedAt  time.Time          `json:"generated_at"`
}
