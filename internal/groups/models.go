// internal/groups/models.go

package groups

import "time"

// Group is a named set of members who plan events together. Weights bias
// scheduling toward higher-priority members; MinAttendance is the weighted
// fraction required to confirm an event (0 means "server default").
type Group struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	CreatedBy     int64     `json:"created_by" db:"created_by"`
	MinAttendance float64   `json:"min_attendance" db:"min_attendance"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	Members       []Member  `json:"members,omitempty"`
}

// Member is one user's membership in a group.
type Member struct {
	GroupID        int64     `json:"group_id" db:"group_id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	Username       string    `json:"username" db:"username"`
	DisplayName    string    `json:"display_name" db:"display_name"`
	PriorityWeight float64   `json:"priority_weight" db:"priority_weight"`
	JoinedAt       time.Time `json:"joined_at" db:"joined_at"`
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID int64) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
