// internal/planning/repository.go

package planning

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Groups
	GetGroup(ctx context.Context, groupID int64) (*FriendGroup, error)
	GetGroupWindows(ctx context.Context, groupID int64, from, to time.Time) (map[int64][]AvailabilityWindow, error)

	// Preference profiles
	GetProfiles(ctx context.Context, userIDs []int64) (map[int64]*PreferenceProfile, error)
	SaveProfile(ctx context.Context, profile *PreferenceProfile) error

	// Suggestions
	GetSuggestions(ctx context.Context, category string) ([]Suggestion, error)
	GetSuggestionsByIDs(ctx context.Context, ids []int64) ([]Suggestion, error)

	// Events
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, id uuid.UUID) (*Event, error)
	UpdateEventStatus(ctx context.Context, event *Event) error
	ListGroupEvents(ctx context.Context, groupID int64, status string) ([]*Event, error)
	ListEventsStartingBetween(ctx context.Context, from, to time.Time) ([]*Event, error)
	ExpirePendingEvents(ctx context.Context, before time.Time) (int64, error)

	// Feedback
	CreateFeedback(ctx context.Context, fb *Feedback) error
	ListEventFeedback(ctx context.Context, eventID uuid.UUID) ([]*Feedback, error)
	HasFeedback(ctx context.Context, eventID uuid.UUID, userID int64) (bool, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// Group Methods

func (r *postgresRepository) GetGroup(ctx context.Context, groupID int64) (*FriendGroup, error) {
	var group FriendGroup
	query := `
        SELECT id, name, created_by, min_attendance, created_at
        FROM friend_groups
        WHERE id = $1
    `

	err := r.db.QueryRowxContext(ctx, query, groupID).Scan(
		&group.ID, &group.Name, &group.CreatedBy,
		&group.MinAttendance, &group.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}

	// joined_at keeps MemberIDs in insertion order; the id is a stable
	// tie-break for members added in the same transaction.
	memberQuery := `
        SELECT user_id, priority_weight
        FROM group_members
        WHERE group_id = $1
        ORDER BY joined_at, user_id
    `

	rows, err := r.db.QueryxContext(ctx, memberQuery, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	group.PriorityWeights = make(map[int64]float64)
	for rows.Next() {
		var userID int64
		var weight float64
		if err := rows.Scan(&userID, &weight); err != nil {
			continue
		}
		group.MemberIDs = append(group.MemberIDs, userID)
		group.PriorityWeights[userID] = weight
	}

	return &group, nil
}

func (r *postgresRepository) GetGroupWindows(ctx context.Context, groupID int64, from, to time.Time) (map[int64][]AvailabilityWindow, error) {
	query := `
        SELECT aw.id, aw.user_id, aw.start_time, aw.end_time, aw.recurrence
        FROM availability_windows aw
        JOIN group_members gm ON gm.user_id = aw.user_id
        WHERE gm.group_id = $1
              AND aw.end_time > $2 AND aw.start_time < $3
        ORDER BY aw.user_id, aw.start_time
    `

	rows, err := r.db.QueryxContext(ctx, query, groupID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows := make(map[int64][]AvailabilityWindow)
	for rows.Next() {
		var w AvailabilityWindow
		if err := rows.Scan(&w.ID, &w.UserID, &w.Start, &w.End, &w.Recurrence); err != nil {
			continue
		}
		windows[w.UserID] = append(windows[w.UserID], w)
	}

	return windows, nil
}

// Preference Profile Methods

func (r *postgresRepository) GetProfiles(ctx context.Context, userIDs []int64) (map[int64]*PreferenceProfile, error) {
	profiles := make(map[int64]*PreferenceProfile, len(userIDs))
	if len(userIDs) == 0 {
		return profiles, nil
	}

	query, args, err := sqlx.In(`
        SELECT user_id, category_weights, attribute_weights, updated_at
        FROM preference_profiles
        WHERE user_id IN (?)
    `, userIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p PreferenceProfile
		var categoryJSON, attributeJSON []byte

		if err := rows.Scan(&p.UserID, &categoryJSON, &attributeJSON, &p.UpdatedAt); err != nil {
			continue
		}
		if err := json.Unmarshal(categoryJSON, &p.CategoryWeights); err != nil {
			p.CategoryWeights = map[string]float64{}
		}
		if err := json.Unmarshal(attributeJSON, &p.AttributeWeights); err != nil {
			p.AttributeWeights = map[string]float64{}
		}

		profiles[p.UserID] = &p
	}

	return profiles, nil
}

func (r *postgresRepository) SaveProfile(ctx context.Context, profile *PreferenceProfile) error {
	categoryJSON, _ := json.Marshal(profile.CategoryWeights)
	attributeJSON, _ := json.Marshal(profile.AttributeWeights)

	query := `
        INSERT INTO preference_profiles (user_id, category_weights, attribute_weights, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id)
        DO UPDATE SET
            category_weights = $2,
            attribute_weights = $3,
            updated_at = $4
    `

	_, err := r.db.ExecContext(ctx, query, profile.UserID, categoryJSON, attributeJSON, profile.UpdatedAt)
	return err
}

// Suggestion Methods

func (r *postgresRepository) GetSuggestions(ctx context.Context, category string) ([]Suggestion, error) {
	query := `
        SELECT id, name, category, attributes
        FROM suggestions
    `
	args := []interface{}{}
	if category != "" {
		query += " WHERE category = $1"
		args = append(args, category)
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSuggestions(rows)
}

func (r *postgresRepository) GetSuggestionsByIDs(ctx context.Context, ids []int64) ([]Suggestion, error) {
	if len(ids) == 0 {
		return []Suggestion{}, nil
	}

	query, args, err := sqlx.In(`
        SELECT id, name, category, attributes
        FROM suggestions
        WHERE id IN (?)
        ORDER BY id
    `, ids)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSuggestions(rows)
}

func scanSuggestions(rows *sqlx.Rows) ([]Suggestion, error) {
	var suggestions []Suggestion
	for rows.Next() {
		var s Suggestion
		var attributesJSON []byte

		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &attributesJSON); err != nil {
			continue
		}
		if err := json.Unmarshal(attributesJSON, &s.Attributes); err != nil {
			s.Attributes = map[string]string{}
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, nil
}

// Event Methods

func (r *postgresRepository) CreateEvent(ctx context.Context, event *Event) error {
	query := `
        INSERT INTO events (
            id, group_id, suggestion_id, title, start_time, end_time, status
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at
    `

	return r.db.QueryRowxContext(
		ctx, query,
		event.ID, event.GroupID, event.SuggestionID,
		event.Title, event.Start, event.End, event.Status,
	).Scan(&event.CreatedAt)
}

func (r *postgresRepository) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	query := `
        SELECT id, group_id, suggestion_id, title, start_time, end_time,
               status, created_at, finalized_at, cancelled_at
        FROM events
        WHERE id = $1
    `

	err := r.db.QueryRowxContext(ctx, query, id).Scan(
		&event.ID, &event.GroupID, &event.SuggestionID, &event.Title,
		&event.Start, &event.End, &event.Status,
		&event.CreatedAt, &event.FinalizedAt, &event.CancelledAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}

	return &event, err
}

func (r *postgresRepository) UpdateEventStatus(ctx context.Context, event *Event) error {
	query := `
        UPDATE events
        SET status = $2, finalized_at = $3, cancelled_at = $4
        WHERE id = $1
    `

	_, err := r.db.ExecContext(ctx, query, event.ID, event.Status, event.FinalizedAt, event.CancelledAt)
	return err
}

func (r *postgresRepository) ListGroupEvents(ctx context.Context, groupID int64, status string) ([]*Event, error) {
	query := `
        SELECT id, group_id, suggestion_id, title, start_time, end_time,
               status, created_at, finalized_at, cancelled_at
        FROM events
        WHERE group_id = $1
    `
	args := []interface{}{groupID}
	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY start_time"

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *postgresRepository) ListEventsStartingBetween(ctx context.Context, from, to time.Time) ([]*Event, error) {
	query := `
        SELECT id, group_id, suggestion_id, title, start_time, end_time,
               status, created_at, finalized_at, cancelled_at
        FROM events
        WHERE status = 'confirmed' AND start_time >= $1 AND start_time < $2
        ORDER BY start_time
    `

	rows, err := r.db.QueryxContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *postgresRepository) ExpirePendingEvents(ctx context.Context, before time.Time) (int64, error) {
	query := `
        UPDATE events
        SET status = 'cancelled', cancelled_at = CURRENT_TIMESTAMP
        WHERE status = 'pending' AND end_time < $1
    `

	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanEvents(rows *sqlx.Rows) ([]*Event, error) {
	var events []*Event
	for rows.Next() {
		var e Event
		err := rows.Scan(
			&e.ID, &e.GroupID, &e.SuggestionID, &e.Title,
			&e.Start, &e.End, &e.Status,
			&e.CreatedAt, &e.FinalizedAt, &e.CancelledAt,
		)
		if err != nil {
			continue
		}
		events = append(events, &e)
	}
	return events, nil
}

// Feedback Methods

func (r *postgresRepository) CreateFeedback(ctx context.Context, fb *Feedback) error {
	// Plain insert: feedback is append-only and the unique constraint on
	// (event_id, user_id) backstops the service-level duplicate check.
	query := `
        INSERT INTO event_feedback (event_id, user_id, rating, comment)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `

	return r.db.QueryRowxContext(
		ctx, query,
		fb.EventID, fb.UserID, fb.Rating, fb.Comment,
	).Scan(&fb.ID, &fb.CreatedAt)
}

func (r *postgresRepository) ListEventFeedback(ctx context.Context, eventID uuid.UUID) ([]*Feedback, error) {
	var feedback []*Feedback
	query := `
        SELECT id, event_id, user_id, rating, comment, created_at
        FROM event_feedback
        WHERE event_id = $1
        ORDER BY created_at
    `

	rows, err := r.db.QueryxContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var fb Feedback
		if err := rows.Scan(&fb.ID, &fb.EventID, &fb.UserID, &fb.Rating, &fb.Comment, &fb.CreatedAt); err != nil {
			continue
		}
		feedback = append(feedback, &fb)
	}

	return feedback, nil
}

func (r *postgresRepository) HasFeedback(ctx context.Context, eventID uuid.UUID, userID int64) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS(
            SELECT 1 FROM event_feedback
            WHERE event_id = $1 AND user_id = $2
        )
    `

	err := r.db.GetContext(ctx, &exists, query, eventID, userID)
	return exists, err
}
