// internal/profile/repository.go

package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, profile *Profile) error
	UpdateAvatar(ctx context.Context, userID int64, url string) error

	GetPreferences(ctx context.Context, userID int64) (*Preferences, error)
	SavePreferences(ctx context.Context, prefs *Preferences) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	var p Profile
	query := `
        SELECT id, username, display_name, timezone, avatar_url, created_at
        FROM users
        WHERE id = $1
    `

	err := r.db.QueryRowxContext(ctx, query, userID).Scan(
		&p.UserID, &p.Username, &p.DisplayName, &p.Timezone, &p.AvatarURL, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}

	return &p, err
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, profile *Profile) error {
	query := `
        UPDATE users
        SET display_name = $2, timezone = $3
        WHERE id = $1
    `

	_, err := r.db.ExecContext(ctx, query, profile.UserID, profile.DisplayName, profile.Timezone)
	return err
}

func (r *postgresRepository) UpdateAvatar(ctx context.Context, userID int64, url string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET avatar_url = $2 WHERE id = $1`, userID, url)
	return err
}

func (r *postgresRepository) GetPreferences(ctx context.Context, userID int64) (*Preferences, error) {
	var prefs Preferences
	var categoryJSON, attributeJSON []byte

	query := `
        SELECT user_id, category_weights, attribute_weights, updated_at
        FROM preference_profiles
        WHERE user_id = $1
    `

	err := r.db.QueryRowxContext(ctx, query, userID).Scan(
		&prefs.UserID, &categoryJSON, &attributeJSON, &prefs.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return &Preferences{
			UserID:           userID,
			CategoryWeights:  map[string]float64{},
			AttributeWeights: map[string]float64{},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(categoryJSON, &prefs.CategoryWeights); err != nil {
		prefs.CategoryWeights = map[string]float64{}
	}
	if err := json.Unmarshal(attributeJSON, &prefs.AttributeWeights); err != nil {
		prefs.AttributeWeights = map[string]float64{}
	}

	return &prefs, nil
}

func (r *postgresRepository) SavePreferences(ctx context.Context, prefs *Preferences) error {
	categoryJSON, _ := json.Marshal(prefs.CategoryWeights)
	attributeJSON, _ := json.Marshal(prefs.AttributeWeights)
	prefs.UpdatedAt = time.Now().UTC()

	query := `
        INSERT INTO preference_profiles (user_id, category_weights, attribute_weights, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id)
        DO UPDATE SET
            category_weights = $2,
            attribute_weights = $3,
            updated_at = $4
    `

	_, err := r.db.ExecContext(ctx, query, prefs.UserID, categoryJSON, attributeJSON, prefs.UpdatedAt)
	return err
}
