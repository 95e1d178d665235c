// internal/profile/models.go

package profile

import "time"

// Profile is the user-facing account view: identity, timezone and the
// preference weights the recommendation engine reads.
type Profile struct {
	UserID      int64     `json:"user_id" db:"user_id"`
	Username    string    `json:"username" db:"username"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Timezone    string    `json:"timezone" db:"timezone"`
	AvatarURL   *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Preferences exposes a user's learned weights. Weights live in [0,1];
// edits through the API are clamped to that range.
type Preferences struct {
	UserID           int64              `json:"user_id"`
	CategoryWeights  map[string]float64 `json:"category_weights"`
	AttributeWeights map[string]float64 `json:"attribute_weights"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

type UpdateProfileDTO struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=100"`
	Timezone    *string `json:"timezone,omitempty" validate:"omitempty,max=64"`
}

type UpdatePreferencesDTO struct {
	CategoryWeights  map[string]float64 `json:"category_weights,omitempty"`
	AttributeWeights map[string]float64 `json:"attribute_weights,omitempty"`
}
