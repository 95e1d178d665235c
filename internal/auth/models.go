// internal/auth/models.go

package auth

import "time"

// User is an account. Timezone is the user's home zone, used when their
// clients submit local times; availability itself is stored in UTC.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username" db:"username"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	Timezone     string    `json:"timezone" db:"timezone"`
	EmailOptIn   bool      `json:"email_opt_in" db:"email_opt_in"`
	SMSOptIn     bool      `json:"sms_opt_in" db:"sms_opt_in"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Username    string  `json:"username" validate:"required,min=3,max=30,alphanum"`
	DisplayName string  `json:"display_name" validate:"required,min=1,max=100"`
	Password    string  `json:"password" validate:"required,min=8,max=100"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,e164"`
	Timezone    string  `json:"timezone,omitempty" validate:"omitempty,max=64"`
}

// LoginRequest authenticates by email or username.
type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse carries the token pair after register/login/refresh.
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}
