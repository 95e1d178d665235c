// internal/auth/service_test.go

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gatherly/gatherly-backend/internal/common/utils"
)

const testSecret = "test-secret"

// fakeRepository keeps users in maps and records which lookup Login used.
type fakeRepository struct {
	byID       map[int64]*User
	byEmail    map[string]*User
	byUsername map[string]*User
	lastLookup string
	nextID     int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		byID:       make(map[int64]*User),
		byEmail:    make(map[string]*User),
		byUsername: make(map[string]*User),
		nextID:     1,
	}
}

func (r *fakeRepository) add(user *User) *User {
	user.ID = r.nextID
	r.nextID++
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	r.byUsername[user.Username] = user
	return user
}

func (r *fakeRepository) CreateUser(ctx context.Context, user *User) error {
	r.add(user)
	return nil
}

func (r *fakeRepository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *fakeRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	r.lastLookup = "email"
	user, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *fakeRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	r.lastLookup = "username"
	user, ok := r.byUsername[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *fakeRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *fakeRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, ok := r.byUsername[username]
	return ok, nil
}

func seedUser(repo *fakeRepository, email, username, password string) *User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return repo.add(&User{
		Email:        email,
		Username:     username,
		DisplayName:  username,
		PasswordHash: string(hash),
		Timezone:     "UTC",
	})
}

// newTestService wires a nil Redis client; the paths under test all fail or
// return before the service touches Redis.
func newTestService(repo Repository) Service {
	return NewService(repo, nil, testSecret)
}

func TestRegister_Conflicts(t *testing.T) {
	repo := newFakeRepository()
	seedUser(repo, "alice@example.com", "alice", "password1")
	svc := newTestService(repo)

	tests := []struct {
		name    string
		req     *RegisterRequest
		wantErr error
	}{
		{
			name: "duplicate email",
			req: &RegisterRequest{
				Email:    "alice@example.com",
				Username: "alice2",
				Password: "password1",
			},
			wantErr: ErrEmailTaken,
		},
		{
			name: "email matching is case-insensitive",
			req: &RegisterRequest{
				Email:    "  Alice@Example.COM ",
				Username: "alice2",
				Password: "password1",
			},
			wantErr: ErrEmailTaken,
		},
		{
			name: "duplicate username",
			req: &RegisterRequest{
				Email:    "bob@example.com",
				Username: "alice",
				Password: "password1",
			},
			wantErr: ErrUsernameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegister_RejectsUnknownTimezone(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "bob@example.com",
		Username: "bob",
		Password: "password1",
		Timezone: "Mars/Olympus_Mons",
	})
	if err == nil {
		t.Fatal("Register() with unknown timezone succeeded, want error")
	}
}

func TestLogin_RoutesByIdentifier(t *testing.T) {
	repo := newFakeRepository()
	seedUser(repo, "alice@example.com", "alice", "password1")
	svc := newTestService(repo)

	tests := []struct {
		name       string
		identifier string
		wantLookup string
	}{
		{"email identifier", "alice@example.com", "email"},
		{"username identifier", "alice", "username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Wrong password keeps the service out of token issuance while
			// still exercising the lookup path.
			_, err := svc.Login(context.Background(), &LoginRequest{
				EmailOrUsername: tt.identifier,
				Password:        "wrong-password",
			})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("Login() error = %v, want %v", err, ErrInvalidCredentials)
			}
			if repo.lastLookup != tt.wantLookup {
				t.Errorf("Login() looked up by %q, want %q", repo.lastLookup, tt.wantLookup)
			}
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := newFakeRepository()
	seedUser(repo, "alice@example.com", "alice", "password1")
	svc := newTestService(repo)

	tests := []struct {
		name       string
		identifier string
		password   string
	}{
		{"unknown user", "nobody@example.com", "password1"},
		{"wrong password", "alice@example.com", "not-the-password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), &LoginRequest{
				EmailOrUsername: tt.identifier,
				Password:        tt.password,
			})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login() error = %v, want %v", err, ErrInvalidCredentials)
			}
		})
	}
}

func TestValidateToken(t *testing.T) {
	svc := newTestService(newFakeRepository())
	now := time.Now()

	makeToken := func(secret string, expiresAt time.Time) string {
		token, err := utils.GenerateJWT(&utils.JWTClaims{
			UserID:    42,
			Email:     "alice@example.com",
			Username:  "alice",
			Type:      "access",
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  now.Unix(),
			NotBefore: now.Unix(),
			Issuer:    "gatherly",
			Subject:   "42",
		}, secret)
		if err != nil {
			t.Fatalf("GenerateJWT() error = %v", err)
		}
		return token
	}

	t.Run("valid token round-trips claims", func(t *testing.T) {
		claims, err := svc.ValidateToken(context.Background(), makeToken(testSecret, now.Add(time.Hour)))
		if err != nil {
			t.Fatalf("ValidateToken() error = %v", err)
		}
		if claims.UserID != 42 {
			t.Errorf("claims.UserID = %d, want 42", claims.UserID)
		}
		if claims.Type != "access" {
			t.Errorf("claims.Type = %q, want %q", claims.Type, "access")
		}
		if claims.Username != "alice" {
			t.Errorf("claims.Username = %q, want %q", claims.Username, "alice")
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := svc.ValidateToken(context.Background(), makeToken("other-secret", now.Add(time.Hour)))
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateToken() error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		_, err := svc.ValidateToken(context.Background(), makeToken(testSecret, now.Add(-time.Hour)))
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateToken() error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken(context.Background(), "not.a.token")
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateToken() error = %v, want %v", err, ErrInvalidToken)
		}
	})
}

func TestGetUserByID(t *testing.T) {
	repo := newFakeRepository()
	alice := seedUser(repo, "alice@example.com", "alice", "password1")
	svc := newTestService(repo)

	user, err := svc.GetUserByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("user.Username = %q, want %q", user.Username, "alice")
	}

	if _, err := svc.GetUserByID(context.Background(), 999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUserByID(999) error = %v, want %v", err, ErrUserNotFound)
	}
}
