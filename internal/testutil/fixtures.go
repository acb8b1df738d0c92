package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dimitrije/gatekeeper/internal/database"
	"github.com/dimitrije/gatekeeper/internal/models"
	"github.com/dimitrije/gatekeeper/internal/oauth"
	"github.com/google/uuid"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser inserts a GitHub user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.StoredUser {
	t.Helper()
	f.counter++

	user := &models.StoredUser{
		ID:             uuid.New(),
		Email:          fmt.Sprintf("user%d@example.com", f.counter),
		Name:           fmt.Sprintf("Test User %d", f.counter),
		AuthProvider:   string(models.ProviderGitHub),
		ProviderUserID: fmt.Sprintf("provider-%d", f.counter),
		Status:         models.UserStatusActive,
	}

	for _, opt := range opts {
		opt(user)
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO users (id, email, name, avatar_url, auth_provider, provider_user_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, user.ID, user.Email, user.Name, user.AvatarURL, user.AuthProvider, user.ProviderUserID, user.Status).Scan(
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.StoredUser)

func WithEmail(email string) UserOption {
	return func(u *models.StoredUser) {
		u.Email = email
	}
}

func WithName(name string) UserOption {
	return func(u *models.StoredUser) {
		u.Name = name
	}
}

func WithProvider(provider models.Provider, providerUserID string) UserOption {
	return func(u *models.StoredUser) {
		u.AuthProvider = string(provider)
		u.ProviderUserID = providerUserID
	}
}

func WithAvatar(url string) UserOption {
	return func(u *models.StoredUser) {
		u.AvatarURL = &url
	}
}

// CreateRefreshToken stores an already hashed refresh token
func (f *Fixtures) CreateRefreshToken(t *testing.T, userID uuid.UUID, tokenHash string, expiresAt time.Time) {
	t.Helper()
	_, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	if err != nil {
		t.Fatalf("failed to create refresh token: %v", err)
	}
}

func OAuthUserInfo(email, name string, provider models.Provider, id string) *oauth.UserInfo {
	return &oauth.UserInfo{
		Email:    email,
		Name:     name,
		ID:       id,
		Provider: string(provider),
	}
}
