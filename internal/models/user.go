package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// StoredUser is a row of the users table.
type StoredUser struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	AvatarURL      *string    `json:"avatar_url,omitempty"`
	ProviderUserID string     `json:"provider_user_id"`
	AuthProvider   string     `json:"auth_provider"`
	Status         string     `json:"status"`
	LastSignIn     *time.Time `json:"last_sign_in,omitempty"`
	ProviderToken  string     `json:"-"`
	ProviderScopes string     `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// UserFields is the insert or partial update payload for a stored user.
// Nil pointers are left untouched on update.
type UserFields struct {
	ID             uuid.UUID
	Email          *string
	Name           *string
	AvatarURL      *string
	ProviderUserID *string
	AuthProvider   *string
	Status         *string
	LastSignIn     *time.Time
	// ClearLastSignIn resets last_sign_in to NULL. It wins over LastSignIn.
	ClearLastSignIn bool
}

func StringPtr(s string) *string {
	return &s
}

// RawUser renders the stored row the way the identity provider reports users.
func (u *StoredUser) RawUser() *RawUser {
	avatar := ""
	if u.AvatarURL != nil {
		avatar = *u.AvatarURL
	}

	app := map[string]any{MetaProvider: u.AuthProvider}
	if u.ProviderToken != "" {
		app[MetaProviderToken] = u.ProviderToken
	}
	if u.ProviderScopes != "" {
		app[MetaScopes] = u.ProviderScopes
	}

	return &RawUser{
		ID:          u.ID.String(),
		Email:       u.Email,
		AppMetadata: app,
		UserMetadata: map[string]any{
			MetaFullName:  u.Name,
			MetaAvatarURL: avatar,
		},
		CreatedAt: u.CreatedAt,
	}
}
