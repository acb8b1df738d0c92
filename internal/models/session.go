package models

import (
	"strings"
	"time"
)

// Metadata keys understood by Enhance.
const (
	MetaProvider      = "provider"
	MetaProviderToken = "provider_token"
	MetaScopes        = "scopes"
	MetaFullName      = "full_name"
	MetaAvatarURL     = "avatar_url"
)

// RawUser is a user as the identity provider reports it.
type RawUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata"`
	UserMetadata map[string]any `json:"user_metadata"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AppString returns a string entry of app_metadata, or "" when absent.
func (u *RawUser) AppString(key string) string {
	return metaString(u.AppMetadata, key)
}

// UserString returns a string entry of user_metadata, or "" when absent.
func (u *RawUser) UserString(key string) string {
	return metaString(u.UserMetadata, key)
}

// EmailLocalPart returns the part of the email before '@'.
func (u *RawUser) EmailLocalPart() string {
	if u.Email == "" {
		return ""
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

// DisplayName falls back from full_name to the email local part to "Unknown User".
func (u *RawUser) DisplayName() string {
	if name := u.UserString(MetaFullName); name != "" {
		return name
	}
	if local := u.EmailLocalPart(); local != "" {
		return local
	}
	return "Unknown User"
}

func metaString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// EnhancedUser is the application-facing user derived from a RawUser.
type EnhancedUser struct {
	RawUser
	Provider       Provider `json:"provider"`
	ProviderUserID string   `json:"provider_user_id"`
	Name           string   `json:"name,omitempty"`
	AvatarURL      string   `json:"avatar_url,omitempty"`
	ProviderToken  string   `json:"provider_token,omitempty"`
	// ProviderScopes is never nil.
	ProviderScopes []string `json:"provider_scopes"`
}

// Enhance normalizes provider metadata into an EnhancedUser.
func Enhance(raw *RawUser) *EnhancedUser {
	scopes := []string{}
	if s := raw.AppString(MetaScopes); s != "" {
		scopes = strings.Split(s, " ")
	}

	return &EnhancedUser{
		RawUser:        *raw,
		Provider:       Provider(raw.AppString(MetaProvider)),
		ProviderUserID: raw.ID,
		Name:           raw.UserString(MetaFullName),
		AvatarURL:      raw.UserString(MetaAvatarURL),
		ProviderToken:  raw.AppString(MetaProviderToken),
		ProviderScopes: scopes,
	}
}

const TokenTypeBearer = "bearer"

// Session is a time-bounded access/refresh token pair and its owner.
type Session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	ExpiresAt    int64    `json:"expires_at"`
	TokenType    string   `json:"token_type"`
	User         *RawUser `json:"user"`
}

// Expired reports whether the session is past its expires_at.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt > 0 && now.Unix() >= s.ExpiresAt
}

// AuthResponse holds the outcome of a sign-in. User and Session are nil
// together; RedirectURL is set when an OAuth redirect is still pending.
type AuthResponse struct {
	User        *EnhancedUser `json:"user"`
	Session     *Session      `json:"session"`
	RedirectURL string        `json:"redirect_url,omitempty"`
}

// Pending reports whether the caller still has to follow RedirectURL.
func (r *AuthResponse) Pending() bool {
	return r.Session == nil && r.RedirectURL != ""
}
