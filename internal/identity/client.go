// Package identity defines the contract the auth services expect from an
// identity provider, the auth-state event fan-out, and a self-hosted
// provider implementing that contract on top of the OAuth adapters.
package identity

import (
	"context"

	"github.com/dimitrije/gatekeeper/internal/config"
	"github.com/dimitrije/gatekeeper/internal/models"
)

// OAuthRequest starts an OAuth sign-in. Scopes is space separated.
type OAuthRequest struct {
	Provider    models.Provider
	RedirectTo  string
	Scopes      string
	QueryParams map[string]string
}

// OAuthResult carries either a consent URL to follow or an immediate session.
type OAuthResult struct {
	URL     string
	Session *models.Session
	User    *models.RawUser
}

type OTPRequest struct {
	Email      string
	RedirectTo string
	Template   *config.EmailTemplate
}

const OTPTypeMagicLink = "magiclink"

type VerifyOTPRequest struct {
	Token string
	Type  string
}

// AuthResult is the session and user produced by a token exchange. Either
// may be nil when the provider accepted the call but issued nothing.
type AuthResult struct {
	Session *models.Session
	User    *models.RawUser
}

// Client is the identity provider as the auth services consume it.
// GetSession and GetUser return nil without error when nobody is signed in.
type Client interface {
	SignInWithOAuth(ctx context.Context, req OAuthRequest) (*OAuthResult, error)
	SignOut(ctx context.Context) error
	GetSession(ctx context.Context) (*models.Session, error)
	GetUser(ctx context.Context) (*models.RawUser, error)
	OnAuthStateChange(cb func(Event)) Subscription
	SignInWithOTP(ctx context.Context, req OTPRequest) error
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*AuthResult, error)
	RefreshSession(ctx context.Context, refreshToken string) (*AuthResult, error)
}
