package handlers

import (
	"context"

	"github.com/dimitrije/gatekeeper/internal/github"
	"github.com/dimitrije/gatekeeper/internal/identity"
	"github.com/dimitrije/gatekeeper/internal/models"
	"github.com/dimitrije/gatekeeper/internal/services"
	"github.com/google/uuid"
)

// AuthServiceInterface defines the methods used by handlers from AuthService
type AuthServiceInterface interface {
	SignIn(ctx context.Context, provider models.Provider, opts services.SignInOptions) (*models.AuthResponse, error)
	SignOut(ctx context.Context) error
	GetSession(ctx context.Context) (*models.AuthResponse, error)
	GetUser(ctx context.Context) *models.EnhancedUser
	WatchUser(userID string, cb func(*models.EnhancedUser)) identity.Subscription
}

// EmailAuthServiceInterface defines the methods used by handlers from EmailAuthService
type EmailAuthServiceInterface interface {
	RequestToken(ctx context.Context, email string) error
	VerifyToken(ctx context.Context, token string) (*models.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.Session, error)
	SignOut(ctx context.Context, userID uuid.UUID) error
}

// CallbackExchanger completes an OAuth redirect started by SignIn.
type CallbackExchanger interface {
	ExchangeCodeForSession(ctx context.Context, provider models.Provider, code, state string) (*identity.CallbackResult, error)
}

// UserStoreInterface defines the methods used by handlers from UserService
type UserStoreInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.StoredUser, error)
	UpdateUser(ctx context.Context, id uuid.UUID, fields models.UserFields) (*models.StoredUser, error)
}

// CodeHost is the code-hosting API used by the repository routes.
type CodeHost interface {
	GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error)
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
}

// CodeHostFactory returns a CodeHost acting with the given provider token.
type CodeHostFactory func(token string) CodeHost

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
