package identity

import (
	"context"
	"time"

	"github.com/dimitrije/gatekeeper/internal/config"
	"github.com/dimitrije/gatekeeper/internal/models"
	"github.com/dimitrije/gatekeeper/internal/oauth"
	"github.com/google/uuid"
)

// UserDirectory defines the user lookups LocalClient needs from UserService
type UserDirectory interface {
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.StoredUser, error)
	FindOrCreateByEmail(ctx context.Context, email string) (*models.StoredUser, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.StoredUser, error)
}

// TokenStore defines the refresh and one-time token persistence LocalClient
// needs from TokenService. Tokens are passed in the clear and hashed by the store.
type TokenStore interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	ConsumeRefreshToken(ctx context.Context, token string) (uuid.UUID, error)
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
	StoreOneTimeToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	ConsumeOneTimeToken(ctx context.Context, token string) (uuid.UUID, error)
}

// TokenSigner defines the JWT operations LocalClient needs from JWTService
type TokenSigner interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*models.TokenPair, error)
	ValidateAccessToken(token string) (*models.Claims, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// Mailer defines the outbound mail LocalClient needs from EmailService
type Mailer interface {
	SendMagicLink(to, link string, tmpl *config.EmailTemplate) error
}
