package middleware

import (
	"strings"

	"github.com/dimitrije/gatekeeper/internal/apperr"
	"github.com/dimitrije/gatekeeper/internal/identity"
	"github.com/dimitrije/gatekeeper/internal/models"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	UserIDKey      = "user_id"
	UserEmailKey   = "user_email"
	AccessTokenKey = "access_token"
)

// TokenValidator checks a bearer access token.
type TokenValidator interface {
	ValidateAccessToken(token string) (*models.Claims, error)
}

// Auth rejects requests without a valid bearer token.
func Auth(validator TokenValidator) drift.HandlerFunc {
	return func(c *drift.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apperr.Respond(c, apperr.Auth("missing authorization header", nil))
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			apperr.Respond(c, apperr.Auth("invalid authorization header format", nil))
			return
		}

		claims, err := validator.ValidateAccessToken(token)
		if err != nil {
			apperr.Respond(c, apperr.Auth("invalid or expired token", err))
			return
		}

		bind(c, token, claims)
		c.Next()
	}
}

// OptionalAuth binds the session of a valid bearer token and lets every
// other request through anonymously.
func OptionalAuth(validator TokenValidator) drift.HandlerFunc {
	return func(c *drift.Context) {
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if claims, err := validator.ValidateAccessToken(token); err == nil {
				bind(c, token, claims)
			}
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func bind(c *drift.Context, token string, claims *models.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UserEmailKey, claims.Email)
	c.Set(AccessTokenKey, token)
	c.Request = c.Request.WithContext(identity.WithAccessToken(c.Request.Context(), token))
}

func GetUserID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(UserIDKey); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}

func GetUserEmail(c *drift.Context) string {
	if email, ok := c.Get(UserEmailKey); ok {
		if e, ok := email.(string); ok {
			return e
		}
	}
	return ""
}

func GetAccessToken(c *drift.Context) string {
	if token, ok := c.Get(AccessTokenKey); ok {
		if s, ok := token.(string); ok {
			return s
		}
	}
	return ""
}
