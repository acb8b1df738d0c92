package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/dimitrije/gatekeeper/internal/apperr"
	"github.com/dimitrije/gatekeeper/internal/config"
	"github.com/dimitrije/gatekeeper/internal/identity"
	"github.com/dimitrije/gatekeeper/internal/models"
	"github.com/google/uuid"
)

// sessionExpiresIn is what email-flow sessions advertise as expires_in.
const sessionExpiresIn = 3600

// EmailAuthService signs users in with one-time links. Session expiry is
// computed here rather than taken from the provider.
type EmailAuthService struct {
	client identity.Client
	store  UserStore
	cfg    config.EmailAuthConfig
	now    func() time.Time
}

func NewEmailAuthService(client identity.Client, store UserStore, cfg config.EmailAuthConfig) *EmailAuthService {
	return &EmailAuthService{client: client, store: store, cfg: cfg, now: time.Now}
}

func (s *EmailAuthService) expiryMinutes() int {
	if s.cfg.TokenExpiryMinutes > 0 {
		return s.cfg.TokenExpiryMinutes
	}
	return config.DefaultTokenExpiryMinutes
}

func (s *EmailAuthService) session(src *models.Session, user *models.RawUser) *models.Session {
	return &models.Session{
		AccessToken:  src.AccessToken,
		RefreshToken: src.RefreshToken,
		ExpiresIn:    sessionExpiresIn,
		ExpiresAt:    s.now().Unix() + int64(s.expiryMinutes())*60,
		TokenType:    models.TokenTypeBearer,
		User:         user,
	}
}

func (s *EmailAuthService) RequestToken(ctx context.Context, email string) error {
	err := s.client.SignInWithOTP(ctx, identity.OTPRequest{
		Email:      email,
		RedirectTo: s.cfg.RedirectTo,
		Template:   s.cfg.Template,
	})
	if err != nil {
		return apperr.Auth("Failed to send magic link", err)
	}
	return nil
}

func (s *EmailAuthService) VerifyToken(ctx context.Context, token string) (*models.AuthResponse, error) {
	const invalid = "Invalid or expired magic link"

	res, err := s.client.VerifyOTP(ctx, identity.VerifyOTPRequest{Token: token, Type: identity.OTPTypeMagicLink})
	if err != nil {
		return nil, apperr.Auth(invalid, err)
	}
	if res == nil || res.Session == nil || res.User == nil {
		return nil, apperr.Auth(invalid, nil)
	}

	raw := res.User
	id, err := uuid.Parse(raw.ID)
	if err != nil {
		return nil, apperr.Auth(invalid, err)
	}

	now := s.now()
	fields := models.UserFields{
		ID:             id,
		Name:           models.StringPtr(raw.DisplayName()),
		ProviderUserID: models.StringPtr(raw.ID),
		AuthProvider:   models.StringPtr(string(models.ProviderEmail)),
		Status:         models.StringPtr(models.UserStatusActive),
		LastSignIn:     &now,
	}
	if raw.Email != "" {
		fields.Email = models.StringPtr(raw.Email)
	}

	stored, err := s.store.CreateUser(ctx, fields)
	if err != nil {
		return nil, apperr.Auth(invalid, err)
	}

	user := models.Enhance(raw)
	user.Provider = models.ProviderEmail
	user.Name = stored.Name
	if stored.AvatarURL != nil {
		user.AvatarURL = *stored.AvatarURL
	}

	return &models.AuthResponse{User: user, Session: s.session(res.Session, raw)}, nil
}

func (s *EmailAuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	res, err := s.client.RefreshSession(ctx, refreshToken)
	if err != nil {
		return nil, apperr.Auth("Failed to refresh token", err)
	}
	if res == nil || res.Session == nil {
		return nil, apperr.Auth("Failed to refresh token", nil)
	}

	user := res.User
	if user == nil {
		user = res.Session.User
	}
	return s.session(res.Session, user), nil
}

// SignOut ends the provider session and marks the user inactive. Any failure
// is reported as a single authentication error.
func (s *EmailAuthService) SignOut(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.SignOut(ctx); err != nil {
		return apperr.Auth("Failed to sign out", err)
	}

	if _, err := s.store.UpdateUser(ctx, userID, models.UserFields{
		Status: models.StringPtr(models.UserStatusInactive),
	}); err != nil {
		slog.ErrorContext(ctx, "Failed to mark user inactive", "user_id", userID, "error", err)
		return apperr.Auth("Failed to sign out", err)
	}
	return nil
}
