package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dimitrije/gatekeeper/internal/apperr"
	"github.com/dimitrije/gatekeeper/internal/config"
	"github.com/dimitrije/gatekeeper/internal/identity"
	"github.com/dimitrije/gatekeeper/internal/models"
	"github.com/google/uuid"
)

// SignInOptions tune a provider sign-in. Nil Scopes selects the configured
// default; RefreshToken defaults to true.
type SignInOptions struct {
	Scopes       []string
	RedirectTo   string
	RefreshToken *bool
}

// AuthService signs users in through an identity provider and keeps their
// profile in the store.
type AuthService struct {
	client identity.Client
	store  UserStore
	cfg    config.AuthConfig
	now    func() time.Time
}

func NewAuthService(client identity.Client, store UserStore, cfg config.AuthConfig) *AuthService {
	return &AuthService{client: client, store: store, cfg: cfg, now: time.Now}
}

func (s *AuthService) resolveScopes(provider models.Provider, scopes []string) []string {
	if scopes != nil {
		return scopes
	}
	if configured, ok := s.cfg.DefaultScopes[string(provider)]; ok {
		return configured
	}
	return models.DefaultScopes[provider]
}

func (s *AuthService) SignIn(ctx context.Context, provider models.Provider, opts SignInOptions) (*models.AuthResponse, error) {
	refresh := true
	if opts.RefreshToken != nil {
		refresh = *opts.RefreshToken
	}

	res, err := s.client.SignInWithOAuth(ctx, identity.OAuthRequest{
		Provider:   provider,
		RedirectTo: opts.RedirectTo,
		Scopes:     strings.Join(s.resolveScopes(provider, opts.Scopes), " "),
		QueryParams: map[string]string{
			identity.QueryRefreshToken: strconv.FormatBool(refresh),
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "Sign in error", "provider", provider, "error", err)
		return nil, apperr.Auth(fmt.Sprintf("Failed to sign in with %s", provider), err)
	}

	if res == nil {
		cause := fmt.Errorf("no response from %s OAuth provider", provider)
		slog.ErrorContext(ctx, "Sign in error", "provider", provider, "error", cause)
		return nil, apperr.Auth(fmt.Sprintf("Failed to sign in with %s", provider), cause)
	}

	if res.Session == nil {
		return &models.AuthResponse{RedirectURL: res.URL}, nil
	}

	user := res.Session.User
	if user == nil {
		user = res.User
	}
	if user == nil {
		return &models.AuthResponse{Session: res.Session}, nil
	}

	go s.updateProfile(context.WithoutCancel(ctx), user)

	return &models.AuthResponse{User: models.Enhance(user), Session: res.Session}, nil
}

// SignInAs signs in with the provider that owns the scope vocabulary S.
func SignInAs[S models.ScopeVocabulary](ctx context.Context, s *AuthService, scopes []S, opts SignInOptions) (*models.AuthResponse, error) {
	var vocabulary S
	opts.Scopes = models.ScopeStrings(scopes)
	return s.SignIn(ctx, vocabulary.Provider(), opts)
}

func (s *AuthService) SignInWithGitHub(ctx context.Context, scopes []models.GitHubScope, opts SignInOptions) (*models.AuthResponse, error) {
	return SignInAs(ctx, s, scopes, opts)
}

func (s *AuthService) SignInWithGitLab(ctx context.Context, scopes []models.GitLabScope, opts SignInOptions) (*models.AuthResponse, error) {
	return SignInAs(ctx, s, scopes, opts)
}

func (s *AuthService) SignInWithMicrosoft(ctx context.Context, scopes []models.MicrosoftScope, opts SignInOptions) (*models.AuthResponse, error) {
	return SignInAs(ctx, s, scopes, opts)
}

func (s *AuthService) SignInWithGoogle(ctx context.Context, scopes []models.GoogleScope, opts SignInOptions) (*models.AuthResponse, error) {
	return SignInAs(ctx, s, scopes, opts)
}

// updateProfile stores the provider profile of a freshly signed-in user.
// Failures are logged only; sign-in has already succeeded.
func (s *AuthService) updateProfile(ctx context.Context, user *models.RawUser) {
	fullName := user.UserString(models.MetaFullName)
	avatarURL := user.UserString(models.MetaAvatarURL)
	if fullName == "" && avatarURL == "" {
		return
	}

	id, err := uuid.Parse(user.ID)
	if err != nil {
		slog.WarnContext(ctx, "Skipping profile update, user id is not a UUID", "user_id", user.ID)
		return
	}

	now := s.now()
	fields := models.UserFields{
		ID:             id,
		Name:           models.StringPtr(user.DisplayName()),
		AvatarURL:      models.StringPtr(avatarURL),
		ProviderUserID: models.StringPtr(user.ID),
		Status:         models.StringPtr(models.UserStatusActive),
		LastSignIn:     &now,
	}
	if user.Email != "" {
		fields.Email = models.StringPtr(user.Email)
	}
	if provider := user.AppString(models.MetaProvider); provider != "" {
		fields.AuthProvider = models.StringPtr(provider)
	}

	if _, err := s.store.CreateUser(ctx, fields); err != nil {
		slog.ErrorContext(ctx, "Failed to update user profile", "user_id", user.ID, "error", err)
	}
}

// Enhance exposes the provider-metadata normalization used for every user
// this service returns.
func (s *AuthService) Enhance(raw *models.RawUser) *models.EnhancedUser {
	return models.Enhance(raw)
}

func (s *AuthService) SignOut(ctx context.Context) error {
	if err := s.client.SignOut(ctx); err != nil {
		slog.ErrorContext(ctx, "Sign out error", "error", err)
		return apperr.Auth("Failed to sign out", err)
	}
	return nil
}

func (s *AuthService) GetSession(ctx context.Context) (*models.AuthResponse, error) {
	session, err := s.client.GetSession(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Get session error", "error", err)
		return nil, apperr.Auth("Failed to get session", err)
	}
	if session == nil {
		return &models.AuthResponse{}, nil
	}

	resp := &models.AuthResponse{Session: session}
	if session.User != nil {
		resp.User = models.Enhance(session.User)
	}
	return resp, nil
}

// GetUser returns the signed-in user, or nil. Provider errors are logged and
// reported as nil rather than returned.
func (s *AuthService) GetUser(ctx context.Context) *models.EnhancedUser {
	user, err := s.client.GetUser(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Get user error", "error", err)
		return nil
	}
	if user == nil {
		return nil
	}
	return models.Enhance(user)
}

// OnAuthStateChange calls cb with the enhanced user on every sign-in and
// with nil on sign-out. Other events are ignored.
func (s *AuthService) OnAuthStateChange(cb func(*models.EnhancedUser)) identity.Subscription {
	return s.client.OnAuthStateChange(func(ev identity.Event) {
		dispatchStateChange(ev, cb)
	})
}

// WatchUser is OnAuthStateChange restricted to the events of one user.
func (s *AuthService) WatchUser(userID string, cb func(*models.EnhancedUser)) identity.Subscription {
	return s.client.OnAuthStateChange(func(ev identity.Event) {
		if ev.UserID == userID {
			dispatchStateChange(ev, cb)
		}
	})
}

func dispatchStateChange(ev identity.Event, cb func(*models.EnhancedUser)) {
	switch ev.Type {
	case identity.EventSignedIn:
		if user := ev.User(); user != nil {
			cb(models.Enhance(user))
		}
	case identity.EventSignedOut:
		cb(nil)
	}
}
