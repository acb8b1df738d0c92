package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dimitrije/gatekeeper/internal/config"
	"github.com/dimitrije/gatekeeper/internal/models"
	"github.com/dimitrije/gatekeeper/internal/oauth"
)

const (
	stateTTL = 10 * time.Minute
	// QueryRefreshToken is the sign-in query flag that controls whether the
	// resulting session carries a refresh token. It is not forwarded upstream.
	QueryRefreshToken = "refresh_token"
)

var (
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrInvalidState        = errors.New("invalid or expired state")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrInvalidOTP          = errors.New("invalid or expired token")
	ErrInvalidRefreshToken = errors.New("refresh token not found or expired")
)

// LocalClient is a self-hosted identity provider. OAuth flows go through the
// provider adapters, sessions are minted locally, and every state change is
// published on the hub.
type LocalClient struct {
	providers map[models.Provider]oauth.Provider
	users     UserDirectory
	tokens    TokenStore
	signer    TokenSigner
	mailer    Mailer
	hub       *Hub
	otpExpiry time.Duration
	states    sync.Map
	now       func() time.Time
}

type stateData struct {
	provider     models.Provider
	scopes       []string
	redirectTo   string
	issueRefresh bool
	expiresAt    time.Time
}

var _ Client = (*LocalClient)(nil)

// CallbackResult is the outcome of a completed OAuth redirect.
type CallbackResult struct {
	Session    *models.Session
	RedirectTo string
}

func NewLocalClient(
	cfg *config.Config,
	users UserDirectory,
	tokens TokenStore,
	signer TokenSigner,
	mailer Mailer,
	hub *Hub,
) *LocalClient {
	c := &LocalClient{
		providers: make(map[models.Provider]oauth.Provider),
		users:     users,
		tokens:    tokens,
		signer:    signer,
		mailer:    mailer,
		hub:       hub,
		otpExpiry: time.Duration(cfg.Email.TokenExpiryMinutes) * time.Minute,
		now:       time.Now,
	}
	if c.otpExpiry <= 0 {
		c.otpExpiry = config.DefaultTokenExpiryMinutes * time.Minute
	}

	if cfg.GitHub.ClientID != "" {
		c.RegisterProvider(models.ProviderGitHub, oauth.NewGitHubProvider(cfg.GitHub))
	}
	if cfg.GitLab.ClientID != "" {
		c.RegisterProvider(models.ProviderGitLab, oauth.NewGitLabProvider(cfg.GitLab))
	}
	if cfg.Google.ClientID != "" {
		c.RegisterProvider(models.ProviderGoogle, oauth.NewGoogleProvider(cfg.Google))
	}
	if cfg.Azure.ClientID != "" {
		c.RegisterProvider(models.ProviderAzure, oauth.NewAzureProvider(cfg.Azure))
	}

	return c
}

func (c *LocalClient) RegisterProvider(name models.Provider, p oauth.Provider) {
	c.providers[name] = p
}

func (c *LocalClient) SignInWithOAuth(ctx context.Context, req OAuthRequest) (*OAuthResult, error) {
	p, ok := c.providers[req.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, req.Provider)
	}

	state, err := oauth.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	params := make(map[string]string, len(req.QueryParams))
	issueRefresh := true
	for k, v := range req.QueryParams {
		if k == QueryRefreshToken {
			issueRefresh = v != "false"
			continue
		}
		params[k] = v
	}

	scopes := strings.Fields(req.Scopes)
	c.states.Store(state, stateData{
		provider:     req.Provider,
		scopes:       scopes,
		redirectTo:   req.RedirectTo,
		issueRefresh: issueRefresh,
		expiresAt:    c.now().Add(stateTTL),
	})

	return &OAuthResult{URL: p.GetConsentURL(state, scopes, params)}, nil
}

// ExchangeCodeForSession completes an OAuth redirect started by SignInWithOAuth.
func (c *LocalClient) ExchangeCodeForSession(ctx context.Context, provider models.Provider, code, state string) (*CallbackResult, error) {
	v, ok := c.states.LoadAndDelete(state)
	if !ok {
		return nil, ErrInvalidState
	}
	sd := v.(stateData)
	if sd.provider != provider || c.now().After(sd.expiresAt) {
		return nil, ErrInvalidState
	}

	p, ok := c.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}

	info, err := p.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if info.Scopes == "" {
		info.Scopes = strings.Join(sd.scopes, " ")
	}

	user, err := c.users.FindOrCreateFromOAuth(ctx, info)
	if err != nil {
		return nil, fmt.Errorf("failed to store user: %w", err)
	}

	session, err := c.issueSession(ctx, user, sd.issueRefresh)
	if err != nil {
		return nil, err
	}

	c.hub.Publish(Event{Type: EventSignedIn, UserID: session.User.ID, Session: session})
	return &CallbackResult{Session: session, RedirectTo: sd.redirectTo}, nil
}

func (c *LocalClient) SignOut(ctx context.Context) error {
	token := AccessToken(ctx)
	if token == "" {
		return nil
	}

	claims, err := c.signer.ValidateAccessToken(token)
	if err != nil {
		return err
	}

	if err := c.tokens.RevokeAllUserTokens(ctx, claims.UserID); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}

	c.hub.Publish(Event{Type: EventSignedOut, UserID: claims.UserID.String()})
	return nil
}

func (c *LocalClient) GetSession(ctx context.Context) (*models.Session, error) {
	token := AccessToken(ctx)
	if token == "" {
		return nil, nil
	}

	claims, err := c.signer.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	user, err := c.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	var expiresAt, expiresIn int64
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Unix()
		expiresIn = max(expiresAt-c.now().Unix(), 0)
	}

	return &models.Session{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		ExpiresAt:   expiresAt,
		TokenType:   models.TokenTypeBearer,
		User:        user.RawUser(),
	}, nil
}

func (c *LocalClient) GetUser(ctx context.Context) (*models.RawUser, error) {
	session, err := c.GetSession(ctx)
	if err != nil || session == nil {
		return nil, err
	}
	return session.User, nil
}

func (c *LocalClient) OnAuthStateChange(cb func(Event)) Subscription {
	return c.hub.Subscribe(cb)
}

func (c *LocalClient) SignInWithOTP(ctx context.Context, req OTPRequest) error {
	addr, err := mail.ParseAddress(req.Email)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}

	user, err := c.users.FindOrCreateByEmail(ctx, addr.Address)
	if err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}

	token, err := oauth.GenerateState()
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	expiry := c.otpExpiry
	if req.Template != nil && req.Template.ExpiryHours > 0 {
		expiry = time.Duration(req.Template.ExpiryHours) * time.Hour
	}
	if err := c.tokens.StoreOneTimeToken(ctx, user.ID, token, c.now().Add(expiry)); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	link, err := magicLink(req.RedirectTo, token)
	if err != nil {
		return err
	}

	if err := c.mailer.SendMagicLink(addr.Address, link, req.Template); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.InfoContext(ctx, "Magic link sent", "user_id", user.ID)
	return nil
}

func magicLink(redirectTo, token string) (string, error) {
	u, err := url.Parse(redirectTo)
	if err != nil {
		return "", fmt.Errorf("invalid redirect: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	q.Set("type", OTPTypeMagicLink)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *LocalClient) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*AuthResult, error) {
	if req.Type != "" && req.Type != OTPTypeMagicLink && req.Type != "email" {
		return nil, fmt.Errorf("unsupported otp type: %s", req.Type)
	}
	if req.Token == "" {
		return nil, ErrInvalidOTP
	}

	userID, err := c.tokens.ConsumeOneTimeToken(ctx, req.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOTP, err)
	}

	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	session, err := c.issueSession(ctx, user, true)
	if err != nil {
		return nil, err
	}

	c.hub.Publish(Event{Type: EventSignedIn, UserID: session.User.ID, Session: session})
	return &AuthResult{Session: session, User: session.User}, nil
}

func (c *LocalClient) RefreshSession(ctx context.Context, refreshToken string) (*AuthResult, error) {
	userID, err := c.signer.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	// Rotation consumes the stored row, so a replayed token finds nothing.
	storedUserID, err := c.tokens.ConsumeRefreshToken(ctx, refreshToken)
	if err != nil || storedUserID != userID {
		return nil, ErrInvalidRefreshToken
	}

	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	session, err := c.issueSession(ctx, user, true)
	if err != nil {
		return nil, err
	}

	c.hub.Publish(Event{Type: EventTokenRefreshed, UserID: session.User.ID, Session: session})
	return &AuthResult{Session: session, User: session.User}, nil
}

func (c *LocalClient) issueSession(ctx context.Context, user *models.StoredUser, withRefresh bool) (*models.Session, error) {
	pair, err := c.signer.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	refresh := ""
	if withRefresh {
		expiresAt := c.now().Add(c.signer.RefreshExpiry())
		if err := c.tokens.StoreRefreshToken(ctx, user.ID, pair.RefreshToken, expiresAt); err != nil {
			return nil, fmt.Errorf("failed to store refresh token: %w", err)
		}
		refresh = pair.RefreshToken
	}

	return &models.Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: refresh,
		ExpiresIn:    pair.ExpiresIn,
		ExpiresAt:    pair.ExpiresAt,
		TokenType:    models.TokenTypeBearer,
		User:         user.RawUser(),
	}, nil
}

// CleanupStates drops OAuth states that were never completed.
func (c *LocalClient) CleanupStates() {
	now := c.now()
	c.states.Range(func(key, value any) bool {
		if sd, ok := value.(stateData); ok && now.After(sd.expiresAt) {
			c.states.Delete(key)
		}
		return true
	})
}

// Run sweeps expired states every interval until ctx is done.
func (c *LocalClient) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.CleanupStates()
		}
	}
}
