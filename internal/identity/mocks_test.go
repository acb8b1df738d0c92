package identity

import (
	"context"
	"time"

	"github.com/dimitrije/gatekeeper/internal/config"
	"github.com/dimitrije/gatekeeper/internal/models"
	"github.com/dimitrije/gatekeeper/internal/oauth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.StoredUser, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredUser), args.Error(1)
}

func (m *mockUsers) FindOrCreateByEmail(ctx context.Context, email string) (*models.StoredUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredUser), args.Error(1)
}

func (m *mockUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.StoredUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredUser), args.Error(1)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	return m.Called(ctx, userID, token, expiresAt).Error(0)
}

func (m *mockTokens) ConsumeRefreshToken(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockTokens) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockTokens) StoreOneTimeToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	return m.Called(ctx, userID, token, expiresAt).Error(0)
}

func (m *mockTokens) ConsumeOneTimeToken(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) GenerateTokenPair(userID uuid.UUID, email string) (*models.TokenPair, error) {
	args := m.Called(userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

func (m *mockSigner) ValidateAccessToken(token string) (*models.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Claims), args.Error(1)
}

func (m *mockSigner) ValidateRefreshToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockSigner) RefreshExpiry() time.Duration {
	return 7 * 24 * time.Hour
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendMagicLink(to, link string, tmpl *config.EmailTemplate) error {
	return m.Called(to, link, tmpl).Error(0)
}

type fakeProvider struct {
	name      string
	info      *oauth.UserInfo
	err       error
	gotState  string
	gotScopes []string
	gotParams map[string]string
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) GetConsentURL(state string, scopes []string, params map[string]string) string {
	p.gotState = state
	p.gotScopes = scopes
	p.gotParams = params
	return "https://provider.test/authorize?state=" + state
}

func (p *fakeProvider) ExchangeCode(ctx context.Context, code string) (*oauth.UserInfo, error) {
	if p.err != nil {
		return nil, p.err
	}
	info := *p.info
	return &info, nil
}
