package testutil

import (
	"context"

	"github.com/dimitrije/gatekeeper/internal/github"
	"github.com/dimitrije/gatekeeper/internal/identity"
	"github.com/dimitrije/gatekeeper/internal/models"
	"github.com/dimitrije/gatekeeper/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAuthService mocks the AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignIn(ctx context.Context, provider models.Provider, opts services.SignInOptions) (*models.AuthResponse, error) {
	args := m.Called(ctx, provider, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthResponse), args.Error(1)
}

func (m *MockAuthService) SignOut(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAuthService) GetSession(ctx context.Context) (*models.AuthResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthResponse), args.Error(1)
}

func (m *MockAuthService) GetUser(ctx context.Context) *models.EnhancedUser {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.EnhancedUser)
}

func (m *MockAuthService) WatchUser(userID string, cb func(*models.EnhancedUser)) identity.Subscription {
	args := m.Called(userID, cb)
	return args.Get(0).(identity.Subscription)
}

// MockEmailAuthService mocks the EmailAuthService
type MockEmailAuthService struct {
	mock.Mock
}

func (m *MockEmailAuthService) RequestToken(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockEmailAuthService) VerifyToken(ctx context.Context, token string) (*models.AuthResponse, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthResponse), args.Error(1)
}

func (m *MockEmailAuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockEmailAuthService) SignOut(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

// MockExchanger mocks the OAuth callback exchange of the LocalClient
type MockExchanger struct {
	mock.Mock
}

func (m *MockExchanger) ExchangeCodeForSession(ctx context.Context, provider models.Provider, code, state string) (*identity.CallbackResult, error) {
	args := m.Called(ctx, provider, code, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.CallbackResult), args.Error(1)
}

// MockUserStore mocks the UserService
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.StoredUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredUser), args.Error(1)
}

func (m *MockUserStore) UpdateUser(ctx context.Context, id uuid.UUID, fields models.UserFields) (*models.StoredUser, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredUser), args.Error(1)
}

// MockCodeHost mocks the GitHub client
type MockCodeHost struct {
	mock.Mock
}

func (m *MockCodeHost) GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Repository), args.Error(1)
}

func (m *MockCodeHost) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	args := m.Called(ctx, owner, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.PullRequest), args.Error(1)
}

// MockPinger mocks the database health check
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// SubscriptionFunc adapts a function to identity.Subscription
type SubscriptionFunc func()

func (f SubscriptionFunc) Unsubscribe() { f() }
