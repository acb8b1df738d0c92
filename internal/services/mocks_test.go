package services

import (
	"context"

	"github.com/dimitrije/gatekeeper/internal/identity"
	"github.com/dimitrije/gatekeeper/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockClient struct{ mock.Mock }

var _ identity.Client = (*mockClient)(nil)

func (m *mockClient) SignInWithOAuth(ctx context.Context, req identity.OAuthRequest) (*identity.OAuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.OAuthResult), args.Error(1)
}

func (m *mockClient) SignOut(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockClient) GetSession(ctx context.Context) (*models.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockClient) GetUser(ctx context.Context) (*models.RawUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RawUser), args.Error(1)
}

func (m *mockClient) OnAuthStateChange(cb func(identity.Event)) identity.Subscription {
	args := m.Called(cb)
	return args.Get(0).(identity.Subscription)
}

func (m *mockClient) SignInWithOTP(ctx context.Context, req identity.OTPRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockClient) VerifyOTP(ctx context.Context, req identity.VerifyOTPRequest) (*identity.AuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.AuthResult), args.Error(1)
}

func (m *mockClient) RefreshSession(ctx context.Context, refreshToken string) (*identity.AuthResult, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.AuthResult), args.Error(1)
}

type mockStore struct{ mock.Mock }

var _ UserStore = (*mockStore)(nil)

func (m *mockStore) CreateUser(ctx context.Context, fields models.UserFields) (*models.StoredUser, error) {
	args := m.Called(ctx, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredUser), args.Error(1)
}

func (m *mockStore) UpdateUser(ctx context.Context, id uuid.UUID, fields models.UserFields) (*models.StoredUser, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredUser), args.Error(1)
}

func (m *mockStore) GetByID(ctx context.Context, id uuid.UUID) (*models.StoredUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredUser), args.Error(1)
}

func (m *mockStore) GetByProviderUserID(ctx context.Context, provider models.Provider, providerUserID string) (*models.StoredUser, error) {
	args := m.Called(ctx, provider, providerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredUser), args.Error(1)
}

type subscriptionFunc func()

func (f subscriptionFunc) Unsubscribe() { f() }
