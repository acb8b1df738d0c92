package services

import (
	"context"
	"errors"

	"github.com/dimitrije/gatekeeper/internal/apperr"
	"github.com/dimitrije/gatekeeper/internal/database"
	"github.com/dimitrije/gatekeeper/internal/models"
	"github.com/dimitrije/gatekeeper/internal/oauth"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserStore is the persistence the auth services write profiles through.
type UserStore interface {
	CreateUser(ctx context.Context, fields models.UserFields) (*models.StoredUser, error)
	UpdateUser(ctx context.Context, id uuid.UUID, fields models.UserFields) (*models.StoredUser, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.StoredUser, error)
	GetByProviderUserID(ctx context.Context, provider models.Provider, providerUserID string) (*models.StoredUser, error)
}

const userColumns = `id, email, name, avatar_url, provider_user_id, auth_provider, status,
	last_sign_in, provider_token, provider_scopes, created_at, updated_at`

type UserService struct {
	db *database.DB
}

var _ UserStore = (*UserService)(nil)

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

func scanUser(row pgx.Row) (*models.StoredUser, error) {
	var user models.StoredUser
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL,
		&user.ProviderUserID, &user.AuthProvider, &user.Status,
		&user.LastSignIn, &user.ProviderToken, &user.ProviderScopes,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// storeError maps pgx failures onto the error taxonomy.
func storeError(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.New(apperr.KindNotFound, "user not found", err)
	}
	return apperr.Database(msg, err)
}

// CreateUser inserts the user or, when the id already exists, overwrites the
// fields that are set. A zero ID gets a fresh one.
func (s *UserService) CreateUser(ctx context.Context, f models.UserFields) (*models.StoredUser, error) {
	id := f.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		INSERT INTO users (id, email, name, avatar_url, provider_user_id, auth_provider, status, last_sign_in)
		VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), $4, COALESCE($5, ''), COALESCE($6, 'email'), COALESCE($7, 'active'), $8)
		ON CONFLICT (id) DO UPDATE SET
			email = COALESCE($2, users.email),
			name = COALESCE($3, users.name),
			avatar_url = COALESCE($4, users.avatar_url),
			provider_user_id = COALESCE($5, users.provider_user_id),
			auth_provider = COALESCE($6, users.auth_provider),
			status = COALESCE($7, users.status),
			last_sign_in = COALESCE($8, users.last_sign_in),
			updated_at = NOW()
		RETURNING `+userColumns,
		id, f.Email, f.Name, f.AvatarURL, f.ProviderUserID, f.AuthProvider, f.Status, f.LastSignIn,
	))
	if err != nil {
		return nil, apperr.Database("failed to save user", err)
	}
	return user, nil
}

// UpdateUser applies the set fields of f to an existing user.
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, f models.UserFields) (*models.StoredUser, error) {
	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		UPDATE users SET
			email = COALESCE($2, email),
			name = COALESCE($3, name),
			avatar_url = COALESCE($4, avatar_url),
			provider_user_id = COALESCE($5, provider_user_id),
			auth_provider = COALESCE($6, auth_provider),
			status = COALESCE($7, status),
			last_sign_in = CASE WHEN $9 THEN NULL ELSE COALESCE($8, last_sign_in) END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, f.Email, f.Name, f.AvatarURL, f.ProviderUserID, f.AuthProvider, f.Status, f.LastSignIn, f.ClearLastSignIn,
	))
	if err != nil {
		return nil, storeError(err, "failed to update user")
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.StoredUser, error) {
	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE id = $1
	`, id))
	if err != nil {
		return nil, storeError(err, "failed to load user")
	}
	return user, nil
}

func (s *UserService) GetByProviderUserID(ctx context.Context, provider models.Provider, providerUserID string) (*models.StoredUser, error) {
	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE auth_provider = $1 AND provider_user_id = $2
	`, string(provider), providerUserID))
	if err != nil {
		return nil, storeError(err, "failed to load user")
	}
	return user, nil
}

// FindOrCreateFromOAuth records a completed OAuth sign-in, refreshing the
// profile and provider token of a returning user.
func (s *UserService) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.StoredUser, error) {
	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, avatar_url, provider_user_id, auth_provider, status, last_sign_in, provider_token, provider_scopes)
		VALUES ($1, $2, $3, $4, $5, 'active', NOW(), $6, $7)
		ON CONFLICT (auth_provider, provider_user_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			avatar_url = COALESCE(EXCLUDED.avatar_url, users.avatar_url),
			status = 'active',
			last_sign_in = NOW(),
			provider_token = EXCLUDED.provider_token,
			provider_scopes = EXCLUDED.provider_scopes,
			updated_at = NOW()
		RETURNING `+userColumns,
		info.Email, info.Name, nullableString(info.AvatarURL), info.ID, info.Provider, info.AccessToken, info.Scopes,
	))
	if err != nil {
		return nil, apperr.Database("failed to save user", err)
	}
	return user, nil
}

// FindOrCreateByEmail returns the passwordless account for email, creating it
// on first use. Email accounts use their own id as provider user id.
// Concurrent first requests for one address resolve to the same row.
func (s *UserService) FindOrCreateByEmail(ctx context.Context, email string) (*models.StoredUser, error) {
	id := uuid.New()
	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		INSERT INTO users (id, email, name, provider_user_id, auth_provider, status)
		VALUES ($1, $2, $3, $4, 'email', 'active')
		ON CONFLICT (email) WHERE auth_provider = 'email' DO UPDATE SET
			updated_at = NOW()
		RETURNING `+userColumns,
		id, email, defaultName(email), id.String(),
	))
	if err != nil {
		return nil, apperr.Database("failed to save user", err)
	}
	return user, nil
}

func defaultName(email string) string {
	return (&models.RawUser{Email: email}).DisplayName()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
