package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindDefaults(t *testing.T) {
	tests := []struct {
		kind   Kind
		status int
		code   string
		name   string
	}{
		{KindApp, http.StatusBadRequest, "APP_ERROR", "AppError"},
		{KindAuth, http.StatusUnauthorized, "AUTH_ERROR", "AuthError"},
		{KindNotFound, http.StatusNotFound, "NOT_FOUND", "NotFoundError"},
		{KindGitHub, http.StatusBadGateway, "GITHUB_ERROR", "GitHubError"},
		{KindDatabase, http.StatusServiceUnavailable, "DATABASE_ERROR", "DatabaseError"},
		{KindInternal, http.StatusInternalServerError, "INTERNAL_ERROR", "InternalError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.kind, "msg", nil)
			assert.Equal(t, tt.status, e.StatusCode)
			assert.Equal(t, tt.code, e.Code)
			assert.Equal(t, tt.name, e.Kind.String())
			assert.NotNil(t, e.Details)
			assert.Empty(t, e.Details)
		})
	}
}

func TestError_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	e := Auth("Failed to sign out", cause)

	assert.ErrorIs(t, e, cause)
	assert.Equal(t, "Failed to sign out: connection refused", e.Error())
	assert.Equal(t, "Failed to sign out", e.Message)
}

func TestAs_FindsWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NotFound("repository not found"))

	e, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, e.Kind)
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(errors.New("plain"), KindNotFound))
}

func TestNewApp_Overrides(t *testing.T) {
	e := NewApp("too many files", "VALIDATION_ERROR", http.StatusUnprocessableEntity, map[string]any{"max": 10})

	assert.Equal(t, KindApp, e.Kind)
	assert.Equal(t, "VALIDATION_ERROR", e.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, e.StatusCode)
	assert.Equal(t, 10, e.Details["max"])

	plain := NewApp("bad input", "", 0, nil)
	assert.Equal(t, "APP_ERROR", plain.Code)
	assert.Equal(t, http.StatusBadRequest, plain.StatusCode)
}

func TestGitHub_OnlyPresentRateLimitFields(t *testing.T) {
	remaining := int64(0)
	e := GitHub("rate limited", RateLimit{Remaining: &remaining}, nil)

	assert.Equal(t, map[string]any{"remaining": int64(0)}, e.Details)
}
