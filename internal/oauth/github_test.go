package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dimitrije/gatekeeper/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestGitHubProvider(tokenURL, apiURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     "test-client-id",
			ClientSecret: "test-secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:  tokenURL + "/authorize",
				TokenURL: tokenURL + "/token",
			},
		},
		apiURL: apiURL,
	}
}

func tokenServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGitHubProvider_Name(t *testing.T) {
	provider := NewGitHubProvider(config.OAuthConfig{})
	assert.Equal(t, "github", provider.Name())
}

func TestGitHubProvider_GetConsentURL(t *testing.T) {
	provider := NewGitHubProvider(config.OAuthConfig{
		ClientID:    "test-client-id",
		RedirectURL: "http://localhost/callback",
	})

	url := provider.GetConsentURL("test-state", []string{"repo"}, nil)

	assert.Contains(t, url, "github.com")
	assert.Contains(t, url, "client_id=test-client-id")
	assert.Contains(t, url, "state=test-state")
	assert.Contains(t, url, "scope=repo")
	assert.Contains(t, url, "redirect_uri=http")
}

func TestGitHubProvider_ExchangeCode_Success(t *testing.T) {
	tokens := tokenServer(t, `{"access_token":"gho_test","token_type":"bearer","scope":"read:user,repo"}`)

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gho_test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 12345,
			"login": "testuser",
			"name": "Test User",
			"email": "test@example.com",
			"avatar_url": "https://avatars.githubusercontent.com/u/12345"
		}`))
	}))
	defer api.Close()

	provider := newTestGitHubProvider(tokens.URL, api.URL)

	info, err := provider.ExchangeCode(context.Background(), "code")
	require.NoError(t, err)

	assert.Equal(t, "12345", info.ID)
	assert.Equal(t, "Test User", info.Name)
	assert.Equal(t, "test@example.com", info.Email)
	assert.Equal(t, "github", info.Provider)
	assert.Equal(t, "gho_test", info.AccessToken)
	assert.Equal(t, "read:user repo", info.Scopes)
}

func TestGitHubProvider_ExchangeCode_WithEmailFallback(t *testing.T) {
	tokens := tokenServer(t, `{"access_token":"gho_test","token_type":"bearer"}`)

	userEmailsFetched := false
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/user":
			_, _ = w.Write([]byte(`{"id": 12345, "login": "testuser", "name": "", "email": ""}`))
		case "/user/emails":
			userEmailsFetched = true
			_, _ = w.Write([]byte(`[
				{"email": "secondary@example.com", "primary": false, "verified": true},
				{"email": "private@example.com", "primary": true, "verified": true}
			]`))
		}
	}))
	defer api.Close()

	provider := newTestGitHubProvider(tokens.URL, api.URL)

	info, err := provider.ExchangeCode(context.Background(), "code")
	require.NoError(t, err)

	assert.True(t, userEmailsFetched)
	assert.Equal(t, "private@example.com", info.Email)
	assert.Equal(t, "testuser", info.Name, "name falls back to login")
}

func TestGitHubProvider_ExchangeCode_APIError(t *testing.T) {
	tokens := tokenServer(t, `{"access_token":"gho_test","token_type":"bearer"}`)

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer api.Close()

	provider := newTestGitHubProvider(tokens.URL, api.URL)

	_, err := provider.ExchangeCode(context.Background(), "code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
