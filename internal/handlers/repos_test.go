package handlers

import (
	"net/http"
	"testing"

	"github.com/dimitrije/gatekeeper/internal/apperr"
	"github.com/dimitrije/gatekeeper/internal/github"
	"github.com/dimitrije/gatekeeper/internal/models"
	"github.com/dimitrije/gatekeeper/internal/testutil"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupRepoTest(t *testing.T) (*testutil.MockAuthService, *testutil.MockCodeHost, *[]string, *testutil.HTTPTestClient) {
	t.Helper()
	mockAuth := new(testutil.MockAuthService)
	mockHost := new(testutil.MockCodeHost)
	var tokens []string

	handler := NewRepoHandler(mockAuth, func(token string) CodeHost {
		tokens = append(tokens, token)
		return mockHost
	})

	app := drift.New()
	app.Get("/repos/:owner/:repo", handler.GetRepository)
	app.Get("/repos/:owner/:repo/pulls/:number", handler.GetPullRequest)

	return mockAuth, mockHost, &tokens, testutil.NewHTTPTestClient(t, app)
}

func githubUser() *models.EnhancedUser {
	return &models.EnhancedUser{
		RawUser:        models.RawUser{ID: "u1"},
		Provider:       models.ProviderGitHub,
		ProviderToken:  "gho_abc",
		ProviderScopes: []string{"repo"},
	}
}

func TestRepoHandler_GetRepository(t *testing.T) {
	mockAuth, mockHost, tokens, client := setupRepoTest(t)
	mockAuth.On("GetUser", mock.Anything).Return(githubUser())
	mockHost.On("GetRepository", mock.Anything, "octo", "hello").
		Return(&github.Repository{ID: 1, FullName: "octo/hello", DefaultBranch: "main"}, nil)

	rec := client.GET("/repos/octo/hello", nil)

	testutil.AssertStatus(t, rec, http.StatusOK)
	var repo github.Repository
	testutil.ParseJSON(t, rec, &repo)
	assert.Equal(t, "octo/hello", repo.FullName)
	assert.Equal(t, []string{"gho_abc"}, *tokens)
}

func TestRepoHandler_GetPullRequest(t *testing.T) {
	mockAuth, mockHost, _, client := setupRepoTest(t)
	mockAuth.On("GetUser", mock.Anything).Return(githubUser())
	mockHost.On("GetPullRequest", mock.Anything, "octo", "hello", 42).
		Return(&github.PullRequest{Number: 42, Title: "Fix"}, nil)

	rec := client.GET("/repos/octo/hello/pulls/42", nil)

	testutil.AssertStatus(t, rec, http.StatusOK)
	var pr github.PullRequest
	testutil.ParseJSON(t, rec, &pr)
	assert.Equal(t, "Fix", pr.Title)
}

func TestRepoHandler_InvalidPullNumber(t *testing.T) {
	mockAuth, _, _, client := setupRepoTest(t)

	rec := client.GET("/repos/octo/hello/pulls/abc", nil)

	testutil.AssertErrorBody(t, rec, http.StatusBadRequest, "AppError", "invalid pull request number")
	mockAuth.AssertNotCalled(t, "GetUser", mock.Anything)
}

func TestRepoHandler_RequiresGitHubSession(t *testing.T) {
	testCases := []struct {
		name    string
		user    *models.EnhancedUser
		status  int
		typ     string
		message string
	}{
		{"signed out", nil, http.StatusUnauthorized, "AuthError", "not authenticated"},
		{
			"other provider",
			&models.EnhancedUser{Provider: models.ProviderGoogle, ProviderToken: "ya29"},
			http.StatusForbidden, "AppError", "no GitHub account linked to this session",
		},
		{
			"no token",
			&models.EnhancedUser{Provider: models.ProviderGitHub},
			http.StatusForbidden, "AppError", "no GitHub account linked to this session",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockAuth, _, tokens, client := setupRepoTest(t)
			if tc.user == nil {
				mockAuth.On("GetUser", mock.Anything).Return(nil)
			} else {
				mockAuth.On("GetUser", mock.Anything).Return(tc.user)
			}

			rec := client.GET("/repos/octo/hello", nil)

			testutil.AssertErrorBody(t, rec, tc.status, tc.typ, tc.message)
			assert.Empty(t, *tokens)
		})
	}
}

func TestRepoHandler_RateLimitHeaders(t *testing.T) {
	mockAuth, mockHost, _, client := setupRepoTest(t)
	limit, remaining, reset := int64(5000), int64(0), int64(1600000000)
	mockAuth.On("GetUser", mock.Anything).Return(githubUser())
	mockHost.On("GetRepository", mock.Anything, "octo", "hello").
		Return(nil, apperr.GitHub("GitHub rate limit exceeded", apperr.RateLimit{
			Limit: &limit, Remaining: &remaining, Reset: &reset,
		}, nil))

	rec := client.GET("/repos/octo/hello", nil)

	testutil.AssertErrorBody(t, rec, http.StatusBadGateway, "GitHubError", "GitHub rate limit exceeded")
	assert.Equal(t, "5000", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "1600000000", rec.Header().Get("X-RateLimit-Reset"))
	assert.Empty(t, rec.Header().Get("Retry-After"))
}

func TestRepoHandler_NotFound(t *testing.T) {
	mockAuth, mockHost, _, client := setupRepoTest(t)
	mockAuth.On("GetUser", mock.Anything).Return(githubUser())
	mockHost.On("GetRepository", mock.Anything, "octo", "missing").
		Return(nil, apperr.New(apperr.KindNotFound, "GitHub resource not found", nil))

	rec := client.GET("/repos/octo/missing", nil)

	testutil.AssertErrorBody(t, rec, http.StatusNotFound, "NotFoundError", "GitHub resource not found")
}
