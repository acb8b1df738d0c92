package handlers

import (
	"net/http"
	"strconv"

	"github.com/dimitrije/gatekeeper/internal/apperr"
	"github.com/dimitrije/gatekeeper/internal/models"
	"github.com/m1z23r/drift/pkg/drift"
)

type RepoHandler struct {
	auth     AuthServiceInterface
	codeHost CodeHostFactory
}

func NewRepoHandler(auth AuthServiceInterface, codeHost CodeHostFactory) *RepoHandler {
	return &RepoHandler{auth: auth, codeHost: codeHost}
}

// client acts with the GitHub token the signed-in user granted at sign-in.
func (h *RepoHandler) client(c *drift.Context) (CodeHost, error) {
	user := h.auth.GetUser(c.Request.Context())
	if user == nil {
		return nil, apperr.Auth("not authenticated", nil)
	}
	if user.Provider != models.ProviderGitHub || user.ProviderToken == "" {
		return nil, apperr.NewApp("no GitHub account linked to this session", "GITHUB_NOT_LINKED", http.StatusForbidden, nil)
	}
	return h.codeHost(user.ProviderToken), nil
}

func (h *RepoHandler) GetRepository(c *drift.Context) {
	client, err := h.client(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	repo, err := client.GetRepository(c.Request.Context(), c.Param("owner"), c.Param("repo"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	_ = c.JSON(http.StatusOK, repo)
}

func (h *RepoHandler) GetPullRequest(c *drift.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number <= 0 {
		apperr.Respond(c, badRequest("invalid pull request number"))
		return
	}

	client, err := h.client(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	pr, err := client.GetPullRequest(c.Request.Context(), c.Param("owner"), c.Param("repo"), number)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	_ = c.JSON(http.StatusOK, pr)
}
