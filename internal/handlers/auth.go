package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dimitrije/gatekeeper/internal/apperr"
	"github.com/dimitrije/gatekeeper/internal/config"
	"github.com/dimitrije/gatekeeper/internal/models"
	"github.com/dimitrije/gatekeeper/internal/services"
	"github.com/dimitrije/gatekeeper/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

const callbackTimeout = 30 * time.Second

type AuthHandler struct {
	cfg       *config.Config
	auth      AuthServiceInterface
	exchanger CallbackExchanger
}

func NewAuthHandler(cfg *config.Config, auth AuthServiceInterface, exchanger CallbackExchanger) *AuthHandler {
	return &AuthHandler{cfg: cfg, auth: auth, exchanger: exchanger}
}

func oauthProvider(c *drift.Context) (models.Provider, error) {
	p := models.Provider(c.Param("provider"))
	for _, known := range models.OAuthProviders {
		if p == known {
			return p, nil
		}
	}
	return "", apperr.NewApp("unsupported provider: "+string(p), "UNSUPPORTED_PROVIDER", http.StatusBadRequest, nil)
}

func (h *AuthHandler) SignIn(c *drift.Context) {
	provider, err := oauthProvider(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var req dto.SignInRequest
	if c.Request.ContentLength != 0 {
		if err := c.BindJSON(&req); err != nil {
			apperr.Respond(c, apperr.NewApp("invalid request body", "INVALID_BODY", http.StatusBadRequest, nil))
			return
		}
	}

	opts := services.SignInOptions{RedirectTo: req.RedirectTo, RefreshToken: req.RefreshToken}
	if req.Scopes != nil {
		opts.Scopes = append([]string{}, *req.Scopes...)
	}

	resp, err := h.auth.SignIn(c.Request.Context(), provider, opts)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	_ = c.JSON(http.StatusOK, dto.SignInResponse{
		URL:     resp.RedirectURL,
		User:    resp.User,
		Session: resp.Session,
	})
}

// Callback completes the provider redirect and hands the session to the
// frontend in the URL fragment.
func (h *AuthHandler) Callback(c *drift.Context) {
	provider, err := oauthProvider(c)
	if err != nil {
		h.redirectWithError(c, "unsupported provider")
		return
	}

	if msg := c.QueryParam("error"); msg != "" {
		if desc := c.QueryParam("error_description"); desc != "" {
			msg = desc
		}
		h.redirectWithError(c, msg)
		return
	}

	state := c.QueryParam("state")
	if state == "" {
		h.redirectWithError(c, "missing state parameter")
		return
	}

	code := c.QueryParam("code")
	if code == "" {
		h.redirectWithError(c, "missing authorization code")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), callbackTimeout)
	defer cancel()

	result, err := h.exchanger.ExchangeCodeForSession(ctx, provider, code, state)
	if err != nil {
		slog.ErrorContext(ctx, "OAuth callback failed", "provider", provider, "error", err)
		h.redirectWithError(c, "failed to complete sign-in")
		return
	}

	target := h.redirectTarget(result.RedirectTo)
	target.Fragment = ""

	h.render(c, http.StatusOK, callbackPageData{
		Title:       "Sign-in Successful",
		Heading:     "You're signed in!",
		Subtitle:    "Redirecting you back...",
		RedirectURL: target.String() + "#" + sessionFragment(result.Session),
	})
}

func (h *AuthHandler) Session(c *drift.Context) {
	resp, err := h.auth.GetSession(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	_ = c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) User(c *drift.Context) {
	_ = c.JSON(http.StatusOK, dto.UserResponse{User: h.auth.GetUser(c.Request.Context())})
}

func (h *AuthHandler) SignOut(c *drift.Context) {
	if err := h.auth.SignOut(c.Request.Context()); err != nil {
		apperr.Respond(c, err)
		return
	}
	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "signed out"})
}

// redirectTarget honors the requested redirect only on the frontend's origin.
func (h *AuthHandler) redirectTarget(requested string) *url.URL {
	fallback, err := url.Parse(h.cfg.FrontendCallbackURL)
	if err != nil {
		fallback = &url.URL{Path: "/"}
	}
	if requested == "" {
		return fallback
	}

	u, err := url.Parse(requested)
	if err != nil || u.Scheme != fallback.Scheme || u.Host != fallback.Host {
		slog.Warn("Ignoring redirect outside the frontend origin", "redirect_to", requested)
		return fallback
	}
	return u
}

func sessionFragment(s *models.Session) string {
	v := url.Values{}
	v.Set("access_token", s.AccessToken)
	if s.RefreshToken != "" {
		v.Set("refresh_token", s.RefreshToken)
	}
	v.Set("expires_in", strconv.FormatInt(s.ExpiresIn, 10))
	v.Set("expires_at", strconv.FormatInt(s.ExpiresAt, 10))
	v.Set("token_type", s.TokenType)
	return v.Encode()
}

func (h *AuthHandler) redirectWithError(c *drift.Context, errMsg string) {
	target := h.redirectTarget("")
	q := target.Query()
	q.Set("error", errMsg)
	target.RawQuery = q.Encode()

	h.render(c, http.StatusBadRequest, callbackPageData{
		Title:       "Sign-in Failed",
		Heading:     "Sign-in failed",
		Subtitle:    errMsg,
		RedirectURL: target.String(),
		Failed:      true,
	})
}

func (h *AuthHandler) render(c *drift.Context, status int, data callbackPageData) {
	page, err := renderCallbackPage(data)
	if err != nil {
		apperr.Respond(c, apperr.Internal("failed to render callback page", err))
		return
	}
	_ = c.HTML(status, page)
}
