package handlers

import (
	"net/http"
	"strings"

	"github.com/dimitrije/gatekeeper/internal/apperr"
	"github.com/dimitrije/gatekeeper/internal/middleware"
	"github.com/dimitrije/gatekeeper/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type EmailAuthHandler struct {
	emailAuth EmailAuthServiceInterface
}

func NewEmailAuthHandler(emailAuth EmailAuthServiceInterface) *EmailAuthHandler {
	return &EmailAuthHandler{emailAuth: emailAuth}
}

func badRequest(message string) error {
	return apperr.NewApp(message, "INVALID_REQUEST", http.StatusBadRequest, nil)
}

func (h *EmailAuthHandler) RequestMagicLink(c *drift.Context) {
	var req dto.MagicLinkRequest
	if err := c.BindJSON(&req); err != nil {
		apperr.Respond(c, badRequest("invalid request body"))
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		apperr.Respond(c, badRequest("email is required"))
		return
	}

	if err := h.emailAuth.RequestToken(c.Request.Context(), email); err != nil {
		apperr.Respond(c, err)
		return
	}

	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "magic link sent"})
}

func (h *EmailAuthHandler) VerifyMagicLink(c *drift.Context) {
	var req dto.VerifyMagicLinkRequest
	if err := c.BindJSON(&req); err != nil {
		apperr.Respond(c, badRequest("invalid request body"))
		return
	}

	if req.Token == "" {
		apperr.Respond(c, badRequest("token is required"))
		return
	}

	resp, err := h.emailAuth.VerifyToken(c.Request.Context(), req.Token)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	_ = c.JSON(http.StatusOK, resp)
}

func (h *EmailAuthHandler) RefreshToken(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		apperr.Respond(c, badRequest("invalid request body"))
		return
	}

	if req.RefreshToken == "" {
		apperr.Respond(c, badRequest("refresh_token is required"))
		return
	}

	session, err := h.emailAuth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	_ = c.JSON(http.StatusOK, session)
}

func (h *EmailAuthHandler) SignOut(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		apperr.Respond(c, apperr.Auth("not authenticated", nil))
		return
	}

	if err := h.emailAuth.SignOut(c.Request.Context(), userID); err != nil {
		apperr.Respond(c, err)
		return
	}

	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "signed out"})
}
