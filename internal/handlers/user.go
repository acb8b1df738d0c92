package handlers

import (
	"net/http"
	"strings"

	"github.com/dimitrije/gatekeeper/internal/apperr"
	"github.com/dimitrije/gatekeeper/internal/middleware"
	"github.com/dimitrije/gatekeeper/internal/models"
	"github.com/dimitrije/gatekeeper/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type UserHandler struct {
	users UserStoreInterface
}

func NewUserHandler(users UserStoreInterface) *UserHandler {
	return &UserHandler{users: users}
}

func profile(u *models.StoredUser) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		AvatarURL:    u.AvatarURL,
		AuthProvider: u.AuthProvider,
		Status:       u.Status,
		LastSignIn:   u.LastSignIn,
	}
}

func (h *UserHandler) GetMe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		apperr.Respond(c, apperr.Auth("not authenticated", nil))
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	_ = c.JSON(http.StatusOK, profile(user))
}

func (h *UserHandler) UpdateMe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		apperr.Respond(c, apperr.Auth("not authenticated", nil))
		return
	}

	var req dto.UpdateUserRequest
	if err := c.BindJSON(&req); err != nil {
		apperr.Respond(c, badRequest("invalid request body"))
		return
	}

	if req.Name == nil && req.AvatarURL == nil {
		apperr.Respond(c, badRequest("nothing to update"))
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		apperr.Respond(c, badRequest("name must not be empty"))
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), userID, models.UserFields{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	_ = c.JSON(http.StatusOK, profile(user))
}
