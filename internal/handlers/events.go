package handlers

import (
	"log/slog"

	"github.com/dimitrije/gatekeeper/internal/apperr"
	"github.com/dimitrije/gatekeeper/internal/middleware"
	"github.com/dimitrije/gatekeeper/internal/models"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const eventBuffer = 16

type authStateMessage struct {
	User     *models.EnhancedUser `json:"user"`
	SignedIn bool                 `json:"signed_in"`
}

type EventsHandler struct {
	auth AuthServiceInterface
}

func NewEventsHandler(auth AuthServiceInterface) *EventsHandler {
	return &EventsHandler{auth: auth}
}

// Stream pushes the caller's auth-state changes over server-sent events
// until the client goes away.
func (h *EventsHandler) Stream(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		apperr.Respond(c, apperr.Auth("not authenticated", nil))
		return
	}

	updates := make(chan *models.EnhancedUser, eventBuffer)
	sub := h.auth.WatchUser(userID.String(), func(u *models.EnhancedUser) {
		select {
		case updates <- u:
		default:
			slog.Warn("Dropping auth event for slow stream", "user_id", userID)
		}
	})
	defer sub.Unsubscribe()

	sseCtx := c.SSE()

	if err := sseCtx.SendJSON(map[string]string{
		"type":    "connected",
		"user_id": userID.String(),
	}, "system", ""); err != nil {
		return
	}

	done := c.Request.Context().Done()
	for {
		select {
		case u := <-updates:
			if err := sseCtx.SendJSON(authStateMessage{User: u, SignedIn: u != nil}, "auth", ""); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
