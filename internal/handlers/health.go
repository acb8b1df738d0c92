package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dimitrije/gatekeeper/internal/apperr"
	"github.com/m1z23r/drift/pkg/drift"
)

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(c *drift.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		apperr.Respond(c, apperr.Database("database unreachable", err))
		return
	}

	_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
