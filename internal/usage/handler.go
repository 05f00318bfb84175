package usage

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docfixer-backend/internal/shared/server/middleware"
	"docfixer-backend/internal/shared/server/respond"
	"docfixer-backend/internal/users"
)

// Handler exposes the current-period usage snapshot.
type Handler struct {
	svc   *Service
	users *users.Service
}

func NewHandler(svc *Service, users *users.Service) *Handler {
	return &Handler{svc: svc, users: users}
}

// Register mounts the routes on the API group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/usage", h.get)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.ErrorWithAction(c, http.StatusUnauthorized, "unauthorized", "authentication required", respond.ActionSignup, nil)
		return
	}

	u, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respond.ErrorWithAction(c, http.StatusUnauthorized, "unauthorized", "account no longer exists", respond.ActionSignup, nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "lookup_failed", "could not load account", nil)
		return
	}

	snap, err := h.svc.Snapshot(c.Request.Context(), u.ID, u.Plan)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "usage_failed", "could not load usage", nil)
		return
	}
	respond.OK(c, snap)
}
