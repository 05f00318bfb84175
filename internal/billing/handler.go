package billing

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"docfixer-backend/internal/shared/server/middleware"
	"docfixer-backend/internal/shared/server/respond"
	"docfixer-backend/internal/users"
)

const maxWebhookBytes = 1 << 20

// Handler exposes the checkout and webhook endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the routes on the API group. The webhook route is public;
// it is authenticated by its signature instead of a bearer token.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/billing/checkout-session", h.checkoutSession)
	rg.POST("/billing/webhook", h.webhook)
}

func (h *Handler) checkoutSession(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.ErrorWithAction(c, http.StatusUnauthorized, "unauthorized", "authentication required", respond.ActionSignup, nil)
		return
	}

	url, err := h.svc.CreateCheckoutSession(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotConfigured):
			respond.ErrorWithAction(c, http.StatusServiceUnavailable, "billing_unavailable", "billing is not configured", respond.ActionContactSupport, nil)
		case errors.Is(err, users.ErrNotFound):
			respond.ErrorWithAction(c, http.StatusUnauthorized, "unauthorized", "account no longer exists", respond.ActionSignup, nil)
		default:
			respond.Error(c, http.StatusBadGateway, "checkout_failed", "could not start checkout", nil)
		}
		return
	}
	respond.OK(c, gin.H{"url": url})
}

func (h *Handler) webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "unreadable_payload", "could not read webhook payload", nil)
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.svc.HandleEvent(c.Request.Context(), payload, signature); err != nil {
		switch {
		case errors.Is(err, ErrInvalidSignature):
			respond.Error(c, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed", nil)
		case errors.Is(err, ErrNotConfigured):
			respond.Error(c, http.StatusServiceUnavailable, "billing_unavailable", "billing is not configured", nil)
		default:
			// Non-2xx makes Stripe retry the delivery later.
			respond.Error(c, http.StatusInternalServerError, "webhook_failed", "could not process webhook event", nil)
		}
		return
	}
	respond.OK(c, gin.H{"received": true})
}
