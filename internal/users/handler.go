package users

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docfixer-backend/internal/shared/auth"
	"docfixer-backend/internal/shared/server/middleware"
	"docfixer-backend/internal/shared/server/respond"
)

// Handler exposes signup, login, and the current-user endpoint.
type Handler struct {
	svc       *Service
	jwtSecret string
	tokenTTL  time.Duration
}

func NewHandler(svc *Service, jwtSecret string, tokenTTL time.Duration) *Handler {
	return &Handler{svc: svc, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Register mounts the routes on the API group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/signup", h.signup)
	rg.POST("/auth/login", h.login)
	rg.GET("/users/me", h.me)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (h *Handler) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "request body must be JSON with email and password", nil)
		return
	}

	u, err := h.svc.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		case errors.Is(err, ErrEmailTaken):
			respond.Error(c, http.StatusConflict, "email_taken", "an account with this email already exists", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "signup_failed", "could not create account", nil)
		}
		return
	}

	token, err := auth.GenerateToken(u.ID, u.Email, u.Plan, h.jwtSecret, h.tokenTTL)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "token_failed", "could not issue token", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, authResponse{Token: token, User: u})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "request body must be JSON with email and password", nil)
		return
	}

	u, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respond.ErrorWithAction(c, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", respond.ActionSignup, nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "login_failed", "could not log in", nil)
		return
	}

	token, err := auth.GenerateToken(u.ID, u.Email, u.Plan, h.jwtSecret, h.tokenTTL)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "token_failed", "could not issue token", nil)
		return
	}
	respond.OK(c, authResponse{Token: token, User: u})
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.ErrorWithAction(c, http.StatusUnauthorized, "unauthorized", "authentication required", respond.ActionSignup, nil)
		return
	}

	u, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.ErrorWithAction(c, http.StatusUnauthorized, "unauthorized", "account no longer exists", respond.ActionSignup, nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "lookup_failed", "could not load account", nil)
		return
	}
	respond.OK(c, u)
}
