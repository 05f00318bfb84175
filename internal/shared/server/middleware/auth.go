package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docfixer-backend/internal/shared/auth"
	"docfixer-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
)

// Paths that must be reachable without a token.
var publicPrefixes = []string{
	"/api/v1/auth/",
	"/api/v1/billing/webhook",
	"/api/v1/health",
}

// Auth validates bearer tokens and stores identity in context.
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.ErrorWithAction(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", respond.ActionSignup, nil)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		claims, err := auth.VerifyToken(token, jwtSecret)
		if err != nil {
			respond.ErrorWithAction(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", respond.ActionSignup, nil)
			return
		}

		c.Set(userIDKey, claims.UserID)
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userEmailKey)
	if email, ok := val.(string); ok {
		return email
	}
	return ""
}
