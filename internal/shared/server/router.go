package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docfixer-backend/internal/bootstrap"
	"docfixer-backend/internal/shared/server/middleware"
	"docfixer-backend/internal/shared/server/respond"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(app.Cfg.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"FIX":  {Rate: 0.5, Burst: 3},
				"AUTH": {Rate: 1, Burst: 5},
			},
			GroupFor: rateLimitGroup,
		}),
		middleware.Auth(app.Cfg.JWTSecret),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	app.UsersHandler.Register(api)
	app.UsageHandler.Register(api)
	app.DocfixHandler.Register(api)
	app.BillingHandler.Register(api)

	return r
}

// Document fixing is expensive; auth endpoints are brute-force targets.
// Everything else rides the default bucket.
func rateLimitGroup(c *gin.Context) string {
	switch {
	case c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/fix-document":
		return "FIX"
	case c.Request.Method == http.MethodPost &&
		(c.FullPath() == "/api/v1/auth/signup" || c.FullPath() == "/api/v1/auth/login"):
		return "AUTH"
	default:
		return ""
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
