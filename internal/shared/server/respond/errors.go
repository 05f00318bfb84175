package respond

import (
	"github.com/gin-gonic/gin"

	"docfixer-backend/internal/shared/telemetry"
)

// Action hints tell the client how the user can unblock themselves.
const (
	ActionSignup         = "signup"
	ActionUpgrade        = "upgrade"
	ActionContactSupport = "contact_support"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Action  string      `json:"action,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	ErrorWithAction(c, status, code, message, "", details)
}

// ErrorWithAction sends a standardized error response including an action hint.
func ErrorWithAction(c *gin.Context, status int, code, message, action string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Action:  action,
			Details: details,
		},
	})
}
