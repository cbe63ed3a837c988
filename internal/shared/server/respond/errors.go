package respond

import (
	"github.com/gin-gonic/gin"

	"study-assistant/internal/shared/apperr"
	"study-assistant/internal/shared/telemetry"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	logError(c, status, code, message, nil)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// FromError maps err through the apperr taxonomy and sends the matching response.
// Errors outside the taxonomy are reported as internal faults.
func FromError(c *gin.Context, err error) {
	appErr := apperr.As(err)
	if appErr == nil {
		return
	}
	status := appErr.Kind.Status()
	logError(c, status, string(appErr.Kind), appErr.Message, appErr.Cause)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Error:   appErr.Message,
		Code:    string(appErr.Kind),
	})
}

func logError(c *gin.Context, status int, code, message string, cause error) {
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
	if cause != nil {
		fields["cause"] = cause.Error()
	}
	telemetry.Error("http.error", fields)
}
