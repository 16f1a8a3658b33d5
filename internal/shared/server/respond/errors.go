package respond

import (
	"github.com/gin-gonic/gin"

	"legal-backend/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response and logs it with the request's
// identity and the session or analysis it concerns.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	requestID := c.GetString("requestId")
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": requestID,
	}
	for key, field := range map[string]string{
		"userId":     "user_id",
		"sessionId":  "session_id",
		"analysisId": "analysis_id",
	} {
		if v := c.GetString(key); v != "" {
			fields[field] = v
		}
	}
	if isGuest, ok := c.Get("isGuest"); ok {
		fields["is_guest"] = isGuest
	}

	// 5xx is ours; 4xx is the caller's.
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
	})
}
