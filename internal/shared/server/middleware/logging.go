package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"legal-backend/internal/shared/telemetry"
)

// correlationKeys maps context keys set by handlers to log field names.
var correlationKeys = map[string]string{
	"sessionId":        "session_id",
	"documentId":       "document_id",
	"analysisId":       "analysis_id",
	"statusTransition": "status_transition",
}

// Logging writes one "request.complete" line per request. Server errors log
// at error level and client errors at warn; preflights are not logged.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      status,
			"bytes":       c.Writer.Size(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if userID := UserIDFromContext(c); userID != "" {
			fields["user_id"] = userID
			fields["is_guest"] = c.GetBool(isGuestKey)
		}
		for key, field := range correlationKeys {
			if v := c.GetString(key); v != "" {
				fields[field] = v
			}
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case status >= http.StatusInternalServerError:
			telemetry.Error("request.complete", fields)
		case status >= http.StatusBadRequest:
			telemetry.Warn("request.complete", fields)
		default:
			telemetry.Info("request.complete", fields)
		}
	}
}
