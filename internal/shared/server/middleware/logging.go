package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-review/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_id":   ClientIDFromContext(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if recordID := c.GetString("recordId"); recordID != "" {
			fields["record_id"] = recordID
		}
		if outcome := c.GetString("uploadOutcome"); outcome != "" {
			fields["upload_outcome"] = outcome
		}
		telemetry.Info("request.complete", fields)
	}
}
