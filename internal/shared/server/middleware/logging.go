package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-critic/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"session_id":  SessionIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
		}
		if phase := c.GetString("phase"); phase != "" {
			fields["phase"] = phase
		}
		if transition := c.GetString("stateTransition"); transition != "" {
			fields["state_transition"] = transition
		}
		telemetry.Info("request.complete", fields)
	}
}
