package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-critic/internal/shared/server/respond"
)

const (
	// SessionHeader carries the caller's session identity in both directions.
	SessionHeader = "X-Session-Id"

	sessionIDKey = "sessionId"
)

// Session reads the session header, rejects malformed IDs and stores the
// normalized ID in context. A missing header is allowed; handlers decide
// whether to mint a new session.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(SessionHeader))
		if raw == "" {
			c.Next()
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "invalid_session", "X-Session-Id must be a UUID", nil)
			return
		}
		c.Set(sessionIDKey, id.String())
		c.Next()
	}
}

// SessionIDFromContext fetches the session ID set by the Session middleware.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(sessionIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// SetSessionID stores a freshly minted session ID and echoes it to the client.
func SetSessionID(c *gin.Context, id string) {
	c.Set(sessionIDKey, id)
	c.Writer.Header().Set(SessionHeader, id)
}
