package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	clientIDKey    = "clientId"
	clientIDHeader = "X-Client-Id"
	maxClientIDLen = 128
)

// Identity resolves the caller's client identifier. Browsers send a stable
// X-Client-Id; requests without one are keyed by their address.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		c.Set(clientIDKey, resolveClientID(c))
		c.Next()
	}
}

// ClientIDFromContext fetches the client ID set by the identity middleware.
func ClientIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(clientIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

func resolveClientID(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(clientIDHeader))
	if id != "" && len(id) <= maxClientIDLen && printable(id) {
		return "client:" + id
	}
	return "ip:" + c.ClientIP()
}

func printable(s string) bool {
	for _, r := range s {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}
