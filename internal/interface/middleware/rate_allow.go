package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vendora-app/vendora/pkg/response"
)

// AllowPrivateIP matches requests from loopback and private networks
// (10.0.0.0/8, 172.16/12, 192.168/16).
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// Restrict rejects requests that allow does not match with 403.
func Restrict(allow AllowFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if allow != nil && !allow(c) {
			response.Abort(c, http.StatusForbidden, "Forbidden")
			return
		}
		c.Next()
	}
}
