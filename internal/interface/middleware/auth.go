package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vendora-app/vendora/pkg/helpers"
	"github.com/vendora-app/vendora/pkg/response"
)

const CtxUserIDKey = "userID"

// SessionChecker reports the session id currently active for a user.
type SessionChecker interface {
	Current(ctx context.Context, userID string) (string, error)
}

// Auth resolves the caller from a Bearer token or the access_token cookie.
// When sessions is non-nil the token's session id must still be the active one.
// It sets userID in the Gin context on success.
func Auth(sessions SessionChecker, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie(helpers.AccessCookie)
		}
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if sessions != nil {
			sid, err := sessions.Current(c.Request.Context(), claims.UserID)
			if err != nil || sid == "" || sid != claims.SessionID {
				response.Abort(c, http.StatusUnauthorized, "Unauthorized")
				return
			}
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// UserID returns the authenticated user id, or "" on public routes.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
