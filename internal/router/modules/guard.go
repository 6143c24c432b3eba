package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/vendora-app/vendora/internal/interface/middleware"
)

// Guard bundles what protected modules put in front of their routes.
type Guard struct {
	Auth  gin.HandlerFunc
	Redis *redis.Client
}

// Protected returns a group that requires a session and applies per-IP and per-user limits.
func (g Guard) Protected(rg *gin.RouterGroup) *gin.RouterGroup {
	auth := rg.Group("/")
	auth.Use(g.Auth)
	auth.Use(
		middleware.RateLimit(g.Redis, middleware.Limit{Name: "api_ip", Max: 300, Window: time.Minute, Key: middleware.KeyByIP()}),
		middleware.RateLimit(g.Redis, middleware.Limit{Name: "api_user", Max: 120, Window: time.Minute, Key: middleware.KeyByUserID()}),
	)
	return auth
}

// Limit builds a named Redis-backed limiter; without Redis it passes everything through.
func (g Guard) Limit(name string, max int, window time.Duration, key middleware.KeyFunc) gin.HandlerFunc {
	return middleware.RateLimit(g.Redis, middleware.Limit{Name: name, Max: max, Window: window, Key: key})
}
