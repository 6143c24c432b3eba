package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/vendora-app/vendora/internal/interface/http"
	"github.com/vendora-app/vendora/internal/interface/middleware"
)

// AuthModule wires account routes.
// Public: POST /api/register, POST /api/login, POST /api/refresh
// Protected: POST /api/logout, GET /api/me
type AuthModule struct {
	Handler *handlers.UserHandler
	Guard   Guard
}

func NewAuthModule(h *handlers.UserHandler, g Guard) *AuthModule {
	return &AuthModule{Handler: h, Guard: g}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/register", m.Guard.Limit("register", 5, time.Minute, middleware.KeyByIPAndPath()), m.Handler.Register)
	rg.POST("/login", m.Guard.Limit("login", 10, time.Minute, middleware.KeyByIP()), m.Handler.Login)
	rg.POST("/refresh", m.Guard.Limit("refresh", 60, time.Minute, middleware.KeyByIP()), m.Handler.Refresh)

	auth := m.Guard.Protected(rg)
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/me", m.Handler.Me)
	}
}
