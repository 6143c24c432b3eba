package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/vendora-app/vendora/internal/interface/http"
	"github.com/vendora-app/vendora/internal/interface/middleware"
)

type UploadModule struct {
	Handler *handlers.UploadHandler
	Guard   Guard
}

func NewUploadModule(h *handlers.UploadHandler, g Guard) *UploadModule {
	return &UploadModule{Handler: h, Guard: g}
}

func (m *UploadModule) Register(rg *gin.RouterGroup) {
	auth := m.Guard.Protected(rg)
	auth.POST("/uploads/images", m.Guard.Limit("upload", 30, time.Minute, middleware.KeyByUserID()), m.Handler.Image)
}
