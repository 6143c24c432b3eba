package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/vendora-app/vendora/internal/interface/http"
)

type PurchaseModule struct {
	Handler *handlers.PurchaseHandler
	Guard   Guard
}

func NewPurchaseModule(h *handlers.PurchaseHandler, g Guard) *PurchaseModule {
	return &PurchaseModule{Handler: h, Guard: g}
}

func (m *PurchaseModule) Register(rg *gin.RouterGroup) {
	auth := m.Guard.Protected(rg)
	{
		auth.POST("/purchases", m.Handler.Create)
		auth.GET("/purchases", m.Handler.List)
		auth.GET("/purchases/search", m.Handler.Search)
		auth.GET("/purchases/:id", m.Handler.Get)
		auth.DELETE("/purchases/:id", m.Handler.Delete)
		auth.GET("/purchases/:id/settlement", m.Handler.Settlement)
		auth.POST("/purchases/:id/sell", m.Handler.Sell)
		auth.DELETE("/purchases/:id/sell", m.Handler.Unsell)
		auth.POST("/purchases/:id/images", m.Handler.AddImages)
	}
}
