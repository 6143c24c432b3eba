package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/vendora-app/vendora/internal/interface/http"
)

type ReportModule struct {
	Handler *handlers.ReportHandler
	Guard   Guard
}

func NewReportModule(h *handlers.ReportHandler, g Guard) *ReportModule {
	return &ReportModule{Handler: h, Guard: g}
}

func (m *ReportModule) Register(rg *gin.RouterGroup) {
	auth := m.Guard.Protected(rg)
	{
		auth.GET("/dashboard", m.Handler.Dashboard)
		auth.GET("/reports/sales", m.Handler.Sales)
	}
}
