package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/vendora-app/vendora/internal/interface/middleware"
	"github.com/vendora-app/vendora/pkg/metrics"
)

// MetricsModule exposes Prometheus metrics to scrapers on private networks.
type MetricsModule struct{}

func NewMetricsModule() *MetricsModule { return &MetricsModule{} }

func (m *MetricsModule) Register(rg *gin.RouterGroup) {
	rg.GET("/metrics", middleware.Restrict(middleware.AllowPrivateIP()), gin.WrapH(metrics.Handler()))
}
