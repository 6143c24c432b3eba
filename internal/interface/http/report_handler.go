package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vendora-app/vendora/internal/application"
	"github.com/vendora-app/vendora/internal/interface/middleware"
	"github.com/vendora-app/vendora/pkg/response"
)

type ReportUseCases interface {
	Dashboard(ctx context.Context, userID string) (application.DashboardStats, error)
	Sales(ctx context.Context, userID string, q application.SalesQuery) (*application.SalesReport, error)
}

type ReportHandler struct {
	Svc    ReportUseCases
	Logger *logrus.Logger
}

func NewReportHandler(svc ReportUseCases, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{Svc: svc, Logger: logger}
}

func (h *ReportHandler) Dashboard(c *gin.Context) {
	stats, err := h.Svc.Dashboard(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.Logger, "DASHBOARD_GET", err)
		return
	}
	response.OK(c, http.StatusOK, stats)
}

func (h *ReportHandler) Sales(c *gin.Context) {
	report, err := h.Svc.Sales(c.Request.Context(), middleware.UserID(c), application.SalesQuery{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Partner:   c.Query("partner"),
	})
	if err != nil {
		writeError(c, h.Logger, "REPORTS_SALES_GET", err)
		return
	}
	response.OK(c, http.StatusOK, report)
}
