package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vendora-app/vendora/internal/application"
	"github.com/vendora-app/vendora/internal/domain/entity"
	"github.com/vendora-app/vendora/internal/domain/service"
	"github.com/vendora-app/vendora/internal/interface/middleware"
	"github.com/vendora-app/vendora/pkg/response"
)

// PurchaseUseCases is the slice of application.PurchaseService the HTTP layer drives.
type PurchaseUseCases interface {
	Create(ctx context.Context, ownerID string, in application.CreatePurchaseInput) (*entity.Purchase, error)
	List(ctx context.Context, userID string) ([]*entity.Purchase, error)
	Get(ctx context.Context, actorID, id string) (*entity.Purchase, error)
	MarkSold(ctx context.Context, actorID, id string, in application.SaleInput) (*entity.Purchase, error)
	UnmarkSold(ctx context.Context, actorID, id string) (*entity.Purchase, error)
	Delete(ctx context.Context, actorID, id string) error
	AddImages(ctx context.Context, actorID, id string, urls []string) (*entity.Purchase, error)
	Preview(ctx context.Context, actorID, id string, saleAmount float64) (*service.Settlement, error)
	Search(ctx context.Context, userID, q string, size int) ([]application.SearchHit, error)
}

type PurchaseHandler struct {
	Svc    PurchaseUseCases
	Logger *logrus.Logger
}

func NewPurchaseHandler(svc PurchaseUseCases, logger *logrus.Logger) *PurchaseHandler {
	return &PurchaseHandler{Svc: svc, Logger: logger}
}

type imageRequest struct {
	URL string `json:"url" binding:"required,url"`
}

type createPurchaseRequest struct {
	Name           string         `json:"name" binding:"required"`
	Description    *string        `json:"description"`
	TotalAmount    *float64       `json:"totalAmount" binding:"required,money"`
	RafaelInvest   *float64       `json:"rafaelInvest" binding:"required,money"`
	SocioInvest    *float64       `json:"socioInvest" binding:"omitempty,money"`
	Images         []imageRequest `json:"images" binding:"omitempty,dive"`
	ParticipantIDs []string       `json:"participantIds" binding:"omitempty,dive,uuid"`
	PartnerID      string         `json:"partnerId" binding:"omitempty,uuid"`
}

type sellRequest struct {
	SaleAmount *float64 `json:"saleAmount" binding:"required,money"`
	SaleDate   string   `json:"saleDate" binding:"required"`
}

type addImagesRequest struct {
	Images []imageRequest `json:"images" binding:"required,min=1,dive"`
}

func urls(images []imageRequest) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		out = append(out, img.URL)
	}
	return out
}

func (h *PurchaseHandler) Create(c *gin.Context) {
	var req createPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), middleware.UserID(c), application.CreatePurchaseInput{
		Name:           req.Name,
		Description:    req.Description,
		TotalAmount:    req.TotalAmount,
		OwnerInvest:    req.RafaelInvest,
		PartnerInvest:  req.SocioInvest,
		ImageURLs:      urls(req.Images),
		ParticipantIDs: req.ParticipantIDs,
		PartnerID:      req.PartnerID,
	})
	if err != nil {
		writeError(c, h.Logger, "PURCHASES_POST", err)
		return
	}
	response.OK(c, http.StatusOK, p)
}

func (h *PurchaseHandler) List(c *gin.Context) {
	ps, err := h.Svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.Logger, "PURCHASES_GET", err)
		return
	}
	response.OK(c, http.StatusOK, ps)
}

func (h *PurchaseHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, "PURCHASE_GET", err)
		return
	}
	response.OK(c, http.StatusOK, p)
}

func (h *PurchaseHandler) Sell(c *gin.Context) {
	var req sellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectInput(c, "PURCHASE_SELL", func() { bindError(c, err) })
		return
	}
	p, err := h.Svc.MarkSold(c.Request.Context(), middleware.UserID(c), c.Param("id"), application.SaleInput{
		SaleAmount: req.SaleAmount,
		SaleDate:   req.SaleDate,
	})
	if err != nil {
		writeError(c, h.Logger, "PURCHASE_SELL", err)
		return
	}
	response.OK(c, http.StatusOK, p)
}

func (h *PurchaseHandler) Unsell(c *gin.Context) {
	p, err := h.Svc.UnmarkSold(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, "PURCHASE_UNSELL", err)
		return
	}
	response.OK(c, http.StatusOK, p)
}

func (h *PurchaseHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		writeError(c, h.Logger, "PURCHASE_DELETE", err)
		return
	}
	response.OK(c, http.StatusOK, response.Success{Success: true})
}

func (h *PurchaseHandler) AddImages(c *gin.Context) {
	var req addImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectInput(c, "PURCHASE_IMAGES_POST", func() { bindError(c, err) })
		return
	}
	p, err := h.Svc.AddImages(c.Request.Context(), middleware.UserID(c), c.Param("id"), urls(req.Images))
	if err != nil {
		writeError(c, h.Logger, "PURCHASE_IMAGES_POST", err)
		return
	}
	response.OK(c, http.StatusOK, p)
}

func (h *PurchaseHandler) Settlement(c *gin.Context) {
	amount, err := strconv.ParseFloat(c.Query("saleAmount"), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		h.rejectInput(c, "PURCHASE_SETTLEMENT", func() {
			response.Error(c, http.StatusBadRequest, "saleAmount must be a number")
		})
		return
	}
	st, err := h.Svc.Preview(c.Request.Context(), middleware.UserID(c), c.Param("id"), amount)
	if err != nil {
		writeError(c, h.Logger, "PURCHASE_SETTLEMENT", err)
		return
	}
	response.OK(c, http.StatusOK, st)
}

func (h *PurchaseHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), middleware.UserID(c), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, "PURCHASES_SEARCH", err)
		return
	}
	response.OK(c, http.StatusOK, hits)
}

// rejectInput answers malformed input on a /purchases/:id route. Access is resolved first, so an
// unknown id or a stranger gets 404/403 whatever the body looked like.
func (h *PurchaseHandler) rejectInput(c *gin.Context, op string, badRequest func()) {
	if _, err := h.Svc.Get(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		writeError(c, h.Logger, op, err)
		return
	}
	badRequest()
}
