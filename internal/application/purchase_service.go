package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vendora-app/vendora/internal/domain/entity"
	"github.com/vendora-app/vendora/internal/domain/errs"
	repo "github.com/vendora-app/vendora/internal/domain/repository"
	"github.com/vendora-app/vendora/internal/domain/service"
	"github.com/vendora-app/vendora/pkg/metrics"
)

// PurchaseIndexer mirrors purchases into a search backend. Failures never block the lifecycle.
type PurchaseIndexer interface {
	Index(ctx context.Context, p *entity.Purchase) error
	Remove(ctx context.Context, purchaseID string) error
	Search(ctx context.Context, userID, q string, size int) ([]SearchHit, error)
}

// SaleNotifier tells co-investors that a sale was recorded.
type SaleNotifier interface {
	SaleRecorded(ctx context.Context, actorID string, p *entity.Purchase, s service.Settlement) error
}

// SearchHit is one purchase matched by full-text search.
type SearchHit struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	TotalAmount float64 `json:"totalAmount"`
	Score       float64 `json:"score"`
}

type PurchaseService struct {
	Repo     repo.PurchaseRepository
	Users    repo.UserRepository
	Index    PurchaseIndexer
	Notifier SaleNotifier
	Logger   *logrus.Logger
}

func NewPurchaseService(purchases repo.PurchaseRepository, users repo.UserRepository, index PurchaseIndexer, notifier SaleNotifier, logger *logrus.Logger) *PurchaseService {
	return &PurchaseService{
		Repo:     purchases,
		Users:    users,
		Index:    index,
		Notifier: notifier,
		Logger:   logger,
	}
}

// CreatePurchaseInput is the already-decoded creation payload. Nil amounts mean "absent".
type CreatePurchaseInput struct {
	Name           string
	Description    *string
	TotalAmount    *float64
	OwnerInvest    *float64
	PartnerInvest  *float64
	ImageURLs      []string
	ParticipantIDs []string
	PartnerID      string
}

// SaleInput carries the sale outcome; SaleDate accepts YYYY-MM-DD or RFC 3339.
type SaleInput struct {
	SaleAmount *float64
	SaleDate   string
}

// Create records a new purchase in the bought state, together with its images and co-investors.
func (s *PurchaseService) Create(ctx context.Context, ownerID string, in CreatePurchaseInput) (p *entity.Purchase, err error) {
	defer func() { metrics.ObservePurchaseOp("create", err) }()

	if ownerID == "" {
		return nil, errs.ErrUnauthenticated
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || in.TotalAmount == nil || in.OwnerInvest == nil {
		return nil, errs.Validation("missing required fields")
	}
	partnerInvest := 0.0
	if in.PartnerInvest != nil {
		partnerInvest = *in.PartnerInvest
	}
	if err := service.ValidateInvestment(*in.TotalAmount, *in.OwnerInvest, partnerInvest); err != nil {
		return nil, err
	}

	owner, err := s.Users.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrUnauthenticated
		}
		return nil, err
	}
	participants, err := s.resolveParticipants(ctx, ownerID, in)
	if err != nil {
		return nil, err
	}

	images := make([]entity.Image, 0, len(in.ImageURLs))
	for _, u := range in.ImageURLs {
		if u = strings.TrimSpace(u); u != "" {
			images = append(images, entity.Image{URL: u})
		}
	}

	summary := owner.Summary()
	p = &entity.Purchase{
		Name:          name,
		Description:   in.Description,
		TotalAmount:   *in.TotalAmount,
		OwnerInvest:   *in.OwnerInvest,
		PartnerInvest: partnerInvest,
		Status:        entity.StatusBought,
		UserID:        ownerID,
		User:          &summary,
		Participants:  participants,
		Images:        images,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.index(ctx, p)
	return p, nil
}

// resolveParticipants merges participantIds and partnerId into a deduplicated set without the owner.
func (s *PurchaseService) resolveParticipants(ctx context.Context, ownerID string, in CreatePurchaseInput) ([]entity.UserSummary, error) {
	seen := map[string]bool{ownerID: true}
	ids := make([]string, 0, len(in.ParticipantIDs)+1)
	for _, id := range append(append([]string{}, in.ParticipantIDs...), in.PartnerID) {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return nil, errs.Validation("unknown participant")
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return []entity.UserSummary{}, nil
	}

	users, err := s.Users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]entity.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]entity.UserSummary, 0, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			return nil, errs.Validation("unknown participant")
		}
		out = append(out, u.Summary())
	}
	return out, nil
}

// List returns every purchase userID owns or co-invested in, newest first.
func (s *PurchaseService) List(ctx context.Context, userID string) ([]*entity.Purchase, error) {
	if userID == "" {
		return nil, errs.ErrUnauthenticated
	}
	return s.Repo.ListVisibleTo(ctx, userID)
}

// Get returns one purchase if actorID may see it.
func (s *PurchaseService) Get(ctx context.Context, actorID, id string) (*entity.Purchase, error) {
	return s.loadFor(ctx, actorID, id, service.CanView)
}

// MarkSold moves a bought purchase to sold. Owner or any participant may do it.
func (s *PurchaseService) MarkSold(ctx context.Context, actorID, id string, in SaleInput) (p *entity.Purchase, err error) {
	defer func() { metrics.ObservePurchaseOp("sell", err) }()

	p, err = s.loadFor(ctx, actorID, id, service.CanManage)
	if err != nil {
		return nil, err
	}
	if in.SaleAmount == nil || strings.TrimSpace(in.SaleDate) == "" {
		return nil, errs.Validation("missing required fields")
	}
	if *in.SaleAmount < 0 {
		return nil, errs.Validation("sale amount must not be negative")
	}
	at, err := ParseSaleDate(in.SaleDate)
	if err != nil {
		return nil, err
	}
	if err := service.CheckTransition(p.Status, entity.StatusSold); err != nil {
		return nil, err
	}

	prev := p.Status
	p.MarkSold(*in.SaleAmount, at)
	if err := s.Repo.UpdateSale(ctx, p, prev); err != nil {
		return nil, err
	}
	s.index(ctx, p)
	s.notifySale(ctx, actorID, p)
	return p, nil
}

// UnmarkSold reverts a sold purchase, clearing the sale fields.
func (s *PurchaseService) UnmarkSold(ctx context.Context, actorID, id string) (p *entity.Purchase, err error) {
	defer func() { metrics.ObservePurchaseOp("unsell", err) }()

	p, err = s.loadFor(ctx, actorID, id, service.CanManage)
	if err != nil {
		return nil, err
	}
	if err := service.CheckTransition(p.Status, entity.StatusBought); err != nil {
		return nil, err
	}
	prev := p.Status
	p.ClearSale()
	if err := s.Repo.UpdateSale(ctx, p, prev); err != nil {
		return nil, err
	}
	s.index(ctx, p)
	return p, nil
}

// Delete destroys a purchase and, through the store, its images and participant links.
func (s *PurchaseService) Delete(ctx context.Context, actorID, id string) (err error) {
	defer func() { metrics.ObservePurchaseOp("delete", err) }()

	if _, err := s.loadFor(ctx, actorID, id, service.CanDelete); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.Index != nil {
		if iErr := s.Index.Remove(ctx, id); iErr != nil && s.Logger != nil {
			s.Logger.WithError(iErr).WithField("purchase_id", id).Warn("search index removal failed")
		}
	}
	return nil
}

// AddImages appends hosted image URLs to an existing purchase.
func (s *PurchaseService) AddImages(ctx context.Context, actorID, id string, urls []string) (*entity.Purchase, error) {
	p, err := s.loadFor(ctx, actorID, id, service.CanManage)
	if err != nil {
		return nil, err
	}
	clean := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			clean = append(clean, u)
		}
	}
	if len(clean) == 0 {
		return nil, errs.Validation("missing required fields")
	}
	added, err := s.Repo.AddImages(ctx, id, clean)
	if err != nil {
		return nil, err
	}
	p.Images = append(p.Images, added...)
	return p, nil
}

// Preview computes the settlement of selling the purchase for saleAmount without recording anything.
func (s *PurchaseService) Preview(ctx context.Context, actorID, id string, saleAmount float64) (*service.Settlement, error) {
	p, err := s.loadFor(ctx, actorID, id, service.CanView)
	if err != nil {
		return nil, err
	}
	if saleAmount < 0 {
		return nil, errs.Validation("sale amount must not be negative")
	}
	st := service.Settle(p, saleAmount)
	return &st, nil
}

// Search runs a full-text query over the purchases userID can see.
func (s *PurchaseService) Search(ctx context.Context, userID, q string, size int) ([]SearchHit, error) {
	if userID == "" {
		return nil, errs.ErrUnauthenticated
	}
	q = strings.TrimSpace(q)
	if s.Index == nil || q == "" {
		return []SearchHit{}, nil
	}
	return s.Index.Search(ctx, userID, q, size)
}

// loadFor resolves the actor, loads the purchase and applies allow. Malformed ids are reported as not found.
func (s *PurchaseService) loadFor(ctx context.Context, actorID, id string, allow func(string, *entity.Purchase) bool) (*entity.Purchase, error) {
	if actorID == "" {
		return nil, errs.ErrUnauthenticated
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, errs.ErrNotFound
	}
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !allow(actorID, p) {
		return nil, errs.ErrForbidden
	}
	return p, nil
}

func (s *PurchaseService) index(ctx context.Context, p *entity.Purchase) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, p); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("purchase_id", p.ID).Warn("search index failed")
	}
}

func (s *PurchaseService) notifySale(ctx context.Context, actorID string, p *entity.Purchase) {
	if s.Notifier == nil || p.SaleAmount == nil {
		return
	}
	st := service.Settle(p, *p.SaleAmount)
	if err := s.Notifier.SaleRecorded(ctx, actorID, p, st); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("purchase_id", p.ID).Warn("sale notification failed")
	}
}

// ParseSaleDate accepts a calendar date (midnight UTC) or an RFC 3339 timestamp.
func ParseSaleDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errs.Validation("invalid sale date")
}
