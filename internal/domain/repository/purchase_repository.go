package repository

import (
	"context"
	"time"

	"github.com/vendora-app/vendora/internal/domain/entity"
)

// PartnerFilter narrows reports by whether a purchase has co-investors.
type PartnerFilter string

const (
	PartnerAll     PartnerFilter = "all"
	PartnerWith    PartnerFilter = "with"
	PartnerWithout PartnerFilter = "without"
)

func (f PartnerFilter) Valid() bool {
	switch f {
	case PartnerAll, PartnerWith, PartnerWithout:
		return true
	}
	return false
}

// SalesFilter selects sold purchases visible to UserID with a sale date in [From, To].
type SalesFilter struct {
	UserID  string
	From    time.Time
	To      time.Time
	Partner PartnerFilter
}

// PurchaseRepository persists purchases together with their images and participants.
type PurchaseRepository interface {
	// Create stores p, its images and participant links atomically and fills ID and timestamps.
	Create(ctx context.Context, p *entity.Purchase) error
	GetByID(ctx context.Context, id string) (*entity.Purchase, error)
	// ListVisibleTo returns purchases owned by or shared with userID, newest first.
	ListVisibleTo(ctx context.Context, userID string) ([]*entity.Purchase, error)
	// ListSold returns sold purchases matching f, latest sale first.
	ListSold(ctx context.Context, f SalesFilter) ([]*entity.Purchase, error)
	// UpdateSale writes p's status and sale fields only if the stored status still equals expected.
	UpdateSale(ctx context.Context, p *entity.Purchase, expected entity.Status) error
	AddImages(ctx context.Context, purchaseID string, urls []string) ([]entity.Image, error)
	Delete(ctx context.Context, id string) error
}
