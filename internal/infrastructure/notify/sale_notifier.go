package notify

import (
	"context"
	"errors"

	"github.com/vendora-app/vendora/internal/application"
	"github.com/vendora-app/vendora/internal/domain/entity"
	"github.com/vendora-app/vendora/internal/domain/service"
	"github.com/vendora-app/vendora/pkg/mailer"
	mailtpl "github.com/vendora-app/vendora/pkg/mailer/templates"
)

// SaleNotifier queues a sale_recorded email for every co-investor except the one who recorded the sale.
// The owner gets the owner side of the settlement. Participants get the partner side, marked as
// combined when more than one participant holds it.
type SaleNotifier struct {
	Jobs   application.JobPublisher
	AppURL string
}

func NewSaleNotifier(jobs application.JobPublisher, appURL string) *SaleNotifier {
	return &SaleNotifier{Jobs: jobs, AppURL: appURL}
}

func (n *SaleNotifier) SaleRecorded(ctx context.Context, actorID string, p *entity.Purchase, s service.Settlement) error {
	if p.SaleDate == nil {
		return nil
	}
	soldBy := ""
	for _, m := range members(p) {
		if m.ID == actorID {
			soldBy = m.Name
		}
	}

	var errs []error
	for _, m := range members(p) {
		if m.ID == actorID || m.Email == "" {
			continue
		}
		profit, share, payout := s.PartnerProfit, s.PartnerShare, s.PartnerPayout
		side := mailtpl.WithPartnerSide(len(p.Participants))
		if m.ID == p.UserID {
			profit, share, payout = s.OwnerProfit, s.OwnerShare, s.OwnerPayout
			side = mailtpl.WithPartnerSide(0)
		}
		job := mailer.EmailJob{
			To:       m.Email,
			Template: mailtpl.SaleRecorded,
			Data: mailtpl.NewSaleRecordedData(m.Name, m.Email,
				mailtpl.WithApp("", n.AppURL),
				mailtpl.WithSale(p.ID, p.Name, soldBy, s.SaleAmount, *p.SaleDate),
				mailtpl.WithSettlement(profit, share, payout),
				side,
			),
		}
		if err := n.Jobs.PublishJSON(ctx, job); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func members(p *entity.Purchase) []entity.UserSummary {
	out := make([]entity.UserSummary, 0, len(p.Participants)+1)
	if p.User != nil {
		out = append(out, *p.User)
	} else {
		out = append(out, entity.UserSummary{ID: p.UserID})
	}
	return append(out, p.Participants...)
}

var _ application.SaleNotifier = (*SaleNotifier)(nil)
