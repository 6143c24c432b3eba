package service

import (
	"github.com/vendora-app/vendora/internal/domain/entity"
	"github.com/vendora-app/vendora/internal/domain/errs"
)

// CanManage reports whether actorID may record or revert a sale on p.
func CanManage(actorID string, p *entity.Purchase) bool {
	return p.IsOwner(actorID) || p.IsParticipant(actorID)
}

// CanView follows CanManage; a purchase is visible to exactly the people who may sell it.
func CanView(actorID string, p *entity.Purchase) bool {
	return CanManage(actorID, p)
}

// CanDelete reports whether actorID may destroy p. Only the owner may.
func CanDelete(actorID string, p *entity.Purchase) bool {
	return p.IsOwner(actorID)
}

// CheckTransition returns errs.ErrInvalidTransition unless from -> to is an edge of the lifecycle.
func CheckTransition(from, to entity.Status) error {
	switch {
	case from == entity.StatusBought && to == entity.StatusSold:
		return nil
	case from == entity.StatusSold && to == entity.StatusBought:
		return nil
	}
	return errs.ErrInvalidTransition
}
