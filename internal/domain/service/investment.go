// Package service holds the stateless purchase rules: investment split validation,
// sale settlement and who may act on a purchase.
package service

import (
	"github.com/shopspring/decimal"

	"github.com/vendora-app/vendora/internal/domain/errs"
)

// InvestmentTolerance is the largest accepted gap between the summed shares and the total.
var InvestmentTolerance = decimal.RequireFromString("0.01")

// ValidateInvestment checks that the owner and partner shares add up to the total cost.
// Pass 0 as partner when nobody co-invests.
func ValidateInvestment(total, owner, partner float64) error {
	if total < 0 || owner < 0 || partner < 0 {
		return errs.Validation("amounts must not be negative")
	}
	sum := decimal.NewFromFloat(owner).Add(decimal.NewFromFloat(partner))
	if sum.Sub(decimal.NewFromFloat(total)).Abs().GreaterThan(InvestmentTolerance) {
		return errs.Validation("investments must equal total amount")
	}
	return nil
}
