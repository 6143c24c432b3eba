package service

import (
	"github.com/shopspring/decimal"

	"github.com/vendora-app/vendora/internal/domain/entity"
)

// Settlement is the pro-rata outcome of selling a purchase. Money fields are rounded to cents.
type Settlement struct {
	SaleAmount    float64 `json:"saleAmount"`
	TotalAmount   float64 `json:"totalAmount"`
	Profit        float64 `json:"profit"`
	OwnerShare    float64 `json:"ownerShare"`
	PartnerShare  float64 `json:"partnerShare"`
	OwnerProfit   float64 `json:"ownerProfit"`
	PartnerProfit float64 `json:"partnerProfit"`
	OwnerPayout   float64 `json:"ownerPayout"`
	PartnerPayout float64 `json:"partnerPayout"`
}

// Settle splits the profit (or loss) of selling p for saleAmount by each investor's share of the cost.
// A zero total yields zero shares.
func Settle(p *entity.Purchase, saleAmount float64) Settlement {
	total := decimal.NewFromFloat(p.TotalAmount)
	owner := decimal.NewFromFloat(p.OwnerInvest)
	partner := decimal.NewFromFloat(p.PartnerInvest)
	sale := decimal.NewFromFloat(saleAmount)

	profit := sale.Sub(total)
	ownerShare, partnerShare := decimal.Zero, decimal.Zero
	if total.IsPositive() {
		ownerShare = owner.Div(total)
		partnerShare = partner.Div(total)
	}
	ownerProfit := profit.Mul(ownerShare)
	partnerProfit := profit.Mul(partnerShare)

	return Settlement{
		SaleAmount:    money(sale),
		TotalAmount:   money(total),
		Profit:        money(profit),
		OwnerShare:    ownerShare.Round(4).InexactFloat64(),
		PartnerShare:  partnerShare.Round(4).InexactFloat64(),
		OwnerProfit:   money(ownerProfit),
		PartnerProfit: money(partnerProfit),
		OwnerPayout:   money(owner.Add(ownerProfit)),
		PartnerPayout: money(partner.Add(partnerProfit)),
	}
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
