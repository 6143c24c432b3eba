package templates

import (
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithApp(name, url string) Option {
	return func(d *EmailData) {
		d.AppName = name
		d.AppURL = url
	}
}

func WithSale(purchaseID, purchaseName, soldBy string, amount float64, at time.Time) Option {
	return func(d *EmailData) {
		d.PurchaseID = purchaseID
		d.PurchaseName = purchaseName
		d.SoldBy = soldBy
		d.SaleAmount = amount
		d.SaleDate = at.UTC().Format("02 January 2006")
	}
}

// WithSettlement sets the recipient's own slice of a sale.
func WithSettlement(profit, share, payout float64) Option {
	return func(d *EmailData) {
		d.Profit = profit
		d.Share = share
		d.Payout = payout
	}
}

// WithPartnerSide marks the settlement figures as the combined side of n co-investors.
func WithPartnerSide(n int) Option {
	return func(d *EmailData) {
		if n > 1 {
			d.SharedBy = n
		}
	}
}

func NewBaseEmailData(typ, name, email string, opts ...Option) EmailData {
	d := EmailData{Name: name, Email: email, Type: typ}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(Welcome, name, email, opts...))
}

func NewSaleRecordedData(name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(SaleRecorded, name, email, opts...))
}
