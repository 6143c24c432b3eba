package entity

import "time"

// Status is the purchase lifecycle state.
type Status string

const (
	StatusBought Status = "COMPRADO"
	StatusSold   Status = "VENDIDO"
)

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	return s == StatusBought || s == StatusSold
}

// Image is a hosted picture owned by exactly one purchase.
type Image struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Purchase is a tracked acquisition with its investors and optional sale outcome.
//
// OwnerInvest and PartnerInvest keep the historical wire names rafaelInvest/socioInvest.
type Purchase struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   *string       `json:"description"`
	TotalAmount   float64       `json:"totalAmount"`
	OwnerInvest   float64       `json:"rafaelInvest"`
	PartnerInvest float64       `json:"socioInvest"`
	Status        Status        `json:"status"`
	SaleAmount    *float64      `json:"saleAmount"`
	SaleDate      *time.Time    `json:"saleDate"`
	UserID        string        `json:"userId"`
	User          *UserSummary  `json:"user,omitempty"`
	Participants  []UserSummary `json:"participants"`
	Images        []Image       `json:"images"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// IsOwner reports whether userID created the purchase.
func (p *Purchase) IsOwner(userID string) bool {
	return userID != "" && p.UserID == userID
}

// IsParticipant reports whether userID co-invested in the purchase.
func (p *Purchase) IsParticipant(userID string) bool {
	if userID == "" {
		return false
	}
	for _, u := range p.Participants {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// HasPartners reports whether anyone besides the owner is attached.
func (p *Purchase) HasPartners() bool {
	return len(p.Participants) > 0
}

// MemberIDs returns the owner followed by every participant id.
func (p *Purchase) MemberIDs() []string {
	ids := make([]string, 0, len(p.Participants)+1)
	ids = append(ids, p.UserID)
	for _, u := range p.Participants {
		ids = append(ids, u.ID)
	}
	return ids
}

// MarkSold records the sale outcome. Callers check the transition first.
func (p *Purchase) MarkSold(amount float64, at time.Time) {
	p.Status = StatusSold
	p.SaleAmount = &amount
	p.SaleDate = &at
}

// ClearSale reverts the purchase to the bought state.
func (p *Purchase) ClearSale() {
	p.Status = StatusBought
	p.SaleAmount = nil
	p.SaleDate = nil
}
