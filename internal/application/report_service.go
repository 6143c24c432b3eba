package application

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vendora-app/vendora/internal/domain/entity"
	"github.com/vendora-app/vendora/internal/domain/errs"
	repo "github.com/vendora-app/vendora/internal/domain/repository"
)

type ReportService struct {
	Repo repo.PurchaseRepository
	// Location decides calendar boundaries for date ranges and monthly buckets.
	Location *time.Location
	Now      func() time.Time
}

func NewReportService(purchases repo.PurchaseRepository, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{Repo: purchases, Location: loc, Now: time.Now}
}

type DashboardStats struct {
	TotalInvested float64 `json:"totalInvested"`
	TotalSold     float64 `json:"totalSold"`
	TotalProfit   float64 `json:"totalProfit"`
	PurchaseCount int     `json:"purchaseCount"`
}

type SalesQuery struct {
	StartDate string
	EndDate   string
	Partner   string
}

type MonthlyTotal struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type SalesTotals struct {
	Sold     float64 `json:"totalSold"`
	Invested float64 `json:"totalInvested"`
	Profit   float64 `json:"totalProfit"`
	Count    int     `json:"count"`
}

type SalesReport struct {
	StartDate string             `json:"startDate"`
	EndDate   string             `json:"endDate"`
	Partner   repo.PartnerFilter `json:"partner"`
	Totals    SalesTotals        `json:"totals"`
	Monthly   []MonthlyTotal     `json:"monthly"`
	Sales     []*entity.Purchase `json:"sales"`
}

// Dashboard aggregates every purchase visible to userID.
func (s *ReportService) Dashboard(ctx context.Context, userID string) (DashboardStats, error) {
	if userID == "" {
		return DashboardStats{}, errs.ErrUnauthenticated
	}
	ps, err := s.Repo.ListVisibleTo(ctx, userID)
	if err != nil {
		return DashboardStats{}, err
	}

	invested, sold, profit := decimal.Zero, decimal.Zero, decimal.Zero
	for _, p := range ps {
		total := decimal.NewFromFloat(p.TotalAmount)
		invested = invested.Add(total)
		if p.Status == entity.StatusSold && p.SaleAmount != nil {
			sale := decimal.NewFromFloat(*p.SaleAmount)
			sold = sold.Add(sale)
			profit = profit.Add(sale.Sub(total))
		}
	}
	return DashboardStats{
		TotalInvested: invested.Round(2).InexactFloat64(),
		TotalSold:     sold.Round(2).InexactFloat64(),
		TotalProfit:   profit.Round(2).InexactFloat64(),
		PurchaseCount: len(ps),
	}, nil
}

// Sales lists sold purchases in a date range (default: current month) with totals and monthly buckets.
func (s *ReportService) Sales(ctx context.Context, userID string, q SalesQuery) (*SalesReport, error) {
	if userID == "" {
		return nil, errs.ErrUnauthenticated
	}
	from, to, err := s.dateRange(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}
	partner := repo.PartnerFilter(strings.ToLower(strings.TrimSpace(q.Partner)))
	if partner == "" {
		partner = repo.PartnerAll
	}
	if !partner.Valid() {
		return nil, errs.Validation("partner must be one of: all, with, without")
	}

	sales, err := s.Repo.ListSold(ctx, repo.SalesFilter{UserID: userID, From: from, To: to, Partner: partner})
	if err != nil {
		return nil, err
	}

	sold, invested := decimal.Zero, decimal.Zero
	monthly := map[string]decimal.Decimal{}
	for _, p := range sales {
		if p.SaleAmount == nil {
			continue
		}
		sale := decimal.NewFromFloat(*p.SaleAmount)
		sold = sold.Add(sale)
		invested = invested.Add(decimal.NewFromFloat(p.TotalAmount))
		if p.SaleDate != nil {
			key := p.SaleDate.In(s.Location).Format("2006-01")
			monthly[key] = monthly[key].Add(sale)
		}
	}

	months := make([]MonthlyTotal, 0, len(monthly))
	for k, v := range monthly {
		months = append(months, MonthlyTotal{Month: k, Amount: v.Round(2).InexactFloat64()})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month > months[j].Month })

	return &SalesReport{
		StartDate: from.Format(time.DateOnly),
		EndDate:   to.Format(time.DateOnly),
		Partner:   partner,
		Totals: SalesTotals{
			Sold:     sold.Round(2).InexactFloat64(),
			Invested: invested.Round(2).InexactFloat64(),
			Profit:   sold.Sub(invested).Round(2).InexactFloat64(),
			Count:    len(sales),
		},
		Monthly: months,
		Sales:   sales,
	}, nil
}

// dateRange resolves [start 00:00, end 23:59:59.999] in s.Location.
func (s *ReportService) dateRange(start, end string) (time.Time, time.Time, error) {
	now := s.Now().In(s.Location)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.Location)
	to := from.AddDate(0, 1, -1)

	if v := strings.TrimSpace(start); v != "" {
		t, err := time.ParseInLocation(time.DateOnly, v, s.Location)
		if err != nil {
			return time.Time{}, time.Time{}, errs.Validation("invalid startDate")
		}
		from = t
	}
	if v := strings.TrimSpace(end); v != "" {
		t, err := time.ParseInLocation(time.DateOnly, v, s.Location)
		if err != nil {
			return time.Time{}, time.Time{}, errs.Validation("invalid endDate")
		}
		to = t
	}
	to = to.Add(24*time.Hour - time.Millisecond)
	if to.Before(from) {
		return time.Time{}, time.Time{}, errs.Validation("startDate must not be after endDate")
	}
	return from, to, nil
}
