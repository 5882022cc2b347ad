package dashboard

import (
	"context"
	"fmt"
	"time"

	"muttonhub-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Summary struct {
	TotalBuyers         int64           `json:"total_buyers"`
	TotalSellers        int64           `json:"total_sellers"`
	PendingBuyerAmount  decimal.Decimal `json:"pending_buyer_amount"`
	PaidBuyerAmount     decimal.Decimal `json:"paid_buyer_amount"`
	PendingSellerAmount decimal.Decimal `json:"pending_seller_amount"`
	PaidSellerAmount    decimal.Decimal `json:"paid_seller_amount"`
}

type ChartPoint struct {
	Label     string          `json:"label"` // entry date
	Purchases decimal.Decimal `json:"purchases"`
	Sales     decimal.Decimal `json:"sales"`
	Net       decimal.Decimal `json:"net"`
}

type ChartResponse struct {
	From   string       `json:"from"`
	To     string       `json:"to"`
	Points []ChartPoint `json:"points"`
}

// PartyCounter reports how many profiles a party table holds.
type PartyCounter interface {
	Count(ctx context.Context, kind models.PartyKind) (int64, error)
}

type Service struct {
	db      *gorm.DB
	parties PartyCounter
}

func NewService(db *gorm.DB, parties PartyCounter) *Service {
	return &Service{db: db, parties: parties}
}

type sums struct {
	Total decimal.Decimal `gorm:"column:total"`
	Paid  decimal.Decimal `gorm:"column:paid"`
}

func (s *Service) sideSums(ctx context.Context, kind models.PartyKind) (sums, error) {
	var out sums
	sql := fmt.Sprintf(`
		SELECT COALESCE(SUM(total_amount), 0) AS total,
		       COALESCE(SUM(paid_amount), 0) AS paid
		FROM %s`, kind.TransactionTable())
	if err := s.db.WithContext(ctx).Raw(sql).Scan(&out).Error; err != nil {
		return out, fmt.Errorf("sum %s: %w", kind.TransactionTable(), err)
	}
	return out, nil
}

// Summary computes pending as the difference of the summed totals and
// payments, not as a sum of stored balances.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var (
		out Summary
		err error
	)

	if out.TotalBuyers, err = s.parties.Count(ctx, models.PartyBuyer); err != nil {
		return nil, err
	}
	if out.TotalSellers, err = s.parties.Count(ctx, models.PartySeller); err != nil {
		return nil, err
	}

	buyers, err := s.sideSums(ctx, models.PartyBuyer)
	if err != nil {
		return nil, err
	}
	sellers, err := s.sideSums(ctx, models.PartySeller)
	if err != nil {
		return nil, err
	}

	out.PaidBuyerAmount = buyers.Paid
	out.PendingBuyerAmount = buyers.Total.Sub(buyers.Paid)
	out.PaidSellerAmount = sellers.Paid
	out.PendingSellerAmount = sellers.Total.Sub(sellers.Paid)
	return &out, nil
}

// Chart returns one point per day in the last days days (today included),
// with zero points for days without entries.
func (s *Service) Chart(ctx context.Context, days int, now time.Time) (*ChartResponse, error) {
	y, m, d := now.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -(days - 1))

	type row struct {
		Bucket time.Time       `gorm:"column:bucket"`
		Total  decimal.Decimal `gorm:"column:total"`
	}

	load := func(kind models.PartyKind) (map[string]decimal.Decimal, error) {
		var rows []row
		sql := fmt.Sprintf(`
			SELECT entry_date AS bucket,
			       SUM(total_amount) AS total
			FROM %s
			WHERE entry_date >= ? AND entry_date <= ?
			GROUP BY entry_date`, kind.TransactionTable())
		if err := s.db.WithContext(ctx).Raw(sql, start, end).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("chart %s: %w", kind.TransactionTable(), err)
		}
		out := make(map[string]decimal.Decimal, len(rows))
		for _, r := range rows {
			out[r.Bucket.Format("2006-01-02")] = r.Total
		}
		return out, nil
	}

	purchases, err := load(models.PartyBuyer)
	if err != nil {
		return nil, err
	}
	sales, err := load(models.PartySeller)
	if err != nil {
		return nil, err
	}

	points := make([]ChartPoint, 0, days)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		label := day.Format("2006-01-02")
		p := ChartPoint{Label: label, Purchases: purchases[label], Sales: sales[label]}
		p.Net = p.Sales.Sub(p.Purchases)
		points = append(points, p)
	}

	return &ChartResponse{
		From:   start.Format("2006-01-02"),
		To:     end.Format("2006-01-02"),
		Points: points,
	}, nil
}
