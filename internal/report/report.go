// Package report aggregates buyer and seller transactions over a date range.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"muttonhub-backend/internal/models"
	"muttonhub-backend/internal/trade"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var ErrInvalidRange = errors.New("invalid date range")

// Source is satisfied by trade.Service.
type Source interface {
	ListBuyerTransactions(ctx context.Context, f trade.Filter) ([]models.BuyerTransaction, error)
	ListSellerTransactions(ctx context.Context, f trade.Filter) ([]models.SellerTransaction, error)
}

// Range is inclusive on both ends.
type Range struct {
	Start time.Time
	End   time.Time
}

// ParseRange reads YYYY-MM-DD bounds; an empty bound means today.
func ParseRange(start, end string, now time.Time) (Range, error) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	parse := func(name, s string) (time.Time, error) {
		if s == "" {
			return today, nil
		}
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidRange, name)
		}
		return t, nil
	}

	var (
		r   Range
		err error
	)
	if r.Start, err = parse("start", start); err != nil {
		return r, err
	}
	if r.End, err = parse("end", end); err != nil {
		return r, err
	}
	if r.Start.After(r.End) {
		return r, fmt.Errorf("%w: start is after end", ErrInvalidRange)
	}
	return r, nil
}

func (r Range) StartString() string { return r.Start.Format(dateLayout) }
func (r Range) EndString() string   { return r.End.Format(dateLayout) }

type Totals struct {
	Count            int             `json:"count"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

func (t *Totals) add(l models.Ledger) {
	t.Count++
	t.TotalAmount = t.TotalAmount.Add(l.TotalAmount)
	t.PaidAmount = t.PaidAmount.Add(l.PaidAmount)
	t.RemainingBalance = t.RemainingBalance.Add(l.RemainingBalance)
}

type SellerTotals struct {
	Totals
	TotalWeight decimal.Decimal `json:"total_weight"`
}

type Report struct {
	Start              string                     `json:"start"`
	End                string                     `json:"end"`
	Buyers             Totals                     `json:"buyers"`
	Sellers            SellerTotals               `json:"sellers"`
	Overall            Totals                     `json:"overall"`
	NetPosition        decimal.Decimal            `json:"net_position"`
	BuyerTransactions  []models.BuyerTransaction  `json:"-"`
	SellerTransactions []models.SellerTransaction `json:"-"`
}

// Response is the JSON body of GET /api/reports. Rows use the same shape as
// the transaction endpoints.
type Response struct {
	*Report
	BuyerTransactions  []trade.BuyerTransactionResponse  `json:"buyer_transactions"`
	SellerTransactions []trade.SellerTransactionResponse `json:"seller_transactions"`
}

func (r *Report) Response() Response {
	out := Response{
		Report:             r,
		BuyerTransactions:  make([]trade.BuyerTransactionResponse, 0, len(r.BuyerTransactions)),
		SellerTransactions: make([]trade.SellerTransactionResponse, 0, len(r.SellerTransactions)),
	}
	for _, tx := range r.BuyerTransactions {
		out.BuyerTransactions = append(out.BuyerTransactions, trade.BuyerResponse(tx))
	}
	for _, tx := range r.SellerTransactions {
		out.SellerTransactions = append(out.SellerTransactions, trade.SellerResponse(tx))
	}
	return out
}

type Service struct {
	src Source
}

func NewService(src Source) *Service {
	return &Service{src: src}
}

func (s *Service) Build(ctx context.Context, r Range) (*Report, error) {
	if r.Start.After(r.End) {
		return nil, fmt.Errorf("%w: start is after end", ErrInvalidRange)
	}

	f := trade.Filter{Start: &r.Start, End: &r.End}
	buyers, err := s.src.ListBuyerTransactions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load buyer transactions: %w", err)
	}
	sellers, err := s.src.ListSellerTransactions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load seller transactions: %w", err)
	}

	return Aggregate(r, buyers, sellers), nil
}

// Aggregate sums both sides. NetPosition is the seller total minus the buyer
// total.
func Aggregate(r Range, buyers []models.BuyerTransaction, sellers []models.SellerTransaction) *Report {
	rep := &Report{
		Start:              r.StartString(),
		End:                r.EndString(),
		BuyerTransactions:  buyers,
		SellerTransactions: sellers,
	}
	if rep.BuyerTransactions == nil {
		rep.BuyerTransactions = []models.BuyerTransaction{}
	}
	if rep.SellerTransactions == nil {
		rep.SellerTransactions = []models.SellerTransaction{}
	}

	for _, tx := range buyers {
		rep.Buyers.add(tx.Ledger)
		rep.Overall.add(tx.Ledger)
	}
	for _, tx := range sellers {
		rep.Sellers.add(tx.Ledger)
		rep.Sellers.TotalWeight = rep.Sellers.TotalWeight.Add(tx.TotalWeight)
		rep.Overall.add(tx.Ledger)
	}

	rep.NetPosition = rep.Sellers.TotalAmount.Sub(rep.Buyers.TotalAmount)
	return rep
}
