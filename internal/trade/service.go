package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"muttonhub-backend/internal/audit"
	"muttonhub-backend/internal/models"
	"muttonhub-backend/internal/settlement"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidAmount = errors.New("settlement amount must be greater than zero")
	ErrPartyNotFound = errors.New("party not found")
)

// ValidationError carries a message that is safe to show to the client.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type AuditLogger interface {
	LogAction(ctx context.Context, e audit.Entry)
}

type PartyChecker interface {
	Exists(ctx context.Context, kind models.PartyKind, id uint) (bool, error)
}

type BuyerInput struct {
	BuyerID       uint
	EntryDate     string
	NumberOfGoats int
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	PaymentMode   models.PaymentMode
}

type SellerInput struct {
	SellerID    uint
	EntryDate   string
	TotalWeight decimal.Decimal
	PricePerKg  decimal.Decimal
	PaidAmount  decimal.Decimal
	PaymentMode models.PaymentMode
}

type Service struct {
	repo    Repository
	parties PartyChecker
	audit   AuditLogger
	log     *zap.Logger
	now     func() time.Time
}

func NewService(repo Repository, parties PartyChecker, auditLog AuditLogger, log *zap.Logger) *Service {
	return &Service{repo: repo, parties: parties, audit: auditLog, log: log, now: time.Now}
}

func (s *Service) CreateBuyerTransaction(ctx context.Context, in BuyerInput, actor audit.Actor) (*models.BuyerTransaction, error) {
	if in.NumberOfGoats < 0 {
		return nil, invalid("number_of_goats must be zero or more")
	}
	if in.TotalAmount.IsNegative() {
		return nil, invalid("total_amount must be zero or more")
	}
	ledger, err := s.newLedger(in.EntryDate, in.TotalAmount, in.PaidAmount, in.PaymentMode)
	if err != nil {
		return nil, err
	}
	if err := s.ensureParty(ctx, models.PartyBuyer, in.BuyerID); err != nil {
		return nil, err
	}

	tx := &models.BuyerTransaction{
		BuyerID:       in.BuyerID,
		NumberOfGoats: in.NumberOfGoats,
		Ledger:        ledger,
	}
	if err := s.repo.CreateBuyer(ctx, tx); err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, audit.Entry{
		Action:    models.AuditActionCreate,
		TableName: models.PartyBuyer.TransactionTable(),
		EntityID:  tx.ID,
		NewValues: tx,
		Actor:     actor,
	})
	return tx, nil
}

// CreateSellerTransaction fixes total_amount to weight * price per kg,
// rounded to cents.
func (s *Service) CreateSellerTransaction(ctx context.Context, in SellerInput, actor audit.Actor) (*models.SellerTransaction, error) {
	if !in.TotalWeight.IsPositive() {
		return nil, invalid("total_weight must be greater than zero")
	}
	if in.PricePerKg.IsNegative() {
		return nil, invalid("price_per_kg must be zero or more")
	}
	if !settlement.FitsPlaces(in.TotalWeight, settlement.WeightPlaces) {
		return nil, invalid("total_weight allows at most %d decimal places", settlement.WeightPlaces)
	}
	if !settlement.FitsPlaces(in.PricePerKg, settlement.MoneyPlaces) {
		return nil, invalid("price_per_kg allows at most %d decimal places", settlement.MoneyPlaces)
	}
	total := settlement.SellerTotal(in.TotalWeight, in.PricePerKg)
	ledger, err := s.newLedger(in.EntryDate, total, in.PaidAmount, in.PaymentMode)
	if err != nil {
		return nil, err
	}
	if err := s.ensureParty(ctx, models.PartySeller, in.SellerID); err != nil {
		return nil, err
	}

	tx := &models.SellerTransaction{
		SellerID:    in.SellerID,
		TotalWeight: in.TotalWeight,
		PricePerKg:  in.PricePerKg,
		Ledger:      ledger,
	}
	if err := s.repo.CreateSeller(ctx, tx); err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, audit.Entry{
		Action:    models.AuditActionCreate,
		TableName: models.PartySeller.TransactionTable(),
		EntityID:  tx.ID,
		NewValues: tx,
		Actor:     actor,
	})
	return tx, nil
}

func (s *Service) newLedger(entryDate string, total, paid decimal.Decimal, mode models.PaymentMode) (models.Ledger, error) {
	date, err := s.parseEntryDate(entryDate)
	if err != nil {
		return models.Ledger{}, err
	}
	if paid.IsNegative() {
		return models.Ledger{}, invalid("paid_amount must be zero or more")
	}
	if !settlement.FitsPlaces(total, settlement.MoneyPlaces) {
		return models.Ledger{}, invalid("total_amount allows at most %d decimal places", settlement.MoneyPlaces)
	}
	if !settlement.FitsPlaces(paid, settlement.MoneyPlaces) {
		return models.Ledger{}, invalid("paid_amount allows at most %d decimal places", settlement.MoneyPlaces)
	}
	if mode == "" {
		mode = models.PaymentCash
	}
	if !mode.Valid() {
		return models.Ledger{}, invalid("payment_mode must be cash, upi or bank_transfer")
	}

	return models.Ledger{
		EntryDate:        date,
		TotalAmount:      total,
		PaidAmount:       paid,
		RemainingBalance: settlement.Remaining(total, paid),
		PaymentMode:      mode,
		Version:          1,
	}, nil
}

func (s *Service) parseEntryDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		y, m, d := s.now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, invalid("entry_date must be YYYY-MM-DD")
	}
	return t, nil
}

func (s *Service) ensureParty(ctx context.Context, kind models.PartyKind, id uint) error {
	if id == 0 {
		return invalid("%s_id is required", kind)
	}
	ok, err := s.parties.Exists(ctx, kind, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s %d", ErrPartyNotFound, kind, id)
	}
	return nil
}

func (s *Service) GetBuyerTransaction(ctx context.Context, id uint) (*models.BuyerTransaction, error) {
	return s.repo.GetBuyer(ctx, id)
}

func (s *Service) GetSellerTransaction(ctx context.Context, id uint) (*models.SellerTransaction, error) {
	return s.repo.GetSeller(ctx, id)
}

func (s *Service) ListBuyerTransactions(ctx context.Context, f Filter) ([]models.BuyerTransaction, error) {
	return s.repo.ListBuyer(ctx, f)
}

func (s *Service) ListSellerTransactions(ctx context.Context, f Filter) ([]models.SellerTransaction, error) {
	return s.repo.ListSeller(ctx, f)
}

func (s *Service) SettleBuyerTransaction(ctx context.Context, id uint, amount decimal.Decimal, actor audit.Actor) (*models.BuyerTransaction, error) {
	tx, err := s.repo.GetBuyer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.settle(ctx, models.PartyBuyer, tx.ID, &tx.Ledger, amount, actor); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Service) SettleSellerTransaction(ctx context.Context, id uint, amount decimal.Decimal, actor audit.Actor) (*models.SellerTransaction, error) {
	tx, err := s.repo.GetSeller(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.settle(ctx, models.PartySeller, tx.ID, &tx.Ledger, amount, actor); err != nil {
		return nil, err
	}
	return tx, nil
}

// settle records a payment against the ledger it was read with. On success
// ledger holds the new figures and one UPDATE entry is audited; on any
// failure nothing is audited.
func (s *Service) settle(ctx context.Context, kind models.PartyKind, id uint, ledger *models.Ledger, amount decimal.Decimal, actor audit.Actor) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !settlement.FitsPlaces(amount, settlement.MoneyPlaces) {
		return invalid("amount allows at most %d decimal places", settlement.MoneyPlaces)
	}

	oldPaid, oldRemaining := ledger.PaidAmount, ledger.RemainingBalance
	newPaid, newRemaining := settlement.Settle(ledger.TotalAmount, ledger.PaidAmount, amount)

	if err := s.repo.ApplySettlement(ctx, kind, id, ledger.Version, newPaid, newRemaining); err != nil {
		return err
	}
	if newRemaining.IsNegative() {
		s.log.Warn("transaction overpaid",
			zap.String("table", kind.TransactionTable()),
			zap.Uint("id", id),
			zap.String("remaining_balance", newRemaining.String()),
		)
	}

	ledger.PaidAmount = newPaid
	ledger.RemainingBalance = newRemaining
	ledger.Version++

	s.audit.LogAction(ctx, audit.Entry{
		Action:    models.AuditActionUpdate,
		TableName: kind.TransactionTable(),
		EntityID:  id,
		OldValues: map[string]any{"paid_amount": oldPaid, "remaining_balance": oldRemaining},
		NewValues: map[string]any{"paid_amount": newPaid, "remaining_balance": newRemaining},
		Actor:     actor,
	})
	return nil
}
