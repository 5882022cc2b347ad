package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"muttonhub-backend/internal/database"
	"muttonhub-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("transaction not found")
	ErrVersionConflict = errors.New("transaction was changed by someone else")
)

// Filter narrows a transaction listing. Start and End compare against
// entry_date and are both inclusive.
type Filter struct {
	Search string
	Start  *time.Time
	End    *time.Time
}

type Repository interface {
	CreateBuyer(ctx context.Context, tx *models.BuyerTransaction) error
	CreateSeller(ctx context.Context, tx *models.SellerTransaction) error
	GetBuyer(ctx context.Context, id uint) (*models.BuyerTransaction, error)
	GetSeller(ctx context.Context, id uint) (*models.SellerTransaction, error)
	ListBuyer(ctx context.Context, f Filter) ([]models.BuyerTransaction, error)
	ListSeller(ctx context.Context, f Filter) ([]models.SellerTransaction, error)
	// ApplySettlement writes the new balance only if the row still carries
	// version. It returns ErrVersionConflict otherwise.
	ApplySettlement(ctx context.Context, kind models.PartyKind, id uint, version int64, paid, remaining decimal.Decimal) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) CreateBuyer(ctx context.Context, tx *models.BuyerTransaction) error {
	if err := r.db.WithContext(ctx).Omit("Buyer").Create(tx).Error; err != nil {
		return fmt.Errorf("insert buyer transaction: %w", err)
	}
	return nil
}

func (r *GormRepository) CreateSeller(ctx context.Context, tx *models.SellerTransaction) error {
	if err := r.db.WithContext(ctx).Omit("Seller").Create(tx).Error; err != nil {
		return fmt.Errorf("insert seller transaction: %w", err)
	}
	return nil
}

func (r *GormRepository) GetBuyer(ctx context.Context, id uint) (*models.BuyerTransaction, error) {
	var tx models.BuyerTransaction
	err := r.db.WithContext(ctx).Preload("Buyer").First(&tx, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get buyer transaction: %w", err)
	}
	return &tx, nil
}

func (r *GormRepository) GetSeller(ctx context.Context, id uint) (*models.SellerTransaction, error) {
	var tx models.SellerTransaction
	err := r.db.WithContext(ctx).Preload("Seller").First(&tx, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get seller transaction: %w", err)
	}
	return &tx, nil
}

func (r *GormRepository) ListBuyer(ctx context.Context, f Filter) ([]models.BuyerTransaction, error) {
	var out []models.BuyerTransaction
	q := filtered(r.db.WithContext(ctx), models.PartyBuyer, "buyer_id", f).Preload("Buyer")
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list buyer transactions: %w", err)
	}
	return out, nil
}

func (r *GormRepository) ListSeller(ctx context.Context, f Filter) ([]models.SellerTransaction, error) {
	var out []models.SellerTransaction
	q := filtered(r.db.WithContext(ctx), models.PartySeller, "seller_id", f).Preload("Seller")
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list seller transactions: %w", err)
	}
	return out, nil
}

// filtered builds the shared listing query: newest entry first, optional
// date window, optional party name/phone search.
func filtered(db *gorm.DB, kind models.PartyKind, fk string, f Filter) *gorm.DB {
	txTable := kind.TransactionTable()
	q := db.Table(txTable).Select(txTable + ".*")

	if f.Start != nil {
		q = q.Where(txTable+".entry_date >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where(txTable+".entry_date <= ?", *f.End)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		party := kind.Table()
		q = q.Joins(fmt.Sprintf("JOIN %s ON %s.id = %s.%s", party, party, txTable, fk)).
			Where(fmt.Sprintf("LOWER(%s.name) LIKE ? ESCAPE '\\' OR %s.phone LIKE ? ESCAPE '\\'", party, party),
				database.ContainsPattern(strings.ToLower(s)), database.ContainsPattern(s))
	}

	return q.Order(txTable + ".entry_date DESC").Order(txTable + ".id DESC")
}

func (r *GormRepository) ApplySettlement(ctx context.Context, kind models.PartyKind, id uint, version int64, paid, remaining decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Table(kind.TransactionTable()).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]any{
			"paid_amount":       paid,
			"remaining_balance": remaining,
			"version":           gorm.Expr("version + 1"),
			"updated_at":        time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("settle %s: %w", kind.TransactionTable(), res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}
