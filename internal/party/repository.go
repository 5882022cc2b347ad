package party

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"muttonhub-backend/internal/database"
	"muttonhub-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("party not found")
	ErrInvalid  = errors.New("invalid party")
)

// Repository stores buyer and seller profiles; both tables share one shape.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, kind models.PartyKind, p *models.Profile) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Address = strings.TrimSpace(p.Address)
	if p.Name == "" || p.Phone == "" {
		return fmt.Errorf("%w: name and phone are required", ErrInvalid)
	}
	p.ID = 0

	if err := r.db.WithContext(ctx).Table(kind.Table()).Create(p).Error; err != nil {
		return fmt.Errorf("create %s: %w", kind, err)
	}
	return nil
}

// List returns newest first. A non-empty search matches the name
// case-insensitively or the phone number as a substring.
func (r *Repository) List(ctx context.Context, kind models.PartyKind, search string) ([]models.Profile, error) {
	q := r.db.WithContext(ctx).Table(kind.Table())

	if s := strings.TrimSpace(search); s != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\' OR phone LIKE ? ESCAPE '\\'",
			database.ContainsPattern(strings.ToLower(s)), database.ContainsPattern(s))
	}

	var out []models.Profile
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return out, nil
}

func (r *Repository) Get(ctx context.Context, kind models.PartyKind, id uint) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).Table(kind.Table()).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	return &p, nil
}

func (r *Repository) Exists(ctx context.Context, kind models.PartyKind, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table(kind.Table()).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check %s: %w", kind, err)
	}
	return count > 0, nil
}

func (r *Repository) Count(ctx context.Context, kind models.PartyKind) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table(kind.Table()).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return count, nil
}
