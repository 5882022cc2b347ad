package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"muttonhub-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Actor is the authenticated identity behind a mutation.
type Actor struct {
	UserID uint
	Email  string
	Role   models.Role
}

type Entry struct {
	Action    models.AuditAction
	TableName string
	EntityID  uint
	OldValues any
	NewValues any
	Actor     Actor
}

type Filter struct {
	Action    models.AuditAction
	TableName string
	DateFrom  *time.Time
	DateTo    *time.Time // inclusive, whole day
}

type Repository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, f Filter) ([]models.AuditLog, error)
}

type Logger struct {
	repo Repository
	log  *zap.Logger
}

func NewLogger(repo Repository, log *zap.Logger) *Logger {
	return &Logger{repo: repo, log: log}
}

// LogAction appends one audit entry. It never fails the caller: encoding or
// write errors are logged and dropped.
func (l *Logger) LogAction(ctx context.Context, e Entry) {
	entry := models.AuditLog{
		Action:    e.Action,
		TableName: e.TableName,
		EntityID:  e.EntityID,
		OldValues: l.encode(e, "old_values", e.OldValues),
		NewValues: l.encode(e, "new_values", e.NewValues),
		UserID:    e.Actor.UserID,
		UserEmail: e.Actor.Email,
		UserRole:  e.Actor.Role,
	}

	if err := l.repo.Create(ctx, &entry); err != nil {
		l.log.Warn("audit log write failed",
			zap.String("action", string(e.Action)),
			zap.String("table", e.TableName),
			zap.Uint("entity_id", e.EntityID),
			zap.Error(err),
		)
	}
}

func (l *Logger) List(ctx context.Context, f Filter) ([]models.AuditLog, error) {
	return l.repo.List(ctx, f)
}

// jsonb columns need the JSON literal null rather than an empty string.
// A snapshot that cannot be marshalled is stored as null and the entry is
// still written.
func (l *Logger) encode(e Entry, field string, v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		l.log.Warn("audit snapshot not encodable",
			zap.String("action", string(e.Action)),
			zap.String("table", e.TableName),
			zap.Uint("entity_id", e.EntityID),
			zap.String("field", field),
			zap.Error(err),
		)
		return "null"
	}
	return string(b)
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (r *GormRepository) List(ctx context.Context, f Filter) ([]models.AuditLog, error) {
	q := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.TableName != "" {
		q = q.Where("table_name = ?", f.TableName)
	}
	if f.DateFrom != nil {
		q = q.Where("created_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("created_at < ?", f.DateTo.AddDate(0, 0, 1))
	}

	var logs []models.AuditLog
	if err := q.Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}
