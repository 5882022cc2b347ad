package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)

func (a AuditAction) Valid() bool {
	return a == AuditActionCreate || a == AuditActionUpdate || a == AuditActionDelete
}

// AuditLog rows are append-only.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Action    AuditAction `gorm:"size:10;index;not null" json:"action"`
	TableName string      `gorm:"column:table_name;size:50;index;not null" json:"table_name"`
	EntityID  uint        `gorm:"index" json:"entity_id"`

	// Snapshots as JSON text; "null" when absent
	OldValues string `gorm:"type:jsonb" json:"old_values"`
	NewValues string `gorm:"type:jsonb" json:"new_values"`

	UserID    uint   `gorm:"index" json:"user_id"`
	UserEmail string `gorm:"size:150" json:"user_email"` // denormalized
	UserRole  Role   `gorm:"size:20" json:"user_role"`
}
