package models

import "time"

type Role string

const (
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
	RoleAccountant Role = "accountant"
)

func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleAccountant
}

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:150;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	LastSignInAt *time.Time
}

// UserRoleAssignment: exactly one role per user, keyed on UserID.
type UserRoleAssignment struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	User      *User
	Role      Role `gorm:"size:20;not null"`
	CreatedAt time.Time
}

func (UserRoleAssignment) TableName() string { return "user_roles" }

type UserPreference struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	DarkMode  bool `gorm:"not null;default:false"`
	UpdatedAt time.Time
}
