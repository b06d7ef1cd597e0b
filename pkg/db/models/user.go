package models

import (
	"time"

	"github.com/angelmondragon/agrimarket/pkg/enums"
)

// User is the account identity every profile and negotiation hangs off.
type User struct {
	ID           int64          `gorm:"column:id;primaryKey"`
	Username     string         `gorm:"column:username;not null;uniqueIndex"`
	Email        string         `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	FullName     *string        `gorm:"column:full_name"`
	Phone        *string        `gorm:"column:phone"`
	Role         enums.UserRole `gorm:"column:role;type:user_role;not null"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }
