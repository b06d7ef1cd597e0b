package models

import (
	"time"

	"github.com/angelmondragon/agrimarket/pkg/enums"
)

// Membership joins a farmer to a cooperative; (farmer_id, coop_id) is the key.
type Membership struct {
	FarmerID   int64          `gorm:"column:farmer_id;primaryKey;autoIncrement:false"`
	CoopID     int64          `gorm:"column:coop_id;primaryKey;autoIncrement:false"`
	RoleInCoop enums.CoopRole `gorm:"column:role_in_coop;type:membership_role;not null;default:member"`
	JoinedAt   time.Time      `gorm:"column:joined_at;autoCreateTime"`
}

func (Membership) TableName() string { return "memberships" }
