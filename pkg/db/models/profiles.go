package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FarmerProfile is the 1:1 extension of a farmer account.
type FarmerProfile struct {
	ID           int64            `gorm:"column:id;primaryKey"`
	UserID       int64            `gorm:"column:user_id;not null;uniqueIndex"`
	FarmName     string           `gorm:"column:farm_name;not null"`
	County       *string          `gorm:"column:county"`
	LocationLat  *decimal.Decimal `gorm:"column:location_lat;type:numeric(9,6)"`
	LocationLong *decimal.Decimal `gorm:"column:location_long;type:numeric(9,6)"`
	Phone        *string          `gorm:"column:phone"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (FarmerProfile) TableName() string { return "farmer_profiles" }

// CooperativeProfile is the 1:1 extension of a coop account.
type CooperativeProfile struct {
	ID                 int64            `gorm:"column:id;primaryKey"`
	UserID             int64            `gorm:"column:user_id;not null;uniqueIndex"`
	Name               string           `gorm:"column:name;not null"`
	RegistrationNumber string           `gorm:"column:registration_number;not null;uniqueIndex"`
	County             *string          `gorm:"column:county"`
	LocationLat        *decimal.Decimal `gorm:"column:location_lat;type:numeric(9,6)"`
	LocationLong       *decimal.Decimal `gorm:"column:location_long;type:numeric(9,6)"`
	ContactPhone       *string          `gorm:"column:contact_phone"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (CooperativeProfile) TableName() string { return "cooperative_profiles" }
