package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/agrimarket/pkg/enums"
)

// PriceHistory is an append-only quote log. SourceID points at farmer_profiles
// or cooperative_profiles depending on SourceType, without a foreign key.
type PriceHistory struct {
	ID         int64                 `gorm:"column:id;primaryKey"`
	ProductID  int64                 `gorm:"column:product_id;not null"`
	SourceType enums.PriceSourceType `gorm:"column:source_type;type:price_source_type;not null"`
	SourceID   int64                 `gorm:"column:source_id;not null"`
	Price      decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	Currency   enums.Currency        `gorm:"column:currency;type:char(3);not null;default:KES"`
	RecordedAt time.Time             `gorm:"column:recorded_at;autoCreateTime"`
}

func (PriceHistory) TableName() string { return "price_history" }
