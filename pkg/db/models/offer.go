package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/agrimarket/pkg/enums"
)

// CoopProductOffer is a cooperative's standing bid. At least one of ProductID
// and CategoryID is set; the database rejects rows where both are null.
type CoopProductOffer struct {
	ID           int64            `gorm:"column:id;primaryKey"`
	CoopID       int64            `gorm:"column:coop_id;not null"`
	ProductID    *int64           `gorm:"column:product_id"`
	CategoryID   *int64           `gorm:"column:category_id"`
	PricePerUnit decimal.Decimal  `gorm:"column:price_per_unit;type:numeric(12,2);not null"`
	Currency     enums.Currency   `gorm:"column:currency;type:char(3);not null;default:KES"`
	MinQuantity  *decimal.Decimal `gorm:"column:min_quantity;type:numeric(12,3)"`
	MaxQuantity  *decimal.Decimal `gorm:"column:max_quantity;type:numeric(12,3)"`
	ValidFrom    *time.Time       `gorm:"column:valid_from;type:date"`
	ValidTo      *time.Time       `gorm:"column:valid_to;type:date"`
	Active       bool             `gorm:"column:active;not null"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (CoopProductOffer) TableName() string { return "coop_product_offers" }

// HasTarget reports whether the row satisfies the product-or-category rule.
func (o CoopProductOffer) HasTarget() bool {
	return o.ProductID != nil || o.CategoryID != nil
}
