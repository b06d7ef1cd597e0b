package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64   `gorm:"column:id;primaryKey"`
	Name        string  `gorm:"column:name;not null;uniqueIndex"`
	Description *string `gorm:"column:description"`
}

func (Category) TableName() string { return "categories" }

// Product is owned by one farmer; CategoryID is nulled when the category goes away.
type Product struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	FarmerID    int64      `gorm:"column:farmer_id;not null"`
	CategoryID  *int64     `gorm:"column:category_id"`
	Name        string     `gorm:"column:name;not null"`
	Description *string    `gorm:"column:description"`
	Unit        string     `gorm:"column:unit;not null;default:kg"`
	Inventory   *Inventory `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

// Inventory tracks stock for one product. Orders never touch it.
type Inventory struct {
	ID                int64           `gorm:"column:id;primaryKey"`
	ProductID         int64           `gorm:"column:product_id;not null;uniqueIndex"`
	QuantityAvailable decimal.Decimal `gorm:"column:quantity_available;type:numeric(12,3);not null"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Inventory) TableName() string { return "inventory" }
