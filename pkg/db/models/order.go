package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/agrimarket/pkg/enums"
)

// Order links one farmer and one cooperative. TotalAmount is caller-maintained.
type Order struct {
	ID          int64             `gorm:"column:id;primaryKey"`
	OrderNumber string            `gorm:"column:order_number;not null;uniqueIndex"`
	FarmerID    int64             `gorm:"column:farmer_id;not null"`
	CoopID      int64             `gorm:"column:coop_id;not null"`
	Status      enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:pending"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:numeric(14,2);not null"`
	Currency    enums.Currency    `gorm:"column:currency;type:char(3);not null;default:KES"`
	Items       []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PlacedAt    time.Time         `gorm:"column:placed_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is one line of an order. Subtotal is a generated column: it is
// read-only here and always equals Quantity * UnitPrice.
type OrderItem struct {
	ID        int64           `gorm:"column:id;primaryKey"`
	OrderID   int64           `gorm:"column:order_id;not null"`
	ProductID int64           `gorm:"column:product_id;not null"`
	Quantity  decimal.Decimal `gorm:"column:quantity;type:numeric(12,3);not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:numeric(14,2);->"`
}

func (OrderItem) TableName() string { return "order_items" }
