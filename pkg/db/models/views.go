package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/agrimarket/pkg/enums"
)

// ActiveOffer is one row of the active_offers view.
type ActiveOffer struct {
	OfferID      int64            `gorm:"column:offer_id" json:"offer_id"`
	CoopID       int64            `gorm:"column:coop_id" json:"coop_id"`
	CoopName     string           `gorm:"column:coop_name" json:"coop_name"`
	ProductID    *int64           `gorm:"column:product_id" json:"product_id,omitempty"`
	ProductName  *string          `gorm:"column:product_name" json:"product_name,omitempty"`
	CategoryID   *int64           `gorm:"column:category_id" json:"category_id,omitempty"`
	CategoryName *string          `gorm:"column:category_name" json:"category_name,omitempty"`
	PricePerUnit decimal.Decimal  `gorm:"column:price_per_unit" json:"price_per_unit"`
	Currency     enums.Currency   `gorm:"column:currency" json:"currency"`
	MinQuantity  *decimal.Decimal `gorm:"column:min_quantity" json:"min_quantity,omitempty"`
	MaxQuantity  *decimal.Decimal `gorm:"column:max_quantity" json:"max_quantity,omitempty"`
	ValidFrom    *time.Time       `gorm:"column:valid_from" json:"valid_from,omitempty"`
	ValidTo      *time.Time       `gorm:"column:valid_to" json:"valid_to,omitempty"`
}

// SalesHistoryRow is one (order x order item) row of farmer_sales_history and
// coop_purchase_history; both views share this shape.
type SalesHistoryRow struct {
	OrderID     int64             `gorm:"column:order_id" json:"order_id"`
	OrderNumber string            `gorm:"column:order_number" json:"order_number"`
	Status      enums.OrderStatus `gorm:"column:status" json:"status"`
	PlacedAt    time.Time         `gorm:"column:placed_at" json:"placed_at"`
	FarmerID    int64             `gorm:"column:farmer_id" json:"farmer_id"`
	FarmName    string            `gorm:"column:farm_name" json:"farm_name"`
	CoopID      int64             `gorm:"column:coop_id" json:"coop_id"`
	CoopName    string            `gorm:"column:coop_name" json:"coop_name"`
	OrderItemID int64             `gorm:"column:order_item_id" json:"order_item_id"`
	ProductID   int64             `gorm:"column:product_id" json:"product_id"`
	ProductName string            `gorm:"column:product_name" json:"product_name"`
	Quantity    decimal.Decimal   `gorm:"column:quantity" json:"quantity"`
	UnitPrice   decimal.Decimal   `gorm:"column:unit_price" json:"unit_price"`
	Subtotal    decimal.Decimal   `gorm:"column:subtotal" json:"subtotal"`
	Currency    enums.Currency    `gorm:"column:currency" json:"currency"`
}
