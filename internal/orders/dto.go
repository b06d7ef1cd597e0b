package orders

import (
	"time"

	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"github.com/angelmondragon/agrimarket/pkg/enums"
	"github.com/shopspring/decimal"
)

// OrderDTO is an order with its lines.
type OrderDTO struct {
	ID          int64             `json:"id"`
	OrderNumber string            `json:"order_number"`
	FarmerID    int64             `json:"farmer_id"`
	CoopID      int64             `json:"coop_id"`
	Status      enums.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Currency    enums.Currency    `json:"currency"`
	Items       []ItemDTO         `json:"items"`
	PlacedAt    time.Time         `json:"placed_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ItemDTO is one order line. Subtotal is always the stored, engine-computed value.
type ItemDTO struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CreateOrderInput opens an order between a farmer and a cooperative.
// OrderNumber is generated when empty; Status defaults to pending and
// Currency to KES.
type CreateOrderInput struct {
	OrderNumber string            `json:"order_number" validate:"omitempty,max=50"`
	FarmerID    int64             `json:"farmer_id" validate:"gt=0"`
	CoopID      int64             `json:"coop_id" validate:"gt=0"`
	Status      enums.OrderStatus `json:"status" validate:"omitempty,enum"`
	Currency    enums.Currency    `json:"currency" validate:"omitempty,currency"`
	Items       []ItemInput       `json:"items" validate:"dive"`
}

// ItemInput is a new order line. The subtotal is never accepted from callers.
type ItemInput struct {
	ProductID int64           `json:"product_id" validate:"gt=0"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// UpdateItemInput changes the quantity and/or unit price of a line.
type UpdateItemInput struct {
	Quantity  *decimal.Decimal `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// FromModel maps an order row and whatever items were loaded with it.
func FromModel(m *models.Order) *OrderDTO {
	if m == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:          m.ID,
		OrderNumber: m.OrderNumber,
		FarmerID:    m.FarmerID,
		CoopID:      m.CoopID,
		Status:      m.Status,
		TotalAmount: m.TotalAmount,
		Currency:    m.Currency,
		Items:       make([]ItemDTO, 0, len(m.Items)),
		PlacedAt:    m.PlacedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	for i := range m.Items {
		dto.Items = append(dto.Items, *ItemFromModel(&m.Items[i]))
	}
	return dto
}

// ItemFromModel maps an order item row.
func ItemFromModel(m *models.OrderItem) *ItemDTO {
	if m == nil {
		return nil
	}
	return &ItemDTO{
		ID:        m.ID,
		OrderID:   m.OrderID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		Subtotal:  m.Subtotal,
	}
}
