package offers

import (
	"time"

	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"github.com/angelmondragon/agrimarket/pkg/enums"
	"github.com/shopspring/decimal"
)

// OfferDTO is the read shape of a cooperative offer.
type OfferDTO struct {
	ID           int64            `json:"id"`
	CoopID       int64            `json:"coop_id"`
	ProductID    *int64           `json:"product_id,omitempty"`
	CategoryID   *int64           `json:"category_id,omitempty"`
	PricePerUnit decimal.Decimal  `json:"price_per_unit"`
	Currency     enums.Currency   `json:"currency"`
	MinQuantity  *decimal.Decimal `json:"min_quantity,omitempty"`
	MaxQuantity  *decimal.Decimal `json:"max_quantity,omitempty"`
	ValidFrom    *time.Time       `json:"valid_from,omitempty"`
	ValidTo      *time.Time       `json:"valid_to,omitempty"`
	Active       bool             `json:"active"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// CreateOfferInput describes a new offer. At least one of ProductID and
// CategoryID must be set. Currency defaults to KES and Active to true.
type CreateOfferInput struct {
	CoopID       int64            `json:"coop_id" validate:"gt=0"`
	ProductID    *int64           `json:"product_id" validate:"omitempty,gt=0"`
	CategoryID   *int64           `json:"category_id" validate:"omitempty,gt=0"`
	PricePerUnit decimal.Decimal  `json:"price_per_unit"`
	Currency     enums.Currency   `json:"currency" validate:"omitempty,currency"`
	MinQuantity  *decimal.Decimal `json:"min_quantity"`
	MaxQuantity  *decimal.Decimal `json:"max_quantity"`
	ValidFrom    *time.Time       `json:"valid_from"`
	ValidTo      *time.Time       `json:"valid_to"`
	Active       *bool            `json:"active"`
}

// UpdateOfferInput edits an offer. Nil fields are left untouched; the Clear
// flags null out the matching nullable column.
type UpdateOfferInput struct {
	ProductID     *int64           `json:"product_id" validate:"omitempty,gt=0"`
	ClearProduct  bool             `json:"clear_product"`
	CategoryID    *int64           `json:"category_id" validate:"omitempty,gt=0"`
	ClearCategory bool             `json:"clear_category"`
	PricePerUnit  *decimal.Decimal `json:"price_per_unit"`
	Currency      *enums.Currency  `json:"currency" validate:"omitempty,currency"`
	MinQuantity   *decimal.Decimal `json:"min_quantity"`
	MaxQuantity   *decimal.Decimal `json:"max_quantity"`
	ValidFrom     *time.Time       `json:"valid_from"`
	ValidTo       *time.Time       `json:"valid_to"`
	Active        *bool            `json:"active"`
}

// FromModel maps an offer row.
func FromModel(m *models.CoopProductOffer) *OfferDTO {
	if m == nil {
		return nil
	}
	return &OfferDTO{
		ID:           m.ID,
		CoopID:       m.CoopID,
		ProductID:    m.ProductID,
		CategoryID:   m.CategoryID,
		PricePerUnit: m.PricePerUnit,
		Currency:     m.Currency,
		MinQuantity:  m.MinQuantity,
		MaxQuantity:  m.MaxQuantity,
		ValidFrom:    m.ValidFrom,
		ValidTo:      m.ValidTo,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
