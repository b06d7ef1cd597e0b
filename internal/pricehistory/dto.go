package pricehistory

import (
	"time"

	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"github.com/angelmondragon/agrimarket/pkg/enums"
	"github.com/angelmondragon/agrimarket/pkg/types"
	"github.com/shopspring/decimal"
)

// EntryDTO is one recorded quote.
type EntryDTO struct {
	ID         int64                 `json:"id"`
	ProductID  int64                 `json:"product_id"`
	SourceType enums.PriceSourceType `json:"source_type"`
	SourceID   int64                 `json:"source_id"`
	Price      decimal.Decimal       `json:"price"`
	Currency   enums.Currency        `json:"currency"`
	RecordedAt time.Time             `json:"recorded_at"`
}

// RecordInput is a quote for a product from a farmer or a cooperative.
type RecordInput struct {
	ProductID int64             `json:"product_id" validate:"gt=0"`
	Source    types.PriceSource `json:"-"`
	Price     decimal.Decimal   `json:"price"`
	Currency  enums.Currency    `json:"currency" validate:"omitempty,currency"`
}

// Source rebuilds the tagged source of a stored entry.
func (e EntryDTO) Source() (types.PriceSource, error) {
	return types.ParsePriceSource(string(e.SourceType), e.SourceID)
}

// FromModel maps a price_history row.
func FromModel(m *models.PriceHistory) *EntryDTO {
	if m == nil {
		return nil
	}
	return &EntryDTO{
		ID:         m.ID,
		ProductID:  m.ProductID,
		SourceType: m.SourceType,
		SourceID:   m.SourceID,
		Price:      m.Price,
		Currency:   m.Currency,
		RecordedAt: m.RecordedAt,
	}
}
