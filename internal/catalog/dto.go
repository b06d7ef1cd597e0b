package catalog

import (
	"time"

	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"github.com/shopspring/decimal"
)

// DefaultUnit is the column default for products.unit.
const DefaultUnit = "kg"

// CategoryDTO is the read shape of a category.
type CategoryDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// CreateCategoryInput names a new category.
type CreateCategoryInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
}

// ProductDTO is the read shape of a product with its stock level.
type ProductDTO struct {
	ID                int64            `json:"id"`
	FarmerID          int64            `json:"farmer_id"`
	CategoryID        *int64           `json:"category_id,omitempty"`
	Name              string           `json:"name"`
	Description       *string          `json:"description,omitempty"`
	Unit              string           `json:"unit"`
	QuantityAvailable *decimal.Decimal `json:"quantity_available,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// CreateProductInput lists a farmer's product. An empty unit becomes DefaultUnit.
type CreateProductInput struct {
	FarmerID    int64   `json:"farmer_id" validate:"gt=0"`
	CategoryID  *int64  `json:"category_id" validate:"omitempty,gt=0"`
	Name        string  `json:"name" validate:"required,max=150"`
	Description *string `json:"description"`
	Unit        string  `json:"unit" validate:"omitempty,max=20"`
}

// UpdateProductInput edits a product; nil fields are left untouched and
// ClearCategory detaches the product from its category.
type UpdateProductInput struct {
	CategoryID    *int64  `json:"category_id" validate:"omitempty,gt=0"`
	ClearCategory bool    `json:"clear_category"`
	Name          *string `json:"name" validate:"omitempty,min=1,max=150"`
	Description   *string `json:"description"`
	Unit          *string `json:"unit" validate:"omitempty,min=1,max=20"`
}

// InventoryDTO is the stock level of one product.
type InventoryDTO struct {
	ProductID         int64           `json:"product_id"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// CategoryFromModel maps a category row.
func CategoryFromModel(m *models.Category) *CategoryDTO {
	if m == nil {
		return nil
	}
	return &CategoryDTO{ID: m.ID, Name: m.Name, Description: m.Description}
}

// ProductFromModel maps a product row and its preloaded inventory, if any.
func ProductFromModel(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	dto := &ProductDTO{
		ID:          m.ID,
		FarmerID:    m.FarmerID,
		CategoryID:  m.CategoryID,
		Name:        m.Name,
		Description: m.Description,
		Unit:        m.Unit,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Inventory != nil {
		qty := m.Inventory.QuantityAvailable
		dto.QuantityAvailable = &qty
	}
	return dto
}

// InventoryFromModel maps an inventory row.
func InventoryFromModel(m *models.Inventory) *InventoryDTO {
	if m == nil {
		return nil
	}
	return &InventoryDTO{ProductID: m.ProductID, QuantityAvailable: m.QuantityAvailable, UpdatedAt: m.UpdatedAt}
}
