package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/agrimarket/internal/repo"
	"github.com/angelmondragon/agrimarket/pkg/db"
	"github.com/angelmondragon/agrimarket/pkg/db/models"
	pkgerrors "github.com/angelmondragon/agrimarket/pkg/errors"
	"github.com/angelmondragon/agrimarket/pkg/logger"
	"github.com/angelmondragon/agrimarket/pkg/metrics"
	"github.com/angelmondragon/agrimarket/pkg/types"
	"github.com/angelmondragon/agrimarket/pkg/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages categories, products and their stock levels.
type Service interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, id int64) (*ProductDTO, error)
	ListFarmerProducts(ctx context.Context, farmerID int64) ([]ProductDTO, error)
	UpdateProduct(ctx context.Context, id int64, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id int64) error

	GetInventory(ctx context.Context, productID int64) (*InventoryDTO, error)
	SetInventory(ctx context.Context, productID int64, qty decimal.Decimal) (*InventoryDTO, error)
	AdjustInventory(ctx context.Context, productID int64, delta decimal.Decimal) (*InventoryDTO, error)
}

type service struct {
	tx        txRunner
	repo      *Repository
	products  repo.WriteObserver
	category  repo.WriteObserver
	inventory repo.WriteObserver
}

// NewService builds the catalog service.
func NewService(tx txRunner, r *Repository, logg *logger.Logger, m *metrics.WriteMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if r == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{
		tx:        tx,
		repo:      r,
		products:  repo.NewWriteObserver("product", logg, m),
		category:  repo.NewWriteObserver("category", logg, m),
		inventory: repo.NewWriteObserver("inventory", logg, m),
	}, nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (dto *CategoryDTO, err error) {
	defer func(start time.Time) { err = s.category.Done(ctx, "create", start, err) }(time.Now())

	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	c := &models.Category{Name: input.Name, Description: input.Description}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, db.Translate(err, "create category")
	}
	return CategoryFromModel(c), nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, db.Translate(err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *CategoryFromModel(&rows[i]))
	}
	return out, nil
}

// DeleteCategory removes a category. Products keep existing with no category
// and offers lose theirs, which fails when an offer targets only this category.
func (s *service) DeleteCategory(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { err = s.category.Done(ctx, "delete", start, err) }(time.Now())

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		sole, err := r.CategoryIsSoleOfferTarget(ctx, id)
		if err != nil {
			return db.Translate(err, "check category offers")
		}
		if sole {
			return pkgerrors.New(pkgerrors.CodeInvariant, "category is the only target of an offer").
				WithDetails(map[string]any{"category_id": id})
		}
		n, err := r.DeleteCategory(ctx, id)
		if err != nil {
			return db.Translate(err, "delete category")
		}
		if n == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil
	})
	return err
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (dto *ProductDTO, err error) {
	defer func(start time.Time) { err = s.products.Done(ctx, "create", start, err) }(time.Now())

	input.Name = strings.TrimSpace(input.Name)
	input.Unit = strings.TrimSpace(input.Unit)
	if input.Unit == "" {
		input.Unit = DefaultUnit
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	product := &models.Product{
		FarmerID:    input.FarmerID,
		CategoryID:  input.CategoryID,
		Name:        input.Name,
		Description: input.Description,
		Unit:        input.Unit,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if err := r.CreateProduct(ctx, product); err != nil {
			return db.Translate(err, "create product")
		}
		inv, err := r.UpsertInventory(ctx, product.ID, decimal.Zero)
		if err != nil {
			return db.Translate(err, "create inventory")
		}
		product.Inventory = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ProductFromModel(product), nil
}

func (s *service) GetProduct(ctx context.Context, id int64) (*ProductDTO, error) {
	p, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, db.TranslateFind(err, "product")
	}
	return ProductFromModel(p), nil
}

func (s *service) ListFarmerProducts(ctx context.Context, farmerID int64) ([]ProductDTO, error) {
	rows, err := s.repo.ListFarmerProducts(ctx, farmerID)
	if err != nil {
		return nil, db.Translate(err, "list farmer products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ProductFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) UpdateProduct(ctx context.Context, id int64, input UpdateProductInput) (dto *ProductDTO, err error) {
	defer func(start time.Time) { err = s.products.Done(ctx, "update", start, err) }(time.Now())

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		input.Name = &name
	}
	if input.Unit != nil {
		unit := strings.TrimSpace(*input.Unit)
		input.Unit = &unit
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.ClearCategory && input.CategoryID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category_id and clear_category are exclusive")
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Unit != nil {
		updates["unit"] = *input.Unit
	}
	switch {
	case input.ClearCategory:
		updates["category_id"] = nil
	case input.CategoryID != nil:
		updates["category_id"] = *input.CategoryID
	}

	var product *models.Product
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if len(updates) > 0 {
			n, err := r.UpdateProductColumns(ctx, id, updates)
			if err != nil {
				return db.Translate(err, "update product")
			}
			if n == 0 {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
		}
		var err error
		product, err = r.FindProduct(ctx, id)
		if err != nil {
			return db.TranslateFind(err, "product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ProductFromModel(product), nil
}

// DeleteProduct removes a product with its inventory and price history.
// Products that appear on an order cannot be removed, and neither can products
// that are the only target of an offer.
func (s *service) DeleteProduct(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { err = s.products.Done(ctx, "delete", start, err) }(time.Now())

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		ordered, err := r.ProductIsOrdered(ctx, id)
		if err != nil {
			return db.Translate(err, "check product orders")
		}
		if ordered {
			return pkgerrors.New(pkgerrors.CodeReferential, "product is referenced by order items").
				WithDetails(map[string]any{"product_id": id})
		}
		sole, err := r.ProductIsSoleOfferTarget(ctx, id)
		if err != nil {
			return db.Translate(err, "check product offers")
		}
		if sole {
			return pkgerrors.New(pkgerrors.CodeInvariant, "product is the only target of an offer").
				WithDetails(map[string]any{"product_id": id})
		}
		n, err := r.DeleteProduct(ctx, id)
		if err != nil {
			return db.Translate(err, "delete product")
		}
		if n == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil
	})
	return err
}

func (s *service) GetInventory(ctx context.Context, productID int64) (*InventoryDTO, error) {
	inv, err := s.repo.FindInventory(ctx, productID)
	if err != nil {
		return nil, db.TranslateFind(err, "inventory")
	}
	return InventoryFromModel(inv), nil
}

// SetInventory overwrites the stock level of a product.
func (s *service) SetInventory(ctx context.Context, productID int64, qty decimal.Decimal) (dto *InventoryDTO, err error) {
	defer func(start time.Time) { err = s.inventory.Done(ctx, "set", start, err) }(time.Now())

	qty, err = normalizeStock(qty)
	if err != nil {
		return nil, err
	}
	var inv *models.Inventory
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if err := requireProduct(ctx, r, productID); err != nil {
			return err
		}
		var err error
		inv, err = r.UpsertInventory(ctx, productID, qty)
		return db.Translate(err, "set inventory")
	})
	if err != nil {
		return nil, err
	}
	return InventoryFromModel(inv), nil
}

// AdjustInventory adds delta (which may be negative) to the stock level.
func (s *service) AdjustInventory(ctx context.Context, productID int64, delta decimal.Decimal) (dto *InventoryDTO, err error) {
	defer func(start time.Time) { err = s.inventory.Done(ctx, "adjust", start, err) }(time.Now())

	var inv *models.Inventory
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if err := requireProduct(ctx, r, productID); err != nil {
			return err
		}
		current := decimal.Zero
		existing, err := r.FindInventory(ctx, productID)
		switch {
		case err == nil:
			current = existing.QuantityAvailable
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return db.Translate(err, "load inventory")
		}
		qty, err := normalizeStock(current.Add(delta))
		if err != nil {
			return err
		}
		inv, err = r.UpsertInventory(ctx, productID, qty)
		return db.Translate(err, "adjust inventory")
	})
	if err != nil {
		return nil, err
	}
	return InventoryFromModel(inv), nil
}

func requireProduct(ctx context.Context, r *Repository, productID int64) error {
	ok, err := r.Exists(ctx, &models.Product{}, "id = ?", productID)
	if err != nil {
		return db.Translate(err, "load product")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func normalizeStock(qty decimal.Decimal) (decimal.Decimal, error) {
	if qty.IsNegative() {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "inventory cannot go negative").
			WithDetails(map[string]any{"quantity_available": qty.String()})
	}
	out, err := types.Quantity.Normalize(qty)
	if err != nil {
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quantity")
	}
	return out, nil
}
