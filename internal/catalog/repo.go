package catalog

import (
	"context"
	"time"

	"github.com/angelmondragon/agrimarket/internal/repo"
	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists categories, products and inventory.
type Repository struct {
	repo.Base
}

// NewRepository constructs a catalog repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.DB(ctx).Create(c).Error
}

// ListCategories returns every category ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := r.DB(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

// DeleteCategory removes a category; products and offers have it nulled.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	res := r.DB(ctx).Delete(&models.Category{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// CategoryIsSoleOfferTarget reports whether an offer targets the category with no product.
func (r *Repository) CategoryIsSoleOfferTarget(ctx context.Context, categoryID int64) (bool, error) {
	return r.Exists(ctx, &models.CoopProductOffer{}, "category_id = ? AND product_id IS NULL", categoryID)
}

// CreateProduct inserts a product.
func (r *Repository) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB(ctx).Omit(clause.Associations).Create(p).Error
}

// FindProduct loads a product with its inventory.
func (r *Repository) FindProduct(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	if err := r.DB(ctx).Preload("Inventory").First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListFarmerProducts returns a farmer's products, newest first.
func (r *Repository) ListFarmerProducts(ctx context.Context, farmerID int64) ([]models.Product, error) {
	var out []models.Product
	err := r.DB(ctx).Preload("Inventory").
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// UpdateProductColumns applies column changes to one product.
func (r *Repository) UpdateProductColumns(ctx context.Context, id int64, updates map[string]any) (int64, error) {
	res := r.DB(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}

// DeleteProduct removes a product; inventory and price history cascade and
// offers have product_id nulled.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) (int64, error) {
	res := r.DB(ctx).Delete(&models.Product{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// ProductIsOrdered reports whether an order item references the product.
func (r *Repository) ProductIsOrdered(ctx context.Context, productID int64) (bool, error) {
	return r.Exists(ctx, &models.OrderItem{}, "product_id = ?", productID)
}

// ProductIsSoleOfferTarget reports whether an offer targets the product with no category.
func (r *Repository) ProductIsSoleOfferTarget(ctx context.Context, productID int64) (bool, error) {
	return r.Exists(ctx, &models.CoopProductOffer{}, "product_id = ? AND category_id IS NULL", productID)
}

// FindInventory loads the stock row of a product.
func (r *Repository) FindInventory(ctx context.Context, productID int64) (*models.Inventory, error) {
	var inv models.Inventory
	if err := r.DB(ctx).Where("product_id = ?", productID).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// UpsertInventory writes the stock level, creating the row when missing.
func (r *Repository) UpsertInventory(ctx context.Context, productID int64, qty decimal.Decimal) (*models.Inventory, error) {
	inv := &models.Inventory{ProductID: productID, QuantityAvailable: qty, UpdatedAt: time.Now().UTC()}
	err := r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity_available", "updated_at"}),
	}).Create(inv).Error
	if err != nil {
		return nil, err
	}
	return r.FindInventory(ctx, productID)
}
