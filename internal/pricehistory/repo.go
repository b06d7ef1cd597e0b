package pricehistory

import (
	"context"

	"github.com/angelmondragon/agrimarket/internal/repo"
	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"gorm.io/gorm"
)

// Repository appends to and reads price_history.
type Repository struct {
	repo.Base
}

// NewRepository constructs a price history repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Create appends one entry.
func (r *Repository) Create(ctx context.Context, e *models.PriceHistory) error {
	return r.DB(ctx).Create(e).Error
}

// ListByProduct returns the newest entries for a product, at most limit when
// limit is positive.
func (r *Repository) ListByProduct(ctx context.Context, productID int64, limit int) ([]models.PriceHistory, error) {
	q := r.DB(ctx).Where("product_id = ?", productID).Order("recorded_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.PriceHistory
	err := q.Find(&out).Error
	return out, err
}

// FindProduct loads the product being quoted.
func (r *Repository) FindProduct(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	if err := r.DB(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FarmerExists reports whether a farmer profile with id exists.
func (r *Repository) FarmerExists(ctx context.Context, id int64) (bool, error) {
	return r.Exists(ctx, &models.FarmerProfile{}, "id = ?", id)
}

// CoopExists reports whether a cooperative profile with id exists.
func (r *Repository) CoopExists(ctx context.Context, id int64) (bool, error) {
	return r.Exists(ctx, &models.CooperativeProfile{}, "id = ?", id)
}
