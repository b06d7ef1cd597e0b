package offers

import (
	"context"

	"github.com/angelmondragon/agrimarket/internal/repo"
	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists coop_product_offers rows.
type Repository struct {
	repo.Base
}

// NewRepository constructs an offers repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Create inserts an offer.
func (r *Repository) Create(ctx context.Context, o *models.CoopProductOffer) error {
	return r.DB(ctx).Create(o).Error
}

// FindByID loads one offer.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.CoopProductOffer, error) {
	var o models.CoopProductOffer
	if err := r.DB(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByCoop returns a cooperative's offers, newest first.
func (r *Repository) ListByCoop(ctx context.Context, coopID int64, activeOnly bool) ([]models.CoopProductOffer, error) {
	q := r.DB(ctx).Where("coop_id = ?", coopID)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var out []models.CoopProductOffer
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

// UpdateColumns applies column changes to one offer.
func (r *Repository) UpdateColumns(ctx context.Context, id int64, updates map[string]any) (int64, error) {
	res := r.DB(ctx).Model(&models.CoopProductOffer{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}

// Delete removes one offer.
func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.DB(ctx).Delete(&models.CoopProductOffer{}, "id = ?", id)
	return res.RowsAffected, res.Error
}
