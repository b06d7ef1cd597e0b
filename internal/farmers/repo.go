package farmers

import (
	"context"

	"github.com/angelmondragon/agrimarket/internal/repo"
	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists farmer profiles.
type Repository struct {
	repo.Base
}

// NewRepository constructs a farmers repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// FindUser loads the owning account.
func (r *Repository) FindUser(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a profile.
func (r *Repository) Create(ctx context.Context, profile *models.FarmerProfile) error {
	return r.DB(ctx).Create(profile).Error
}

// FindByID loads a profile by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.FarmerProfile, error) {
	var profile models.FarmerProfile
	if err := r.DB(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByUserID loads the profile owned by userID.
func (r *Repository) FindByUserID(ctx context.Context, userID int64) (*models.FarmerProfile, error) {
	var profile models.FarmerProfile
	if err := r.DB(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateColumns applies column changes to one profile.
func (r *Repository) UpdateColumns(ctx context.Context, id int64, updates map[string]any) (int64, error) {
	res := r.DB(ctx).Model(&models.FarmerProfile{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}

// Delete removes a profile; products, memberships and orders cascade.
func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.DB(ctx).Delete(&models.FarmerProfile{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// HasOrderedProducts reports whether any order item references one of the farmer's products.
func (r *Repository) HasOrderedProducts(ctx context.Context, farmerID int64) (bool, error) {
	return r.Exists(ctx, &models.OrderItem{},
		"product_id IN (SELECT id FROM products WHERE farmer_id = ?)", farmerID)
}

// HasSoleTargetOffers reports whether an offer targets one of the farmer's
// products without a fallback category.
func (r *Repository) HasSoleTargetOffers(ctx context.Context, farmerID int64) (bool, error) {
	return r.Exists(ctx, &models.CoopProductOffer{},
		"category_id IS NULL AND product_id IN (SELECT id FROM products WHERE farmer_id = ?)", farmerID)
}
