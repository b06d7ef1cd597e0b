package users

import (
	"context"

	"github.com/angelmondragon/agrimarket/internal/repo"
	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.DB(ctx).Create(user).Error
}

// FindByID loads a user by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername retrieves the user matching the provided username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateColumns applies the provided column changes to one user.
func (r *Repository) UpdateColumns(ctx context.Context, id int64, updates map[string]any) (int64, error) {
	res := r.DB(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}

// Delete removes the user; profiles and everything below them cascade.
func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.DB(ctx).Delete(&models.User{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// HasOrderedProducts reports whether any order item references a product
// owned by the user's farmer profile.
func (r *Repository) HasOrderedProducts(ctx context.Context, userID int64) (bool, error) {
	return r.Exists(ctx, &models.OrderItem{},
		`product_id IN (SELECT p.id FROM products p JOIN farmer_profiles f ON f.id = p.farmer_id WHERE f.user_id = ?)`,
		userID)
}

// HasSoleTargetOffers reports whether deleting the user's products would leave
// an offer with neither product nor category.
func (r *Repository) HasSoleTargetOffers(ctx context.Context, userID int64) (bool, error) {
	return r.Exists(ctx, &models.CoopProductOffer{},
		`category_id IS NULL AND product_id IN (SELECT p.id FROM products p JOIN farmer_profiles f ON f.id = p.farmer_id WHERE f.user_id = ?)`,
		userID)
}
