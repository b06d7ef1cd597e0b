package orders

import (
	"context"

	"github.com/angelmondragon/agrimarket/internal/repo"
	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists orders and order items.
type Repository struct {
	repo.Base
}

// NewRepository constructs an orders repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Create inserts the order header only; items go through CreateItem.
func (r *Repository) Create(ctx context.Context, o *models.Order) error {
	return r.DB(ctx).Omit(clause.Associations).Create(o).Error
}

// FindByID loads an order and its items in insertion order.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&o, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// FindByNumber loads an order by its public number.
func (r *Repository) FindByNumber(ctx context.Context, number string) (*models.Order, error) {
	var o models.Order
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&o, "order_number = ?", number).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateColumns applies column changes to one order.
func (r *Repository) UpdateColumns(ctx context.Context, id int64, updates map[string]any) (int64, error) {
	res := r.DB(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}

// Delete removes an order; items cascade and negotiations lose the reference.
func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.DB(ctx).Delete(&models.Order{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// CreateItem inserts a line. The subtotal column is read-only on the model,
// so the engine computes it.
func (r *Repository) CreateItem(ctx context.Context, item *models.OrderItem) error {
	return r.DB(ctx).Create(item).Error
}

// FindItem reloads one line, including its generated subtotal.
func (r *Repository) FindItem(ctx context.Context, id int64) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.DB(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems returns the lines of an order.
func (r *Repository) ListItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var out []models.OrderItem
	err := r.DB(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&out).Error
	return out, err
}

// UpdateItemColumns changes quantity and/or unit_price of one line.
func (r *Repository) UpdateItemColumns(ctx context.Context, id int64, updates map[string]any) (int64, error) {
	res := r.DB(ctx).Model(&models.OrderItem{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}

// DeleteItem removes one line.
func (r *Repository) DeleteItem(ctx context.Context, id int64) (int64, error) {
	res := r.DB(ctx).Delete(&models.OrderItem{}, "id = ?", id)
	return res.RowsAffected, res.Error
}
