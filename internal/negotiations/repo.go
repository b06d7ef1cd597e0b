package negotiations

import (
	"context"

	"github.com/angelmondragon/agrimarket/internal/repo"
	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"github.com/angelmondragon/agrimarket/pkg/pagination"
	"gorm.io/gorm"
)

// Repository persists negotiation messages.
type Repository struct {
	repo.Base
}

// NewRepository constructs a negotiations repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts one message.
func (r *Repository) Create(ctx context.Context, n *models.Negotiation) error {
	return r.DB(ctx).Create(n).Error
}

// ListByOrder returns the messages about an order, oldest first.
func (r *Repository) ListByOrder(ctx context.Context, orderID int64) ([]models.Negotiation, error) {
	var out []models.Negotiation
	err := r.DB(ctx).Where("order_id = ?", orderID).Order("sent_at ASC, id ASC").Find(&out).Error
	return out, err
}

// ListConversation returns messages exchanged between two users, oldest
// first, starting after cursor when one is given. limit <= 0 means all.
func (r *Repository) ListConversation(ctx context.Context, a, b int64, cursor *pagination.Cursor, limit int) ([]models.Negotiation, error) {
	var out []models.Negotiation
	query := r.DB(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a)
	if cursor != nil {
		query = query.Where("(sent_at > ?) OR (sent_at = ? AND id > ?)", cursor.At, cursor.At, cursor.ID)
	}
	query = query.Order("sent_at ASC").Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&out).Error
	return out, err
}
