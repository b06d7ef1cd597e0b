package negotiations

import (
	"time"

	"github.com/angelmondragon/agrimarket/pkg/db/models"
)

// MessageDTO is one negotiation message.
type MessageDTO struct {
	ID         int64     `json:"id"`
	OrderID    *int64    `json:"order_id,omitempty"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Message    string    `json:"message"`
	SentAt     time.Time `json:"sent_at"`
}

// ConversationPage is one keyset page of a conversation. NextCursor is empty
// on the last page.
type ConversationPage struct {
	Messages   []MessageDTO `json:"messages"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// SendInput is a message from one user to another, optionally about an order.
type SendInput struct {
	OrderID    *int64 `json:"order_id" validate:"omitempty,gt=0"`
	SenderID   int64  `json:"sender_id" validate:"gt=0"`
	ReceiverID int64  `json:"receiver_id" validate:"gt=0"`
	Message    string `json:"message" validate:"required"`
}

// FromModel maps a negotiations row.
func FromModel(m *models.Negotiation) *MessageDTO {
	if m == nil {
		return nil
	}
	return &MessageDTO{
		ID:         m.ID,
		OrderID:    m.OrderID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Message:    m.Message,
		SentAt:     m.SentAt,
	}
}
