package models

import "time"

// Negotiation is a directed message between two users, optionally about an order.
type Negotiation struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	OrderID    *int64    `gorm:"column:order_id"`
	SenderID   int64     `gorm:"column:sender_id;not null"`
	ReceiverID int64     `gorm:"column:receiver_id;not null"`
	Message    string    `gorm:"column:message;not null"`
	SentAt     time.Time `gorm:"column:sent_at;autoCreateTime"`
}

func (Negotiation) TableName() string { return "negotiations" }
