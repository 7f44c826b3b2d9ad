package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation pairs a buyer with a farmer, optionally anchored to a product.
type Conversation struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID       uuid.UUID  `gorm:"column:buyer_id;type:uuid;not null;uniqueIndex:idx_conversations_pair"`
	FarmerID      uuid.UUID  `gorm:"column:farmer_id;type:uuid;not null;uniqueIndex:idx_conversations_pair"`
	ProductID     *uuid.UUID `gorm:"column:product_id;type:uuid;uniqueIndex:idx_conversations_pair"`
	LastMessageAt time.Time  `gorm:"column:last_message_at;not null"`
	Buyer         *User      `gorm:"foreignKey:BuyerID"`
	Farmer        *User      `gorm:"foreignKey:FarmerID"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// Message is a single chat entry inside a conversation.
type Message struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ConversationID uuid.UUID  `gorm:"column:conversation_id;type:uuid;not null;index"`
	SenderID       uuid.UUID  `gorm:"column:sender_id;type:uuid;not null"`
	Body           string     `gorm:"column:body;not null"`
	ReadAt         *time.Time `gorm:"column:read_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
