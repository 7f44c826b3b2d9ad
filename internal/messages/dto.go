package messages

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/pagination"
)

// SendMessageInput is the payload for sending a chat message.
type SendMessageInput struct {
	RecipientID uuid.UUID  `json:"recipient_id" validate:"required"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	Body        string     `json:"body" validate:"required,max=4000"`
}

// PartySummary is the chat counterpart embedded in conversation reads.
type PartySummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

// ConversationDTO is the transport shape for a conversation.
type ConversationDTO struct {
	ID            uuid.UUID     `json:"id"`
	Buyer         *PartySummary `json:"buyer,omitempty"`
	Farmer        *PartySummary `json:"farmer,omitempty"`
	ProductID     *uuid.UUID    `json:"product_id,omitempty"`
	LastMessageAt time.Time     `json:"last_message_at"`
	UnreadCount   int64         `json:"unread_count"`
	CreatedAt     time.Time     `json:"created_at"`
}

// MessageDTO is the transport shape for a single message.
type MessageDTO struct {
	ID             uuid.UUID  `json:"id"`
	ConversationID uuid.UUID  `json:"conversation_id"`
	SenderID       uuid.UUID  `json:"sender_id"`
	Body           string     `json:"body"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ListConversationsInput configures the conversation listing.
type ListConversationsInput struct {
	UserID     uuid.UUID
	Pagination pagination.Params
}

// ConversationListResult wraps a page of conversations plus the next cursor.
type ConversationListResult struct {
	Conversations []ConversationDTO `json:"conversations"`
	NextCursor    string            `json:"next_cursor,omitempty"`
}

// ListMessagesInput configures the message listing for one conversation.
type ListMessagesInput struct {
	UserID         uuid.UUID
	ConversationID uuid.UUID
	Pagination     pagination.Params
}

// MessageListResult wraps a page of messages plus the next cursor.
type MessageListResult struct {
	Messages   []MessageDTO `json:"messages"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// NewMessageDTO converts a message model into its transport shape.
func NewMessageDTO(message *models.Message) *MessageDTO {
	if message == nil {
		return nil
	}
	return &MessageDTO{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		SenderID:       message.SenderID,
		Body:           message.Body,
		ReadAt:         message.ReadAt,
		CreatedAt:      message.CreatedAt,
	}
}

// NewConversationDTO converts a conversation model into its transport shape.
func NewConversationDTO(conversation *models.Conversation, unread int64) *ConversationDTO {
	if conversation == nil {
		return nil
	}
	return &ConversationDTO{
		ID:            conversation.ID,
		Buyer:         newPartySummary(conversation.Buyer),
		Farmer:        newPartySummary(conversation.Farmer),
		ProductID:     conversation.ProductID,
		LastMessageAt: conversation.LastMessageAt,
		UnreadCount:   unread,
		CreatedAt:     conversation.CreatedAt,
	}
}

func newPartySummary(user *models.User) *PartySummary {
	if user == nil {
		return nil
	}
	return &PartySummary{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		AvatarURL: user.AvatarURL,
	}
}
