package messages

import (
	"context"
	"time"

	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes conversation and message persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a messages repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindConversation looks up the conversation for the pair/product triple.
func (r *Repository) FindConversation(ctx context.Context, buyerID, farmerID uuid.UUID, productID *uuid.UUID) (*models.Conversation, error) {
	qb := r.db.WithContext(ctx).Where("buyer_id = ? AND farmer_id = ?", buyerID, farmerID)
	if productID != nil {
		qb = qb.Where("product_id = ?", *productID)
	} else {
		qb = qb.Where("product_id IS NULL")
	}

	var conversation models.Conversation
	if err := qb.First(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

// FindConversationByID loads a conversation with both parties.
func (r *Repository) FindConversationByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("Farmer").
		First(&conversation, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// CreateConversation inserts the conversation row.
func (r *Repository) CreateConversation(ctx context.Context, conversation *models.Conversation) error {
	return r.db.WithContext(ctx).Create(conversation).Error
}

// TouchConversation bumps last_message_at.
func (r *Repository) TouchConversation(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		UpdateColumn("last_message_at", at).Error
}

// CreateMessage inserts the message row.
func (r *Repository) CreateMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// MarkIncomingRead stamps every unread message sent to the user in the
// conversation. Returns the number of rows touched.
func (r *Repository) MarkIncomingRead(ctx context.Context, conversationID, userID uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, userID).
		UpdateColumn("read_at", now)
	return result.RowsAffected, result.Error
}

// UnreadCounts returns the per-conversation count of unread incoming messages.
func (r *Repository) UnreadCounts(ctx context.Context, conversationIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ConversationID uuid.UUID `gorm:"column:conversation_id"`
		Cnt            int64     `gorm:"column:cnt"`
	}
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("conversation_id, COUNT(*) AS cnt").
		Where("conversation_id IN ? AND sender_id <> ? AND read_at IS NULL", conversationIDs, userID).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ConversationID] = row.Cnt
	}
	return counts, nil
}

type conversationsListQuery struct {
	UserID     uuid.UUID
	Pagination pagination.Params
}

// ListConversations pages through the user's conversations, most recently
// active first.
func (r *Repository) ListConversations(ctx context.Context, query conversationsListQuery) ([]models.Conversation, string, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Preload("Buyer").
		Preload("Farmer").
		Where("buyer_id = ? OR farmer_id = ?", query.UserID, query.UserID)
	if cursor != nil {
		qb = qb.Where("(last_message_at < ?) OR (last_message_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Conversation
	if err := qb.Order("last_message_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.LastMessageAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}

type messagesListQuery struct {
	ConversationID uuid.UUID
	Pagination     pagination.Params
}

// ListMessages pages through a conversation newest first.
func (r *Repository) ListMessages(ctx context.Context, query messagesListQuery) ([]models.Message, string, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ?", query.ConversationID)
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Message
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}
