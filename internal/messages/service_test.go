package messages

import (
	"context"
	"fmt"
	"testing"

	"github.com/dmuriuki/agrimarket-backend/internal/notifications"
	"github.com/dmuriuki/agrimarket-backend/internal/users"
	"github.com/dmuriuki/agrimarket-backend/pkg/db"
	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	pkgerrors "github.com/dmuriuki/agrimarket-backend/pkg/errors"
	"github.com/dmuriuki/agrimarket-backend/pkg/outbox"
	"github.com/dmuriuki/agrimarket-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMessagesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  county TEXT,
  bio TEXT,
  avatar_url TEXT,
  rating NUMERIC NOT NULL DEFAULT 0,
  rating_count INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS conversations (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  farmer_id TEXT NOT NULL,
  product_id TEXT,
  last_message_at DATETIME NOT NULL,
  created_at DATETIME,
  UNIQUE (buyer_id, farmer_id, product_id)
);`,
		`CREATE TABLE IF NOT EXISTS messages (
  id TEXT PRIMARY KEY,
  conversation_id TEXT NOT NULL,
  sender_id TEXT NOT NULL,
  body TEXT NOT NULL,
  read_at DATETIME,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  ref_id TEXT,
  read_at DATETIME,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func buildMessageService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		Repo:          NewRepository(conn),
		Users:         users.NewRepository(conn),
		Notifications: notifications.NewRepository(conn),
		Tx:            db.FromGorm(conn),
		Outbox:        outbox.NewService(outbox.NewRepository(conn), nil),
	})
	require.NoError(t, err)
	return svc
}

func mustCreateUser(t *testing.T, conn *gorm.DB, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("%s_%s@example.com", role, uuid.NewString()),
		PasswordHash: "hash",
		Role:         role,
		FirstName:    "Chat",
		LastName:     "Tester",
		IsActive:     true,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func TestSendCreatesConversationAndNotifies(t *testing.T) {
	conn := setupMessagesTestDB(t)
	svc := buildMessageService(t, conn)
	ctx := context.Background()

	buyer := mustCreateUser(t, conn, enums.UserRoleBuyer)
	farmer := mustCreateUser(t, conn, enums.UserRoleFarmer)

	dto, err := svc.Send(ctx, buyer.ID, enums.UserRoleBuyer, SendMessageInput{
		RecipientID: farmer.ID,
		Body:        "Is the heifer still available?",
	})
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, dto.SenderID)
	assert.NotEqual(t, uuid.Nil, dto.ConversationID)

	var conversation models.Conversation
	require.NoError(t, conn.First(&conversation, "id = ?", dto.ConversationID).Error)
	assert.Equal(t, buyer.ID, conversation.BuyerID)
	assert.Equal(t, farmer.ID, conversation.FarmerID)

	var notificationCount int64
	require.NoError(t, conn.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", farmer.ID, enums.NotificationTypeMessage).
		Count(&notificationCount).Error)
	assert.Equal(t, int64(1), notificationCount)

	var eventCount int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).
		Where("event_type = ? AND aggregate_id = ?", enums.EventMessageSent, dto.ID).
		Count(&eventCount).Error)
	assert.Equal(t, int64(1), eventCount)
}

func TestSendReusesConversationBothDirections(t *testing.T) {
	conn := setupMessagesTestDB(t)
	svc := buildMessageService(t, conn)
	ctx := context.Background()

	buyer := mustCreateUser(t, conn, enums.UserRoleBuyer)
	farmer := mustCreateUser(t, conn, enums.UserRoleFarmer)

	first, err := svc.Send(ctx, buyer.ID, enums.UserRoleBuyer, SendMessageInput{
		RecipientID: farmer.ID,
		Body:        "Is the heifer still available?",
	})
	require.NoError(t, err)

	reply, err := svc.Send(ctx, farmer.ID, enums.UserRoleFarmer, SendMessageInput{
		RecipientID: buyer.ID,
		Body:        "Yes, two left.",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, reply.ConversationID)

	var conversationCount int64
	require.NoError(t, conn.Model(&models.Conversation{}).Count(&conversationCount).Error)
	assert.Equal(t, int64(1), conversationCount)
}

func TestSendSeparatesConversationsPerProduct(t *testing.T) {
	conn := setupMessagesTestDB(t)
	svc := buildMessageService(t, conn)
	ctx := context.Background()

	buyer := mustCreateUser(t, conn, enums.UserRoleBuyer)
	farmer := mustCreateUser(t, conn, enums.UserRoleFarmer)
	productID := uuid.New()

	general, err := svc.Send(ctx, buyer.ID, enums.UserRoleBuyer, SendMessageInput{
		RecipientID: farmer.ID,
		Body:        "Hello",
	})
	require.NoError(t, err)

	anchored, err := svc.Send(ctx, buyer.ID, enums.UserRoleBuyer, SendMessageInput{
		RecipientID: farmer.ID,
		ProductID:   &productID,
		Body:        "About this listing",
	})
	require.NoError(t, err)
	assert.NotEqual(t, general.ConversationID, anchored.ConversationID)
}

func TestSendRejectsSameRolePair(t *testing.T) {
	conn := setupMessagesTestDB(t)
	svc := buildMessageService(t, conn)
	ctx := context.Background()

	buyer := mustCreateUser(t, conn, enums.UserRoleBuyer)
	otherBuyer := mustCreateUser(t, conn, enums.UserRoleBuyer)

	_, err := svc.Send(ctx, buyer.ID, enums.UserRoleBuyer, SendMessageInput{
		RecipientID: otherBuyer.ID,
		Body:        "Hey",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Send(ctx, buyer.ID, enums.UserRoleBuyer, SendMessageInput{
		RecipientID: buyer.ID,
		Body:        "Hey",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Send(ctx, buyer.ID, enums.UserRoleBuyer, SendMessageInput{
		RecipientID: uuid.New(),
		Body:        "Hey",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestListMessagesMarksIncomingRead(t *testing.T) {
	conn := setupMessagesTestDB(t)
	svc := buildMessageService(t, conn)
	ctx := context.Background()

	buyer := mustCreateUser(t, conn, enums.UserRoleBuyer)
	farmer := mustCreateUser(t, conn, enums.UserRoleFarmer)

	sent, err := svc.Send(ctx, buyer.ID, enums.UserRoleBuyer, SendMessageInput{
		RecipientID: farmer.ID,
		Body:        "Is the heifer still available?",
	})
	require.NoError(t, err)

	// The farmer sees one unread conversation before opening it.
	conversations, err := svc.ListConversations(ctx, ListConversationsInput{UserID: farmer.ID})
	require.NoError(t, err)
	require.Len(t, conversations.Conversations, 1)
	assert.Equal(t, int64(1), conversations.Conversations[0].UnreadCount)

	page, err := svc.ListMessages(ctx, ListMessagesInput{
		UserID:         farmer.ID,
		ConversationID: sent.ConversationID,
		Pagination:     pagination.Params{Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	require.NotNil(t, page.Messages[0].ReadAt)

	conversations, err = svc.ListConversations(ctx, ListConversationsInput{UserID: farmer.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), conversations.Conversations[0].UnreadCount)

	stranger := mustCreateUser(t, conn, enums.UserRoleBuyer)
	_, err = svc.ListMessages(ctx, ListMessagesInput{
		UserID:         stranger.ID,
		ConversationID: sent.ConversationID,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}
