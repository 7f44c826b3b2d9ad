package messages

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmuriuki/agrimarket-backend/internal/notifications"
	"github.com/dmuriuki/agrimarket-backend/internal/users"
	"github.com/dmuriuki/agrimarket-backend/pkg/db"
	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	pkgerrors "github.com/dmuriuki/agrimarket-backend/pkg/errors"
	"github.com/dmuriuki/agrimarket-backend/pkg/outbox"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTxRetry(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines the chat operations.
type Service interface {
	Send(ctx context.Context, senderID uuid.UUID, senderRole enums.UserRole, input SendMessageInput) (*MessageDTO, error)
	ListConversations(ctx context.Context, input ListConversationsInput) (*ConversationListResult, error)
	ListMessages(ctx context.Context, input ListMessagesInput) (*MessageListResult, error)
}

// ServiceParams bundles the messaging dependencies.
type ServiceParams struct {
	Repo          *Repository
	Users         *users.Repository
	Notifications notifications.Repository
	Tx            txRunner
	Outbox        outboxPublisher
}

type service struct {
	repo          *Repository
	users         *users.Repository
	notifications notifications.Repository
	tx            txRunner
	outbox        outboxPublisher
}

// NewService builds the messaging service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "messages repository required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.Notifications == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox publisher required")
	}
	return &service{
		repo:          params.Repo,
		users:         params.Users,
		notifications: params.Notifications,
		tx:            params.Tx,
		outbox:        params.Outbox,
	}, nil
}

// Send finds or creates the buyer/farmer conversation, appends the message,
// bumps the conversation clock and notifies the counterpart in one retried
// transaction.
func (s *service) Send(ctx context.Context, senderID uuid.UUID, senderRole enums.UserRole, input SendMessageInput) (*MessageDTO, error) {
	if senderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sender identity missing")
	}
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body required")
	}
	if input.RecipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient required")
	}
	if input.RecipientID == senderID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot message yourself")
	}

	recipient, err := s.users.FindByID(ctx, input.RecipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "recipient not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipient")
	}
	if !recipient.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient not found")
	}

	buyerID, farmerID, err := conversationSides(senderID, senderRole, recipient)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ID:       uuid.New(),
		SenderID: senderID,
		Body:     body,
	}

	err = s.tx.WithTxRetry(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		now := time.Now().UTC()

		conversation, err := txRepo.FindConversation(ctx, buyerID, farmerID, input.ProductID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load conversation")
			}
			conversation = &models.Conversation{
				ID:            uuid.New(),
				BuyerID:       buyerID,
				FarmerID:      farmerID,
				ProductID:     input.ProductID,
				LastMessageAt: now,
			}
			if err := txRepo.CreateConversation(ctx, conversation); err != nil {
				// A concurrent first message may have won the insert race.
				if db.IsUniqueViolation(err, "idx_conversations_pair") {
					conversation, err = txRepo.FindConversation(ctx, buyerID, farmerID, input.ProductID)
					if err != nil {
						return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload conversation")
					}
				} else {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert conversation")
				}
			}
		}

		message.ConversationID = conversation.ID
		if err := txRepo.CreateMessage(ctx, message); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert message")
		}
		if err := txRepo.TouchConversation(ctx, conversation.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch conversation")
		}

		ref := conversation.ID
		notification := &models.Notification{
			ID:      uuid.New(),
			UserID:  input.RecipientID,
			Type:    enums.NotificationTypeMessage,
			Title:   "New message",
			Message: "You have received a new message",
			RefID:   &ref,
		}
		if err := s.notifications.WithTx(tx).Create(ctx, notification); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert notification")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventMessageSent,
			AggregateType: enums.AggregateMessage,
			AggregateID:   message.ID,
			Actor:         &outbox.ActorRef{UserID: senderID, Role: senderRole},
			Data: map[string]any{
				"message_id":      message.ID,
				"conversation_id": conversation.ID,
				"recipient_id":    input.RecipientID,
			},
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send message")
	}

	return NewMessageDTO(message), nil
}

// ListConversations pages through the caller's conversations with unread
// counts attached.
func (s *service) ListConversations(ctx context.Context, input ListConversationsInput) (*ConversationListResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	rows, next, err := s.repo.ListConversations(ctx, conversationsListQuery{
		UserID:     input.UserID,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "list conversations")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}
	unread, err := s.repo.UnreadCounts(ctx, ids, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread messages")
	}

	dtos := make([]ConversationDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewConversationDTO(&rows[i], unread[rows[i].ID]))
	}
	return &ConversationListResult{Conversations: dtos, NextCursor: next}, nil
}

// ListMessages pages through one conversation and marks incoming messages
// read for the caller.
func (s *service) ListMessages(ctx context.Context, input ListMessagesInput) (*MessageListResult, error) {
	if input.UserID == uuid.Nil || input.ConversationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and conversation ids required")
	}

	conversation, err := s.repo.FindConversationByID(ctx, input.ConversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "conversation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load conversation")
	}
	if conversation.BuyerID != input.UserID && conversation.FarmerID != input.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "conversation does not belong to user")
	}

	if _, err := s.repo.MarkIncomingRead(ctx, input.ConversationID, input.UserID, time.Now().UTC()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark messages read")
	}

	rows, next, err := s.repo.ListMessages(ctx, messagesListQuery{
		ConversationID: input.ConversationID,
		Pagination:     input.Pagination,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "list messages")
	}

	dtos := make([]MessageDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewMessageDTO(&rows[i]))
	}
	return &MessageListResult{Messages: dtos, NextCursor: next}, nil
}

// conversationSides resolves which participant sits on which side of the
// buyer/farmer pair.
func conversationSides(senderID uuid.UUID, senderRole enums.UserRole, recipient *models.User) (buyerID, farmerID uuid.UUID, err error) {
	switch {
	case senderRole == enums.UserRoleBuyer && recipient.Role == enums.UserRoleFarmer:
		return senderID, recipient.ID, nil
	case senderRole == enums.UserRoleFarmer && recipient.Role == enums.UserRoleBuyer:
		return recipient.ID, senderID, nil
	default:
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "conversation requires a buyer and a farmer")
	}
}
