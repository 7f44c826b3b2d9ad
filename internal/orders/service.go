package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmuriuki/agrimarket-backend/internal/inventory"
	"github.com/dmuriuki/agrimarket-backend/internal/notifications"
	"github.com/dmuriuki/agrimarket-backend/internal/products"
	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	pkgerrors "github.com/dmuriuki/agrimarket-backend/pkg/errors"
	"github.com/dmuriuki/agrimarket-backend/pkg/metrics"
	"github.com/dmuriuki/agrimarket-backend/pkg/outbox"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTxRetry(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines the order lifecycle operations.
type Service interface {
	Place(ctx context.Context, buyerID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, sellerID, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error)
	Cancel(ctx context.Context, buyerID, orderID uuid.UUID) (*OrderDTO, error)
	Get(ctx context.Context, userID uuid.UUID, role enums.UserRole, orderID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, input ListOrdersInput) (*OrderListResult, error)
}

// ServiceParams bundles the order service dependencies.
type ServiceParams struct {
	Repo          *Repository
	Products      *products.Repository
	Guard         inventory.Service
	Notifications notifications.Repository
	Tx            txRunner
	Outbox        outboxPublisher
	Metrics       *metrics.MarketplaceMetrics
}

type service struct {
	repo          *Repository
	products      *products.Repository
	guard         inventory.Service
	notifications notifications.Repository
	tx            txRunner
	outbox        outboxPublisher
	metrics       *metrics.MarketplaceMetrics
}

// NewService builds the order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "products repository required")
	}
	if params.Guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory guard required")
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
		products:      params.Products,
		guard:         params.Guard,
		notifications: params.Notifications,
		tx:            params.Tx,
		outbox:        params.Outbox,
		metrics:       params.Metrics,
	}, nil
}

// Place validates the requested lines, then reserves stock, writes the order
// with snapshotted prices, notifies the seller, and queues the placed event in
// a single retried transaction.
func (s *service) Place(ctx context.Context, buyerID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	if err := validatePlaceInput(input); err != nil {
		return nil, err
	}

	lines := make([]inventory.Line, 0, len(input.Items))
	for _, item := range input.Items {
		lines = append(lines, inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	snapshots, err := s.guard.Validate(ctx, lines)
	if err != nil {
		s.countRejection(err)
		return nil, err
	}

	sellerID := snapshots[0].SellerID
	for _, snap := range snapshots {
		if snap.SellerID != sellerID {
			s.metrics.IncOrderRejected("mixed_sellers")
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order items span multiple sellers")
		}
	}
	if sellerID == buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot order own products")
	}

	var orderID uuid.UUID
	err = s.tx.WithTxRetry(ctx, func(tx *gorm.DB) error {
		txProducts := s.products.WithTx(tx)

		items := make([]models.OrderItem, 0, len(input.Items))
		total := decimal.Zero
		for i, item := range input.Items {
			ok, err := txProducts.DecrementQuantity(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeOutOfStock,
					fmt.Sprintf("insufficient stock for %s", snapshots[i].Name))
			}

			subtotal := snapshots[i].UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			items = append(items, models.OrderItem{
				ID:          uuid.New(),
				ProductID:   item.ProductID,
				ProductName: snapshots[i].Name,
				UnitPrice:   snapshots[i].UnitPrice,
				Quantity:    item.Quantity,
				Subtotal:    subtotal,
			})
			total = total.Add(subtotal)
		}

		order := &models.Order{
			ID:              uuid.New(),
			BuyerID:         buyerID,
			SellerID:        sellerID,
			Status:          enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusPending,
			PaymentMethod:   input.PaymentMethod,
			Total:           total,
			ShippingName:    strings.TrimSpace(input.ShippingName),
			ShippingPhone:   strings.TrimSpace(input.ShippingPhone),
			ShippingCounty:  strings.TrimSpace(input.ShippingCounty),
			ShippingAddress: strings.TrimSpace(input.ShippingAddress),
			Notes:           input.Notes,
			Items:           items,
		}
		if _, err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
		}
		orderID = order.ID

		if err := s.notifyInTx(ctx, tx, sellerID, enums.NotificationTypeOrder,
			"New order received",
			fmt.Sprintf("Order #%d has been placed", order.OrderNumber),
			order.ID); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: buyerID, Role: enums.UserRoleBuyer},
			Data: map[string]any{
				"order_id":  order.ID,
				"buyer_id":  buyerID,
				"seller_id": sellerID,
				"total":     total,
			},
		})
	})
	if err != nil {
		s.countRejection(err)
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}

	s.metrics.IncOrderPlaced()
	return s.loadDTO(ctx, orderID)
}

// UpdateStatus advances the order along the forward-only lifecycle. Only the
// owning seller may move it; cancellation restores stock.
func (s *service) UpdateStatus(ctx context.Context, sellerID, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	err := s.tx.WithTxRetry(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		order, err := txRepo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.SellerID != sellerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to seller")
		}
		if !order.Status.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
		}

		return s.applyTransition(ctx, tx, order, next, order.BuyerID, sellerID, enums.UserRoleFarmer)
	})
	if err != nil {
		return nil, err
	}
	return s.loadDTO(ctx, orderID)
}

// Cancel lets the buyer withdraw an order that is still pending.
func (s *service) Cancel(ctx context.Context, buyerID, orderID uuid.UUID) (*OrderDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	err := s.tx.WithTxRetry(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		order, err := txRepo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.BuyerID != buyerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to buyer")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be cancelled")
		}

		return s.applyTransition(ctx, tx, order, enums.OrderStatusCancelled, order.SellerID, buyerID, enums.UserRoleBuyer)
	})
	if err != nil {
		return nil, err
	}
	return s.loadDTO(ctx, orderID)
}

// Get returns the order detail to either party of the trade.
func (s *service) Get(ctx context.Context, userID uuid.UUID, role enums.UserRole, orderID uuid.UUID) (*OrderDTO, error) {
	if userID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and order ids required")
	}

	order, err := s.repo.GetDetail(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.BuyerID != userID && order.SellerID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	return NewOrderDTO(order), nil
}

// List pages through the caller's side of the order history.
func (s *service) List(ctx context.Context, input ListOrdersInput) (*OrderListResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status filter")
	}

	rows, next, err := s.repo.List(ctx, ordersListQuery{
		UserID:     input.UserID,
		Role:       input.Role,
		Status:     input.Status,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "list orders")
	}

	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewOrderDTO(&rows[i]))
	}
	return &OrderListResult{Orders: dtos, NextCursor: next}, nil
}

// applyTransition writes the status change, restores stock on cancellation,
// notifies the counterpart, and queues the outbox event, all on the caller's
// transaction.
func (s *service) applyTransition(ctx context.Context, tx *gorm.DB, order *models.Order, next enums.OrderStatus, recipientID, actorID uuid.UUID, actorRole enums.UserRole) error {
	now := time.Now().UTC()
	previous := order.Status
	order.Status = next

	switch next {
	case enums.OrderStatusDelivered:
		order.DeliveredAt = &now
		if order.PaymentMethod == enums.PaymentMethodCashOnDelivery && order.PaymentStatus == enums.PaymentStatusPending {
			order.PaymentStatus = enums.PaymentStatusPaid
		}
	case enums.OrderStatusCancelled:
		order.CancelledAt = &now
		txProducts := s.products.WithTx(tx)
		for _, item := range order.Items {
			if err := txProducts.RestoreQuantity(ctx, item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
			}
		}
	}

	if err := s.repo.WithTx(tx).Save(ctx, order); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	title := "Order update"
	message := fmt.Sprintf("Order #%d is now %s", order.OrderNumber, next)
	if next == enums.OrderStatusCancelled {
		title = "Order cancelled"
		message = fmt.Sprintf("Order #%d has been cancelled", order.OrderNumber)
	}
	if err := s.notifyInTx(ctx, tx, recipientID, enums.NotificationTypeOrder, title, message, order.ID); err != nil {
		return err
	}

	eventType := enums.EventOrderStatusChanged
	if next == enums.OrderStatusCancelled {
		eventType = enums.EventOrderCancelled
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         &outbox.ActorRef{UserID: actorID, Role: actorRole},
		Data: map[string]any{
			"order_id": order.ID,
			"from":     previous,
			"to":       next,
		},
	})
}

func (s *service) notifyInTx(ctx context.Context, tx *gorm.DB, recipientID uuid.UUID, kind enums.NotificationType, title, message string, refID uuid.UUID) error {
	ref := refID
	notification := &models.Notification{
		ID:      uuid.New(),
		UserID:  recipientID,
		Type:    kind,
		Title:   title,
		Message: message,
		RefID:   &ref,
	}
	if err := s.notifications.WithTx(tx).Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert notification")
	}
	return nil
}

func (s *service) loadDTO(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.GetDetail(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order detail")
	}
	return NewOrderDTO(order), nil
}

func (s *service) countRejection(err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		return
	}
	switch typed.Code() {
	case pkgerrors.CodeOutOfStock:
		s.metrics.IncOrderRejected("out_of_stock")
	case pkgerrors.CodeConflict:
		s.metrics.IncOrderRejected("conflict")
	}
}

func validatePlaceInput(input PlaceOrderInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	for _, field := range []string{input.ShippingName, input.ShippingPhone, input.ShippingCounty, input.ShippingAddress} {
		if strings.TrimSpace(field) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "shipping details required")
		}
	}
	return nil
}
