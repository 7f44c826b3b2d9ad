package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	"github.com/dmuriuki/agrimarket-backend/pkg/pagination"
)

// OrderItemInput is one requested product line.
type OrderItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// PlaceOrderInput is the payload for creating an order.
type PlaceOrderInput struct {
	Items           []OrderItemInput    `json:"items" validate:"required,min=1,dive"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method" validate:"required"`
	ShippingName    string              `json:"shipping_name" validate:"required"`
	ShippingPhone   string              `json:"shipping_phone" validate:"required"`
	ShippingCounty  string              `json:"shipping_county" validate:"required"`
	ShippingAddress string              `json:"shipping_address" validate:"required"`
	Notes           *string             `json:"notes,omitempty"`
}

// UpdateStatusInput carries a seller's status transition request.
type UpdateStatusInput struct {
	Status enums.OrderStatus `json:"status" validate:"required"`
}

// PartySummary is the counterpart data embedded in order reads.
type PartySummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     *string   `json:"phone,omitempty"`
	County    *string   `json:"county,omitempty"`
}

// OrderItemDTO is the snapshotted line returned to clients.
type OrderItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderDTO is the transport shape for an order.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     int64               `json:"order_number"`
	BuyerID         uuid.UUID           `json:"buyer_id"`
	SellerID        uuid.UUID           `json:"seller_id"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	Total           decimal.Decimal     `json:"total"`
	ShippingName    string              `json:"shipping_name"`
	ShippingPhone   string              `json:"shipping_phone"`
	ShippingCounty  string              `json:"shipping_county"`
	ShippingAddress string              `json:"shipping_address"`
	Notes           *string             `json:"notes,omitempty"`
	Items           []OrderItemDTO      `json:"items"`
	Buyer           *PartySummary       `json:"buyer,omitempty"`
	Seller          *PartySummary       `json:"seller,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// ListOrdersInput configures the role-filtered order listing.
type ListOrdersInput struct {
	UserID     uuid.UUID
	Role       enums.UserRole
	Status     *enums.OrderStatus
	Pagination pagination.Params
}

// OrderListResult wraps a page of orders plus the next cursor.
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// NewOrderDTO converts a loaded model into its transport shape.
func NewOrderDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}

	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal,
		})
	}

	dto := &OrderDTO{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		BuyerID:         order.BuyerID,
		SellerID:        order.SellerID,
		Status:          order.Status,
		PaymentStatus:   order.PaymentStatus,
		PaymentMethod:   order.PaymentMethod,
		Total:           order.Total,
		ShippingName:    order.ShippingName,
		ShippingPhone:   order.ShippingPhone,
		ShippingCounty:  order.ShippingCounty,
		ShippingAddress: order.ShippingAddress,
		Notes:           order.Notes,
		Items:           items,
		DeliveredAt:     order.DeliveredAt,
		CancelledAt:     order.CancelledAt,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	dto.Buyer = newPartySummary(order.Buyer)
	dto.Seller = newPartySummary(order.Seller)
	return dto
}

func newPartySummary(user *models.User) *PartySummary {
	if user == nil {
		return nil
	}
	return &PartySummary{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		County:    user.County,
	}
}
