package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is an immutable buyer rating for a delivered order. The unique index
// over (order_id, buyer_id) is the backstop against duplicate submissions.
type Review struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_reviews_order_buyer"`
	BuyerID   uuid.UUID `gorm:"column:buyer_id;type:uuid;not null;uniqueIndex:idx_reviews_order_buyer"`
	SellerID  uuid.UUID `gorm:"column:seller_id;type:uuid;not null;index"`
	Rating    int       `gorm:"column:rating;not null"`
	Comment   *string   `gorm:"column:comment"`
	ImageURL  *string   `gorm:"column:image_url"`
	Buyer     *User     `gorm:"foreignKey:BuyerID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
