package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
)

// Product represents a farmer's listing. Rows are soft deleted so orders and
// reviews keep a valid reference after the listing is pulled.
type Product struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID    uuid.UUID             `gorm:"column:seller_id;type:uuid;not null;index"`
	Name        string                `gorm:"column:name;not null"`
	Description *string               `gorm:"column:description"`
	Category    enums.ProductCategory `gorm:"column:category;type:product_category;not null"`
	Breed       *string               `gorm:"column:breed"`
	Price       decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	Unit        enums.ProductUnit     `gorm:"column:unit;type:product_unit;not null"`
	Quantity    int                   `gorm:"column:quantity;not null;default:0"`
	IsAvailable bool                  `gorm:"column:is_available;not null;default:false"`
	Location    *string               `gorm:"column:location"`
	Tags        pq.StringArray        `gorm:"column:tags;type:text[]"`
	Rating      decimal.Decimal       `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	RatingCount int                   `gorm:"column:rating_count;not null;default:0"`
	Images      []ProductImage        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Seller      *User                 `gorm:"foreignKey:SellerID"`
	DeletedAt   gorm.DeletedAt        `gorm:"column:deleted_at;index"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductImage links a product to an uploaded media object.
type ProductImage struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID  `gorm:"column:product_id;type:uuid;not null;index"`
	MediaID   *uuid.UUID `gorm:"column:media_id;type:uuid"`
	URL       string     `gorm:"column:url;not null"`
	Position  int        `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
