package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
)

// User represents the canonical identity entity for both farmers and buyers.
type User struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string          `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Role         enums.UserRole  `gorm:"column:role;type:user_role;not null"`
	FirstName    string          `gorm:"column:first_name;not null"`
	LastName     string          `gorm:"column:last_name;not null"`
	Phone        *string         `gorm:"column:phone"`
	County       *string         `gorm:"column:county"`
	Bio          *string         `gorm:"column:bio"`
	AvatarURL    *string         `gorm:"column:avatar_url"`
	Rating       decimal.Decimal `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	RatingCount  int             `gorm:"column:rating_count;not null;default:0"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time      `gorm:"column:last_login_at"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
