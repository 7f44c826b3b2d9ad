package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	Role        enums.UserRole  `json:"role"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Phone       *string         `json:"phone,omitempty"`
	County      *string         `json:"county,omitempty"`
	Bio         *string         `json:"bio,omitempty"`
	AvatarURL   *string         `json:"avatar_url,omitempty"`
	Rating      decimal.Decimal `json:"rating"`
	RatingCount int             `json:"rating_count"`
	IsActive    bool            `json:"is_active"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	Role         enums.UserRole
	FirstName    string
	LastName     string
	Phone        *string
	County       *string
}

// UpdateProfileDTO carries the mutable profile fields. Nil pointers leave the
// stored value untouched.
type UpdateProfileDTO struct {
	FirstName *string
	LastName  *string
	Phone     *string
	County    *string
	Bio       *string
	AvatarURL *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		County:      u.County,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		Rating:      u.Rating,
		RatingCount: u.RatingCount,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Role:         c.Role,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Phone:        c.Phone,
		County:       c.County,
		IsActive:     true,
	}
}
