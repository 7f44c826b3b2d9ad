package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/pagination"
)

// CreateReviewInput is the payload for reviewing a delivered order.
type CreateReviewInput struct {
	OrderID   uuid.UUID `json:"order_id" validate:"required"`
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Comment   *string   `json:"comment,omitempty" validate:"omitempty,max=2000"`
	ImageURL  *string   `json:"image_url,omitempty" validate:"omitempty,url"`
}

// ReviewerSummary is the public slice of the review author.
type ReviewerSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

// ReviewDTO is the transport shape for a review.
type ReviewDTO struct {
	ID        uuid.UUID        `json:"id"`
	ProductID uuid.UUID        `json:"product_id"`
	OrderID   uuid.UUID        `json:"order_id"`
	SellerID  uuid.UUID        `json:"seller_id"`
	Rating    int              `json:"rating"`
	Comment   *string          `json:"comment,omitempty"`
	ImageURL  *string          `json:"image_url,omitempty"`
	Buyer     *ReviewerSummary `json:"buyer,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// ListByProductInput configures the public review listing.
type ListByProductInput struct {
	ProductID  uuid.UUID
	Pagination pagination.Params
}

// ReviewListResult wraps a page of reviews plus the next cursor.
type ReviewListResult struct {
	Reviews    []ReviewDTO `json:"reviews"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// NewReviewDTO converts a loaded model into its transport shape.
func NewReviewDTO(review *models.Review) *ReviewDTO {
	if review == nil {
		return nil
	}
	dto := &ReviewDTO{
		ID:        review.ID,
		ProductID: review.ProductID,
		OrderID:   review.OrderID,
		SellerID:  review.SellerID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		ImageURL:  review.ImageURL,
		CreatedAt: review.CreatedAt,
	}
	if review.Buyer != nil {
		dto.Buyer = &ReviewerSummary{
			ID:        review.Buyer.ID,
			FirstName: review.Buyer.FirstName,
			LastName:  review.Buyer.LastName,
			AvatarURL: review.Buyer.AvatarURL,
		}
	}
	return dto
}
