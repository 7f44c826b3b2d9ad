package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	"github.com/dmuriuki/agrimarket-backend/pkg/pagination"
)

// ProductDTO is the transport shape for a single listing.
type ProductDTO struct {
	ID          uuid.UUID             `json:"id"`
	SellerID    uuid.UUID             `json:"seller_id"`
	Name        string                `json:"name"`
	Description *string               `json:"description,omitempty"`
	Category    enums.ProductCategory `json:"category"`
	Breed       *string               `json:"breed,omitempty"`
	Price       decimal.Decimal       `json:"price"`
	Unit        enums.ProductUnit     `json:"unit"`
	Quantity    int                   `json:"quantity"`
	IsAvailable bool                  `json:"is_available"`
	Location    *string               `json:"location,omitempty"`
	Tags        []string              `json:"tags"`
	Rating      decimal.Decimal       `json:"rating"`
	RatingCount int                   `json:"rating_count"`
	Images      []ProductImageDTO     `json:"images"`
	Seller      *SellerSummary        `json:"seller,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// ProductImageDTO exposes an attached image ordered by position.
type ProductImageDTO struct {
	ID       uuid.UUID  `json:"id"`
	MediaID  *uuid.UUID `json:"media_id,omitempty"`
	URL      string     `json:"url"`
	Position int        `json:"position"`
}

// SellerSummary is the minimal seller data embedded in product reads.
type SellerSummary struct {
	ID          uuid.UUID       `json:"id"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	County      *string         `json:"county,omitempty"`
	Rating      decimal.Decimal `json:"rating"`
	RatingCount int             `json:"rating_count"`
}

// ProductImageInput references an uploaded media object for a listing image.
type ProductImageInput struct {
	MediaID *uuid.UUID `json:"media_id,omitempty"`
	URL     string     `json:"url" validate:"required,url"`
}

// CreateProductInput holds the validated payload to create a listing.
type CreateProductInput struct {
	Name        string
	Description *string
	Category    enums.ProductCategory
	Breed       *string
	Price       decimal.Decimal
	Unit        enums.ProductUnit
	Quantity    int
	Location    *string
	Tags        []string
	Images      []ProductImageInput
}

// UpdateProductInput holds optional mutation values for a listing.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Category    *enums.ProductCategory
	Breed       *string
	Price       *decimal.Decimal
	Unit        *enums.ProductUnit
	Quantity    *int
	Location    *string
	Tags        *[]string
	Images      *[]ProductImageInput
}

// ProductListFilters narrows the public catalogue listing.
type ProductListFilters struct {
	Category *enums.ProductCategory
	County   *string
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
	Query    string
}

// ListProductsInput configures catalogue pagination and filtering. SellerID
// switches to the farmer's own view, which includes unavailable listings.
type ListProductsInput struct {
	Pagination pagination.Params
	Filters    ProductListFilters
	SellerID   *uuid.UUID
}

// ProductListResult wraps a page of listings plus the next cursor.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// NewProductDTO converts a loaded model into its transport shape.
func NewProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}

	images := make([]ProductImageDTO, 0, len(product.Images))
	for _, img := range product.Images {
		images = append(images, ProductImageDTO{
			ID:       img.ID,
			MediaID:  img.MediaID,
			URL:      img.URL,
			Position: img.Position,
		})
	}

	dto := &ProductDTO{
		ID:          product.ID,
		SellerID:    product.SellerID,
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		Breed:       product.Breed,
		Price:       product.Price,
		Unit:        product.Unit,
		Quantity:    product.Quantity,
		IsAvailable: product.IsAvailable,
		Location:    product.Location,
		Tags:        append([]string(nil), product.Tags...),
		Rating:      product.Rating,
		RatingCount: product.RatingCount,
		Images:      images,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}

	if product.Seller != nil {
		dto.Seller = &SellerSummary{
			ID:          product.Seller.ID,
			FirstName:   product.Seller.FirstName,
			LastName:    product.Seller.LastName,
			County:      product.Seller.County,
			Rating:      product.Seller.Rating,
			RatingCount: product.Seller.RatingCount,
		}
	}

	return dto
}
