package products

import (
	"context"
	"errors"
	"strings"

	"github.com/dmuriuki/agrimarket-backend/pkg/db"
	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	pkgerrors "github.com/dmuriuki/agrimarket-backend/pkg/errors"
	"github.com/dmuriuki/agrimarket-backend/pkg/outbox"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Service exposes farmer listing management plus the public catalogue reads.
type Service interface {
	Create(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, sellerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, sellerID, productID uuid.UUID) error
	Get(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	outbox   outboxEmitter
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient *db.Client, emitter outboxEmitter) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product repository required")
	}
	if dbClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox service required")
	}
	return &service{repo: repo, dbClient: dbClient, outbox: emitter}, nil
}

// Create inserts the listing with its images and queues a created event.
func (s *service) Create(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	var createdID uuid.UUID
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product := &models.Product{
			SellerID:    sellerID,
			Name:        strings.TrimSpace(input.Name),
			Description: input.Description,
			Category:    input.Category,
			Breed:       input.Breed,
			Price:       input.Price,
			Unit:        input.Unit,
			Quantity:    input.Quantity,
			IsAvailable: input.Quantity > 0,
			Location:    input.Location,
			Tags:        pq.StringArray(input.Tags),
		}

		created, err := txRepo.Create(ctx, product)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product")
		}
		createdID = created.ID

		if len(input.Images) > 0 {
			if err := txRepo.ReplaceImages(ctx, created.ID, buildImageRows(created.ID, input.Images)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace product images")
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProductCreated,
			AggregateType: enums.AggregateProduct,
			AggregateID:   created.ID,
			Actor:         &outbox.ActorRef{UserID: sellerID, Role: enums.UserRoleFarmer},
			Data: map[string]any{
				"product_id": created.ID,
				"seller_id":  sellerID,
				"name":       created.Name,
				"category":   created.Category,
			},
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	return s.Get(ctx, createdID)
}

// Update mutates an existing listing owned by the seller.
func (s *service) Update(ctx context.Context, sellerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadOwned(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}
	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		applyUpdateToProduct(product, input)
		if _, err := txRepo.Update(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}

		if input.Images != nil {
			if err := txRepo.ReplaceImages(ctx, product.ID, buildImageRows(product.ID, *input.Images)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace product images")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	return s.Get(ctx, product.ID)
}

// Delete soft-deletes the listing and queues a deleted event.
func (s *service) Delete(ctx context.Context, sellerID, productID uuid.UUID) error {
	product, err := s.loadOwned(ctx, sellerID, productID)
	if err != nil {
		return err
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.SoftDelete(ctx, product.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProductDeleted,
			AggregateType: enums.AggregateProduct,
			AggregateID:   product.ID,
			Actor:         &outbox.ActorRef{UserID: sellerID, Role: enums.UserRoleFarmer},
			Data: map[string]any{
				"product_id": product.ID,
				"seller_id":  sellerID,
			},
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// Get returns the public detail view for a single listing.
func (s *service) Get(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.GetDetail(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return NewProductDTO(product), nil
}

// List pages through the catalogue or a farmer's own listings.
func (s *service) List(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	rows, next, err := s.repo.List(ctx, productListQuery{
		Pagination: input.Pagination,
		Filters:    input.Filters,
		SellerID:   input.SellerID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "list products")
	}

	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewProductDTO(&rows[i]))
	}
	return &ProductListResult{Products: dtos, NextCursor: next}, nil
}

func (s *service) loadOwned(ctx context.Context, sellerID, productID uuid.UUID) (*models.Product, error) {
	if sellerID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller and product ids required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to seller")
	}
	return product, nil
}

func validateCreateInput(input CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product category")
	}
	if !input.Unit.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product unit")
	}
	if !input.Price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}
	return nil
}

func validateUpdateInput(input UpdateProductInput) error {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
	}
	if input.Category != nil && !input.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product category")
	}
	if input.Unit != nil && !input.Unit.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product unit")
	}
	if input.Price != nil && !input.Price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Quantity != nil && *input.Quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}
	return nil
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Breed != nil {
		product.Breed = input.Breed
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Unit != nil {
		product.Unit = *input.Unit
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
		product.IsAvailable = *input.Quantity > 0
	}
	if input.Location != nil {
		product.Location = input.Location
	}
	if input.Tags != nil {
		product.Tags = pq.StringArray(append([]string(nil), (*input.Tags)...))
	}
}

func buildImageRows(productID uuid.UUID, images []ProductImageInput) []models.ProductImage {
	rows := make([]models.ProductImage, 0, len(images))
	for idx, img := range images {
		rows = append(rows, models.ProductImage{
			ProductID: productID,
			MediaID:   img.MediaID,
			URL:       img.URL,
			Position:  idx,
		})
	}
	return rows
}
