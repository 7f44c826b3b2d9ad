package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	pkgerrors "github.com/dmuriuki/agrimarket-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Line is one requested product/quantity pair.
type Line struct {
	ProductID uuid.UUID
	Quantity  int
}

// Snapshot captures the product state observed during validation. Order
// placement snapshots these values onto order items.
type Snapshot struct {
	ProductID uuid.UUID
	SellerID  uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Unit      enums.ProductUnit
}

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service validates requested lines against live listings. The checks re-run
// inside the order transaction via conditional decrements; this pass exists to
// fail fast with a precise error before any write.
type Service interface {
	Validate(ctx context.Context, lines []Line) ([]Snapshot, error)
}

type service struct {
	products productReader
}

// NewService wires the inventory guard.
func NewService(products productReader) (Service, error) {
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product reader required")
	}
	return &service{products: products}, nil
}

func (s *service) Validate(ctx context.Context, lines []Line) ([]Snapshot, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}

	seen := make(map[uuid.UUID]struct{}, len(lines))
	snapshots := make([]Snapshot, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		if _, dup := seen[line.ProductID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in order")
		}
		seen[line.ProductID] = struct{}{}

		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !product.IsAvailable {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product unavailable")
		}
		if product.Quantity < line.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeOutOfStock,
				fmt.Sprintf("insufficient stock for %s", product.Name))
		}

		snapshots = append(snapshots, Snapshot{
			ProductID: product.ID,
			SellerID:  product.SellerID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Unit:      product.Unit,
		})
	}
	return snapshots, nil
}
