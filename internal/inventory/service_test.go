package inventory

import (
	"context"
	"testing"

	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	pkgerrors "github.com/dmuriuki/agrimarket-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeProductReader struct {
	products map[uuid.UUID]*models.Product
}

func (f *fakeProductReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := f.products[id]; ok {
		return product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestProduct(quantity int, available bool) *models.Product {
	return &models.Product{
		ID:          uuid.New(),
		SellerID:    uuid.New(),
		Name:        "Grade Cow",
		Category:    enums.ProductCategoryLivestock,
		Price:       decimal.NewFromInt(60000),
		Unit:        enums.ProductUnitPiece,
		Quantity:    quantity,
		IsAvailable: available,
	}
}

func newGuard(t *testing.T, products ...*models.Product) Service {
	t.Helper()
	reader := &fakeProductReader{products: map[uuid.UUID]*models.Product{}}
	for _, p := range products {
		reader.products[p.ID] = p
	}
	svc, err := NewService(reader)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestValidateReturnsSnapshots(t *testing.T) {
	product := newTestProduct(5, true)
	svc := newGuard(t, product)

	snapshots, err := svc.Validate(context.Background(), []Line{{ProductID: product.ID, Quantity: 3}})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snapshots))
	}
	snap := snapshots[0]
	if snap.SellerID != product.SellerID {
		t.Fatalf("expected seller %s, got %s", product.SellerID, snap.SellerID)
	}
	if !snap.UnitPrice.Equal(product.Price) {
		t.Fatalf("expected unit price %s, got %s", product.Price, snap.UnitPrice)
	}
	if snap.Name != product.Name {
		t.Fatalf("expected name snapshot %q, got %q", product.Name, snap.Name)
	}
}

func TestValidateOutOfStock(t *testing.T) {
	product := newTestProduct(2, true)
	svc := newGuard(t, product)

	_, err := svc.Validate(context.Background(), []Line{{ProductID: product.ID, Quantity: 3}})
	if err == nil {
		t.Fatal("expected out of stock error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeOutOfStock {
		t.Fatalf("expected out of stock code, got %v", err)
	}
}

func TestValidateUnavailableProduct(t *testing.T) {
	product := newTestProduct(5, false)
	svc := newGuard(t, product)

	_, err := svc.Validate(context.Background(), []Line{{ProductID: product.ID, Quantity: 1}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestValidateMissingProduct(t *testing.T) {
	svc := newGuard(t)

	_, err := svc.Validate(context.Background(), []Line{{ProductID: uuid.New(), Quantity: 1}})
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}

func TestValidateRejectsBadLines(t *testing.T) {
	product := newTestProduct(5, true)
	svc := newGuard(t, product)

	cases := map[string][]Line{
		"empty":     {},
		"zeroQty":   {{ProductID: product.ID, Quantity: 0}},
		"nilID":     {{Quantity: 1}},
		"duplicate": {{ProductID: product.ID, Quantity: 1}, {ProductID: product.ID, Quantity: 2}},
	}
	for name, lines := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Validate(context.Background(), lines)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation code, got %v", err)
			}
		})
	}
}
