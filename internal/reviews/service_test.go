package reviews

import (
	"context"
	"testing"

	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	pkgerrors "github.com/dmuriuki/agrimarket-backend/pkg/errors"
	"github.com/dmuriuki/agrimarket-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReviewWritesAggregates(t *testing.T) {
	conn := setupReviewsTestDB(t)
	svc := buildReviewService(t, conn)
	ctx := context.Background()

	seller := mustCreateUser(t, conn, enums.UserRoleFarmer)
	buyer := mustCreateUser(t, conn, enums.UserRoleBuyer)
	product := mustCreateListing(t, conn, seller.ID, "Kienyeji Chicken")
	order := mustCreateOrderForProduct(t, conn, buyer.ID, product, enums.OrderStatusDelivered)

	comment := "Healthy birds, fast delivery"
	dto, err := svc.Create(ctx, buyer.ID, CreateReviewInput{
		OrderID:   order.ID,
		ProductID: product.ID,
		Rating:    4,
		Comment:   &comment,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, dto.Rating)
	assert.Equal(t, seller.ID, dto.SellerID)

	var reloadedProduct models.Product
	require.NoError(t, conn.First(&reloadedProduct, "id = ?", product.ID).Error)
	assert.True(t, reloadedProduct.Rating.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, 1, reloadedProduct.RatingCount)

	var reloadedSeller models.User
	require.NoError(t, conn.First(&reloadedSeller, "id = ?", seller.ID).Error)
	assert.True(t, reloadedSeller.Rating.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, 1, reloadedSeller.RatingCount)

	var notificationCount int64
	require.NoError(t, conn.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", seller.ID, enums.NotificationTypeReview).
		Count(&notificationCount).Error)
	assert.Equal(t, int64(1), notificationCount)

	var eventCount int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).
		Where("event_type = ? AND aggregate_id = ?", enums.EventReviewCreated, dto.ID).
		Count(&eventCount).Error)
	assert.Equal(t, int64(1), eventCount)
}

func TestCreateReviewAveragesAcrossOrders(t *testing.T) {
	conn := setupReviewsTestDB(t)
	svc := buildReviewService(t, conn)
	ctx := context.Background()

	seller := mustCreateUser(t, conn, enums.UserRoleFarmer)
	product := mustCreateListing(t, conn, seller.ID, "Kienyeji Chicken")

	for _, rating := range []int{3, 3, 4} {
		buyer := mustCreateUser(t, conn, enums.UserRoleBuyer)
		order := mustCreateOrderForProduct(t, conn, buyer.ID, product, enums.OrderStatusDelivered)
		_, err := svc.Create(ctx, buyer.ID, CreateReviewInput{
			OrderID:   order.ID,
			ProductID: product.ID,
			Rating:    rating,
		})
		require.NoError(t, err)
	}

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 3, reloaded.RatingCount)
	assert.True(t, reloaded.Rating.Equal(decimal.RequireFromString("3.33")),
		"expected 3.33, got %s", reloaded.Rating)

	var reloadedSeller models.User
	require.NoError(t, conn.First(&reloadedSeller, "id = ?", seller.ID).Error)
	assert.Equal(t, 3, reloadedSeller.RatingCount)
	assert.True(t, reloadedSeller.Rating.Equal(decimal.RequireFromString("3.33")))
}

func TestCreateReviewRequiresDeliveredOwnedOrder(t *testing.T) {
	conn := setupReviewsTestDB(t)
	svc := buildReviewService(t, conn)
	ctx := context.Background()

	seller := mustCreateUser(t, conn, enums.UserRoleFarmer)
	buyer := mustCreateUser(t, conn, enums.UserRoleBuyer)
	product := mustCreateListing(t, conn, seller.ID, "Kienyeji Chicken")

	pendingOrder := mustCreateOrderForProduct(t, conn, buyer.ID, product, enums.OrderStatusPending)
	_, err := svc.Create(ctx, buyer.ID, CreateReviewInput{
		OrderID:   pendingOrder.ID,
		ProductID: product.ID,
		Rating:    5,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	deliveredOrder := mustCreateOrderForProduct(t, conn, buyer.ID, product, enums.OrderStatusDelivered)
	stranger := mustCreateUser(t, conn, enums.UserRoleBuyer)
	_, err = svc.Create(ctx, stranger.ID, CreateReviewInput{
		OrderID:   deliveredOrder.ID,
		ProductID: product.ID,
		Rating:    5,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	otherProduct := mustCreateListing(t, conn, seller.ID, "Dairy Goat")
	_, err = svc.Create(ctx, buyer.ID, CreateReviewInput{
		OrderID:   deliveredOrder.ID,
		ProductID: otherProduct.ID,
		Rating:    5,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateReviewRejectsDuplicate(t *testing.T) {
	conn := setupReviewsTestDB(t)
	svc := buildReviewService(t, conn)
	ctx := context.Background()

	seller := mustCreateUser(t, conn, enums.UserRoleFarmer)
	buyer := mustCreateUser(t, conn, enums.UserRoleBuyer)
	product := mustCreateListing(t, conn, seller.ID, "Kienyeji Chicken")
	order := mustCreateOrderForProduct(t, conn, buyer.ID, product, enums.OrderStatusDelivered)

	_, err := svc.Create(ctx, buyer.ID, CreateReviewInput{
		OrderID:   order.ID,
		ProductID: product.ID,
		Rating:    4,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, buyer.ID, CreateReviewInput{
		OrderID:   order.ID,
		ProductID: product.ID,
		Rating:    2,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	// The failed duplicate must not disturb the stored aggregate.
	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 1, reloaded.RatingCount)
	assert.True(t, reloaded.Rating.Equal(decimal.NewFromInt(4)))
}

func TestCreateReviewRejectsBadRating(t *testing.T) {
	conn := setupReviewsTestDB(t)
	svc := buildReviewService(t, conn)
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Create(ctx, uuid.New(), CreateReviewInput{
			OrderID:   uuid.New(),
			ProductID: uuid.New(),
			Rating:    rating,
		})
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	}
}

func TestListByProductPagination(t *testing.T) {
	conn := setupReviewsTestDB(t)
	svc := buildReviewService(t, conn)
	ctx := context.Background()

	seller := mustCreateUser(t, conn, enums.UserRoleFarmer)
	product := mustCreateListing(t, conn, seller.ID, "Kienyeji Chicken")

	for i := 0; i < 3; i++ {
		buyer := mustCreateUser(t, conn, enums.UserRoleBuyer)
		order := mustCreateOrderForProduct(t, conn, buyer.ID, product, enums.OrderStatusDelivered)
		_, err := svc.Create(ctx, buyer.ID, CreateReviewInput{
			OrderID:   order.ID,
			ProductID: product.ID,
			Rating:    5,
		})
		require.NoError(t, err)
	}

	seen := map[uuid.UUID]struct{}{}
	cursor := ""
	for {
		page, err := svc.ListByProduct(ctx, ListByProductInput{
			ProductID:  product.ID,
			Pagination: pagination.Params{Limit: 2, Cursor: cursor},
		})
		require.NoError(t, err)
		for _, review := range page.Reviews {
			require.NotNil(t, review.Buyer)
			seen[review.ID] = struct{}{}
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	assert.Len(t, seen, 3)
}
