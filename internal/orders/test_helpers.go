package orders

import (
	"fmt"
	"testing"
	"time"

	"github.com/dmuriuki/agrimarket-backend/internal/inventory"
	"github.com/dmuriuki/agrimarket-backend/internal/notifications"
	"github.com/dmuriuki/agrimarket-backend/internal/products"
	"github.com/dmuriuki/agrimarket-backend/pkg/db"
	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	"github.com/dmuriuki/agrimarket-backend/pkg/outbox"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	// Transactions must land on the same in-memory database.
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  county TEXT,
  bio TEXT,
  avatar_url TEXT,
  rating NUMERIC NOT NULL DEFAULT 0,
  rating_count INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL,
  breed TEXT,
  price NUMERIC NOT NULL,
  unit TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  is_available INTEGER NOT NULL DEFAULT 0,
  location TEXT,
  tags TEXT,
  rating NUMERIC NOT NULL DEFAULT 0,
  rating_count INTEGER NOT NULL DEFAULT 0,
  deleted_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER,
  buyer_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  status TEXT NOT NULL,
  payment_status TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  total NUMERIC NOT NULL,
  shipping_name TEXT NOT NULL,
  shipping_phone TEXT NOT NULL,
  shipping_county TEXT NOT NULL,
  shipping_address TEXT NOT NULL,
  notes TEXT,
  delivered_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  unit_price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL,
  subtotal NUMERIC NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  ref_id TEXT,
  read_at DATETIME,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func buildOrderService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	productsRepo := products.NewRepository(conn)
	guard, err := inventory.NewService(productsRepo)
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Repo:          NewRepository(conn),
		Products:      productsRepo,
		Guard:         guard,
		Notifications: notifications.NewRepository(conn),
		Tx:            db.FromGorm(conn),
		Outbox:        outbox.NewService(outbox.NewRepository(conn), nil),
	})
	require.NoError(t, err)
	return svc
}

func mustCreateUser(t *testing.T, conn *gorm.DB, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("%s_%s@example.com", role, uuid.NewString()),
		PasswordHash: "hash",
		Role:         role,
		FirstName:    "Order",
		LastName:     "Tester",
		IsActive:     true,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func mustCreateListing(t *testing.T, conn *gorm.DB, sellerID uuid.UUID, name string, price int64, quantity int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:          uuid.New(),
		SellerID:    sellerID,
		Name:        name,
		Category:    enums.ProductCategoryPoultry,
		Price:       decimal.NewFromInt(price),
		Unit:        enums.ProductUnitPiece,
		Quantity:    quantity,
		IsAvailable: quantity > 0,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func mustCreateOrder(t *testing.T, conn *gorm.DB, buyerID, sellerID uuid.UUID, status enums.OrderStatus, createdAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:              uuid.New(),
		BuyerID:         buyerID,
		SellerID:        sellerID,
		Status:          status,
		PaymentStatus:   enums.PaymentStatusPending,
		PaymentMethod:   enums.PaymentMethodMpesa,
		Total:           decimal.NewFromInt(1000),
		ShippingName:    "Order Tester",
		ShippingPhone:   "+254700000000",
		ShippingCounty:  "Nakuru",
		ShippingAddress: "Plot 12, Main Road",
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func placeInput(product *models.Product, quantity int) PlaceOrderInput {
	return PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: product.ID, Quantity: quantity}},
		PaymentMethod:   enums.PaymentMethodCashOnDelivery,
		ShippingName:    "Order Tester",
		ShippingPhone:   "+254700000000",
		ShippingCounty:  "Nakuru",
		ShippingAddress: "Plot 12, Main Road",
	}
}
