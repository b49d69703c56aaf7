package reservations

import (
	"context"
	"testing"

	"github.com/corralonsoft/corralon-backend/pkg/db/models"
	"github.com/corralonsoft/corralon-backend/pkg/enums"
	pkgerrors "github.com/corralonsoft/corralon-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupReservationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS stock_records (
  id TEXT PRIMARY KEY,
  model_id TEXT NOT NULL UNIQUE,
  current_quantity NUMERIC NOT NULL DEFAULT 0,
  unit TEXT NOT NULL,
  daily_production_rate NUMERIC NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_name TEXT NOT NULL,
  status TEXT NOT NULL,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_lines (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  stock_id TEXT NOT NULL,
  quantity NUMERIC NOT NULL,
  price_tier_id TEXT,
  unit_price NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME
);`,
	}
	for _, ddl := range schema {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func seedStock(t *testing.T, db *gorm.DB, quantity string) *models.StockRecord {
	t.Helper()
	record := &models.StockRecord{
		ID:              uuid.New(),
		ModelID:         uuid.New(),
		CurrentQuantity: decimal.RequireFromString(quantity),
		Unit:            enums.StockUnitSquareMeter,
		IsActive:        true,
	}
	require.NoError(t, db.Create(record).Error)
	return record
}

func seedOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus, stockID uuid.UUID, quantity string) {
	t.Helper()
	order := &models.Order{
		ID:           uuid.New(),
		CustomerName: "Constructora Sur",
		Status:       status,
	}
	require.NoError(t, db.Create(order).Error)
	require.NoError(t, db.Create(&models.OrderLine{
		ID:       uuid.New(),
		OrderID:  order.ID,
		StockID:  stockID,
		Quantity: decimal.RequireFromString(quantity),
	}).Error)
}

func newService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestService_AvailabilityScenario(t *testing.T) {
	db := setupReservationsTestDB(t)
	svc := newService(t, db)
	ctx := context.Background()

	record := seedStock(t, db, "100")
	seedOrder(t, db, enums.OrderStatusReserved, record.ID, "30")
	seedOrder(t, db, enums.OrderStatusPending, record.ID, "10")
	seedOrder(t, db, enums.OrderStatusDelivered, record.ID, "500")
	seedOrder(t, db, enums.OrderStatusCancelled, record.ID, "500")

	reserved, err := svc.ReservedQuantity(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, reserved.Equal(decimal.NewFromInt(30)))

	pending, err := svc.PendingQuantity(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, pending.Equal(decimal.NewFromInt(10)))

	breakdown, err := svc.Availability(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, breakdown.Available.Equal(decimal.NewFromInt(60)),
		"available = %s", breakdown.Available)
}

func TestService_AvailabilityMayGoNegative(t *testing.T) {
	db := setupReservationsTestDB(t)
	svc := newService(t, db)
	ctx := context.Background()

	record := seedStock(t, db, "20")
	seedOrder(t, db, enums.OrderStatusReserved, record.ID, "35")

	breakdown, err := svc.Availability(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, breakdown.Available.Equal(decimal.NewFromInt(-15)),
		"over-reservation is representable, not clamped")
}

func TestService_AvailabilityUnknownStock(t *testing.T) {
	db := setupReservationsTestDB(t)
	svc := newService(t, db)

	_, err := svc.Availability(context.Background(), uuid.New())
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestService_HasActiveOrders(t *testing.T) {
	db := setupReservationsTestDB(t)
	svc := newService(t, db)
	ctx := context.Background()

	quiet := seedStock(t, db, "10")
	seedOrder(t, db, enums.OrderStatusDelivered, quiet.ID, "10")
	seedOrder(t, db, enums.OrderStatusInvoiced, quiet.ID, "4")

	active, err := svc.HasActiveOrders(ctx, quiet.ModelID)
	require.NoError(t, err)
	assert.False(t, active, "terminal statuses do not block")

	busy := seedStock(t, db, "10")
	seedOrder(t, db, enums.OrderStatusPending, busy.ID, "1")

	active, err = svc.HasActiveOrders(ctx, busy.ModelID)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestService_CommitmentsEmptyState(t *testing.T) {
	db := setupReservationsTestDB(t)
	svc := newService(t, db)

	record := seedStock(t, db, "5")
	reserved, pending, err := svc.Commitments(context.Background(), nil, record.ID)
	require.NoError(t, err)
	assert.True(t, reserved.IsZero())
	assert.True(t, pending.IsZero())
}
