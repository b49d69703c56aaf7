package orders

import (
	"context"
	"testing"

	"github.com/corralonsoft/corralon-backend/pkg/db/models"
	"github.com/corralonsoft/corralon-backend/pkg/enums"
	pkgerrors "github.com/corralonsoft/corralon-backend/pkg/errors"
	"github.com/corralonsoft/corralon-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
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
		`CREATE TABLE IF NOT EXISTS price_tiers (
  id TEXT PRIMARY KEY,
  model_id TEXT NOT NULL,
  name TEXT NOT NULL,
  is_base_tier INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  cost NUMERIC NOT NULL,
  margin_pct NUMERIC NOT NULL,
  card_surcharge_pct NUMERIC NOT NULL,
  rounding_constant NUMERIC NOT NULL DEFAULT 0,
  base_price NUMERIC NOT NULL,
  card_price NUMERIC NOT NULL,
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

type ordersTxRunner struct {
	db *gorm.DB
}

func (r ordersTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})
}

func newOrdersService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), ordersTxRunner{db: db})
	require.NoError(t, err)
	return svc
}

func seedStockRecord(t *testing.T, db *gorm.DB) *models.StockRecord {
	t.Helper()
	record := &models.StockRecord{
		ID:              uuid.New(),
		ModelID:         uuid.New(),
		CurrentQuantity: decimal.NewFromInt(100),
		Unit:            enums.StockUnitSquareMeter,
		IsActive:        true,
	}
	require.NoError(t, db.Create(record).Error)
	return record
}

func seedTier(t *testing.T, db *gorm.DB, modelID uuid.UUID, basePrice string) *models.PriceTier {
	t.Helper()
	tier := &models.PriceTier{
		ID:               uuid.New(),
		ModelID:          modelID,
		Name:             "base",
		IsBaseTier:       true,
		IsActive:         true,
		Cost:             decimal.NewFromInt(1000),
		MarginPct:        decimal.NewFromInt(50),
		CardSurchargePct: decimal.NewFromInt(10),
		BasePrice:        decimal.RequireFromString(basePrice),
		CardPrice:        decimal.RequireFromString(basePrice),
	}
	require.NoError(t, db.Create(tier).Error)
	return tier
}

func TestService_CreateOrderSnapshotsTierPrice(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	ctx := context.Background()

	record := seedStockRecord(t, db)
	tier := seedTier(t, db, record.ModelID, "1500")

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		CustomerName: "Constructora Sur",
		Lines: []OrderLineInput{
			{StockID: record.ID, Quantity: decimal.NewFromInt(30), PriceTierID: &tier.ID},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, order.Status, "orders start pending")
	require.Len(t, order.Lines, 1)
	assert.True(t, order.Lines[0].UnitPrice.Equal(decimal.NewFromInt(1500)),
		"tier base price snapshotted onto the line")

	// repricing the tier afterwards leaves the committed line untouched
	require.NoError(t, db.Model(&models.PriceTier{}).
		Where("id = ?", tier.ID).
		Update("base_price", decimal.NewFromInt(9999)).Error)
	reloaded, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Lines[0].UnitPrice.Equal(decimal.NewFromInt(1500)))
}

func TestService_CreateOrderValidation(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	ctx := context.Background()

	record := seedStockRecord(t, db)

	tests := []struct {
		name  string
		input CreateOrderInput
		code  pkgerrors.Code
	}{
		{
			name: "missing customer",
			input: CreateOrderInput{
				Lines: []OrderLineInput{{StockID: record.ID, Quantity: decimal.NewFromInt(1)}},
			},
			code: pkgerrors.CodeValidation,
		},
		{
			name:  "no lines",
			input: CreateOrderInput{CustomerName: "Obra Mitre"},
			code:  pkgerrors.CodeValidation,
		},
		{
			name: "zero quantity line",
			input: CreateOrderInput{
				CustomerName: "Obra Mitre",
				Lines:        []OrderLineInput{{StockID: record.ID, Quantity: decimal.Zero}},
			},
			code: pkgerrors.CodeValidation,
		},
		{
			name: "unknown status",
			input: CreateOrderInput{
				CustomerName: "Obra Mitre",
				Status:       enums.OrderStatus("approved"),
				Lines:        []OrderLineInput{{StockID: record.ID, Quantity: decimal.NewFromInt(1)}},
			},
			code: pkgerrors.CodeValidation,
		},
		{
			name: "unknown stock",
			input: CreateOrderInput{
				CustomerName: "Obra Mitre",
				Lines:        []OrderLineInput{{StockID: uuid.New(), Quantity: decimal.NewFromInt(1)}},
			},
			code: pkgerrors.CodeNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrder(ctx, tc.input)
			require.Error(t, err)
			coded := pkgerrors.As(err)
			require.NotNil(t, coded)
			assert.Equal(t, tc.code, coded.Code())
		})
	}
}

func TestService_CreateOrderRejectsForeignTier(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	ctx := context.Background()

	record := seedStockRecord(t, db)
	foreign := seedTier(t, db, uuid.New(), "100")

	_, err := svc.CreateOrder(ctx, CreateOrderInput{
		CustomerName: "Constructora Sur",
		Lines: []OrderLineInput{
			{StockID: record.ID, Quantity: decimal.NewFromInt(5), PriceTierID: &foreign.ID},
		},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	// the rejected order must not leave a partial row behind
	page, err := svc.ListOrders(ctx, nil, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, page.Orders)
}

func TestService_ChangeStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	ctx := context.Background()

	record := seedStockRecord(t, db)
	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		CustomerName: "Estudio Norte",
		Lines:        []OrderLineInput{{StockID: record.ID, Quantity: decimal.NewFromInt(8)}},
	})
	require.NoError(t, err)

	updated, err := svc.ChangeStatus(ctx, ChangeStatusInput{OrderID: order.ID, Status: enums.OrderStatusReserved})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusReserved, updated.Status)

	_, err = svc.ChangeStatus(ctx, ChangeStatusInput{OrderID: order.ID, Status: enums.OrderStatus("nope")})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.ChangeStatus(ctx, ChangeStatusInput{OrderID: uuid.New(), Status: enums.OrderStatusDelivered})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestService_ListOrdersByStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	ctx := context.Background()

	record := seedStockRecord(t, db)
	for _, status := range []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusReserved,
		enums.OrderStatusReserved,
		enums.OrderStatusDelivered,
	} {
		_, err := svc.CreateOrder(ctx, CreateOrderInput{
			CustomerName: "Cliente mostrador",
			Status:       status,
			Lines:        []OrderLineInput{{StockID: record.ID, Quantity: decimal.NewFromInt(1)}},
		})
		require.NoError(t, err)
	}

	reserved := enums.OrderStatusReserved
	page, err := svc.ListOrders(ctx, &reserved, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, page.Orders, 2)

	all, err := svc.ListOrders(ctx, nil, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, all.Orders, 4)
	assert.Empty(t, all.NextCursor)
}

func TestService_ListOrdersPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	ctx := context.Background()

	record := seedStockRecord(t, db)
	for i := 0; i < 3; i++ {
		_, err := svc.CreateOrder(ctx, CreateOrderInput{
			CustomerName: "Cliente mostrador",
			Lines:        []OrderLineInput{{StockID: record.ID, Quantity: decimal.NewFromInt(1)}},
		})
		require.NoError(t, err)
	}

	first, err := svc.ListOrders(ctx, nil, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.ListOrders(ctx, nil, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Empty(t, second.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, order := range append(first.Orders, second.Orders...) {
		assert.False(t, seen[order.ID])
		seen[order.ID] = true
	}

	_, err = svc.ListOrders(ctx, nil, pagination.Params{Cursor: "not-base64!"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
