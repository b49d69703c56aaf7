package pricing

import (
	"context"
	"testing"

	"github.com/corralonsoft/corralon-backend/internal/reservations"
	"github.com/corralonsoft/corralon-backend/pkg/db/models"
	"github.com/corralonsoft/corralon-backend/pkg/enums"
	"github.com/corralonsoft/corralon-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPricingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS catalog_models (
  id TEXT PRIMARY KEY,
  product TEXT NOT NULL,
  name TEXT NOT NULL,
  width_mm INTEGER,
  length_mm INTEGER,
  thickness_mm INTEGER,
  units_per_square_meter NUMERIC NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
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

type pricingTxRunner struct {
	db *gorm.DB
}

func (r pricingTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})
}

func newPricingService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	resSvc, err := reservations.NewService(reservations.NewRepository(db))
	require.NoError(t, err)
	svc, err := NewService(NewRepository(db), pricingTxRunner{db: db}, resSvc, metrics.NewCoreMetrics(nil))
	require.NoError(t, err)
	return svc
}

func seedModel(t *testing.T, db *gorm.DB, product enums.ProductCategory, name string) *models.CatalogModel {
	t.Helper()
	model := &models.CatalogModel{
		ID:       uuid.New(),
		Product:  product,
		Name:     name,
		IsActive: true,
	}
	require.NoError(t, db.Create(model).Error)
	return model
}

func seedBaseTier(t *testing.T, db *gorm.DB, modelID uuid.UUID, cost string) *models.PriceTier {
	t.Helper()
	c := decimal.RequireFromString(cost)
	prices := ComputeTierPrices(c, decimal.NewFromInt(30), decimal.NewFromInt(10), decimal.Zero)
	tier := &models.PriceTier{
		ID:               uuid.New(),
		ModelID:          modelID,
		Name:             "base",
		IsBaseTier:       true,
		IsActive:         true,
		Cost:             c,
		MarginPct:        decimal.NewFromInt(30),
		CardSurchargePct: decimal.NewFromInt(10),
		RoundingConstant: decimal.Zero,
		BasePrice:        prices.BasePrice,
		CardPrice:        prices.CardPrice,
	}
	require.NoError(t, db.Create(tier).Error)
	return tier
}

func seedActiveOrderForModel(t *testing.T, db *gorm.DB, modelID uuid.UUID, status enums.OrderStatus) {
	t.Helper()
	record := &models.StockRecord{
		ID:              uuid.New(),
		ModelID:         modelID,
		CurrentQuantity: decimal.NewFromInt(100),
		Unit:            enums.StockUnitSquareMeter,
		IsActive:        true,
	}
	require.NoError(t, db.Create(record).Error)
	order := &models.Order{
		ID:           uuid.New(),
		CustomerName: "Estudio Norte",
		Status:       status,
	}
	require.NoError(t, db.Create(order).Error)
	require.NoError(t, db.Create(&models.OrderLine{
		ID:       uuid.New(),
		OrderID:  order.ID,
		StockID:  record.ID,
		Quantity: decimal.NewFromInt(5),
	}).Error)
}

func dptr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func sptr(value string) *string {
	return &value
}
