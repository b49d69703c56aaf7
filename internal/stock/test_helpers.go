package stock

import (
	"testing"

	"github.com/corralonsoft/corralon-backend/pkg/db/models"
	"github.com/corralonsoft/corralon-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStockTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	catalogModels := `
CREATE TABLE IF NOT EXISTS catalog_models (
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
);`
	stockRecords := `
CREATE TABLE IF NOT EXISTS stock_records (
  id TEXT PRIMARY KEY,
  model_id TEXT NOT NULL UNIQUE,
  current_quantity NUMERIC NOT NULL DEFAULT 0,
  unit TEXT NOT NULL,
  daily_production_rate NUMERIC NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	stockMovements := `
CREATE TABLE IF NOT EXISTS stock_movements (
  id TEXT PRIMARY KEY,
  stock_id TEXT NOT NULL,
  signed_quantity NUMERIC NOT NULL,
  responsible TEXT NOT NULL,
  created_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_name TEXT NOT NULL,
  status TEXT NOT NULL,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderLines := `
CREATE TABLE IF NOT EXISTS order_lines (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  stock_id TEXT NOT NULL,
  quantity NUMERIC NOT NULL,
  price_tier_id TEXT,
  unit_price NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(catalogModels).Error)
	require.NoError(t, db.Exec(stockRecords).Error)
	require.NoError(t, db.Exec(stockMovements).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderLines).Error)
	return db
}

func mustCreateTestModel(t *testing.T, tx *gorm.DB) *models.CatalogModel {
	t.Helper()
	model := &models.CatalogModel{
		ID:       uuid.New(),
		Product:  enums.ProductCategoryPlacas,
		Name:     "Placa ST 9.5mm 1.20x2.40",
		IsActive: true,
	}
	require.NoError(t, tx.Create(model).Error)
	return model
}

func mustCreateTestStock(t *testing.T, tx *gorm.DB, modelID uuid.UUID, quantity string, active bool) *models.StockRecord {
	t.Helper()
	record := &models.StockRecord{
		ID:              uuid.New(),
		ModelID:         modelID,
		CurrentQuantity: decimal.RequireFromString(quantity),
		Unit:            enums.StockUnitSquareMeter,
		IsActive:        active,
	}
	require.NoError(t, tx.Create(record).Error)
	return record
}

func mustCreateTestOrder(t *testing.T, tx *gorm.DB, status enums.OrderStatus, stockID uuid.UUID, quantity string) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:           uuid.New(),
		CustomerName: "Obra Mitre 1450",
		Status:       status,
	}
	require.NoError(t, tx.Create(order).Error)
	line := &models.OrderLine{
		ID:       uuid.New(),
		OrderID:  order.ID,
		StockID:  stockID,
		Quantity: decimal.RequireFromString(quantity),
	}
	require.NoError(t, tx.Create(line).Error)
	return order
}
