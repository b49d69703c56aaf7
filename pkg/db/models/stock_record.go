package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corralonsoft/corralon-backend/pkg/enums"
)

// StockRecord tracks the on-hand quantity for one catalog model (1:1).
// CurrentQuantity is materialized: it must equal the signed sum of every
// StockMovement for the record. Records are deactivated, never deleted.
type StockRecord struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ModelID             uuid.UUID       `gorm:"column:model_id;type:uuid;not null;uniqueIndex"`
	CurrentQuantity     decimal.Decimal `gorm:"column:current_quantity;type:decimal(14,3);not null;default:0"`
	Unit                enums.StockUnit `gorm:"column:unit;not null"`
	DailyProductionRate decimal.Decimal `gorm:"column:daily_production_rate;type:decimal(14,3);not null;default:0"`
	IsActive            bool            `gorm:"column:is_active;not null;default:false"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Model *CatalogModel `gorm:"foreignKey:ModelID"`
}

// TableName keeps the table name explicit.
func (StockRecord) TableName() string { return "stock_records" }
