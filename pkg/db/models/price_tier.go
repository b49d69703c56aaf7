package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceTier holds one named pricing for a catalog model. At most one active
// tier per model may be the base tier; the partial unique index in the schema
// enforces it. BasePrice and CardPrice are derived from the other four fields
// and recomputed on every write, never hand-edited.
type PriceTier struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ModelID          uuid.UUID       `gorm:"column:model_id;type:uuid;not null;index"`
	Name             string          `gorm:"column:name;not null"`
	IsBaseTier       bool            `gorm:"column:is_base_tier;not null;default:false"`
	IsActive         bool            `gorm:"column:is_active;not null;default:true"`
	Cost             decimal.Decimal `gorm:"column:cost;type:decimal(12,2);not null"`
	MarginPct        decimal.Decimal `gorm:"column:margin_pct;type:decimal(7,2);not null"`
	CardSurchargePct decimal.Decimal `gorm:"column:card_surcharge_pct;type:decimal(7,2);not null"`
	RoundingConstant decimal.Decimal `gorm:"column:rounding_constant;type:decimal(12,2);not null;default:0"`
	BasePrice        decimal.Decimal `gorm:"column:base_price;type:decimal(12,2);not null"`
	CardPrice        decimal.Decimal `gorm:"column:card_price;type:decimal(12,2);not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Model *CatalogModel `gorm:"foreignKey:ModelID"`
}

// TableName keeps the table name explicit.
func (PriceTier) TableName() string { return "price_tiers" }
