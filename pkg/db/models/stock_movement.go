package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockMovement is one immutable entry in the append-only quantity ledger.
// Rows are only ever inserted, except by reconciliation, which replaces a
// record's history with a single synthetic entry.
type StockMovement struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StockID        uuid.UUID       `gorm:"column:stock_id;type:uuid;not null;index"`
	SignedQuantity decimal.Decimal `gorm:"column:signed_quantity;type:decimal(14,3);not null"`
	Responsible    string          `gorm:"column:responsible;not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`

	Stock *StockRecord `gorm:"foreignKey:StockID"`
}

// TableName keeps the table name explicit.
func (StockMovement) TableName() string { return "stock_movements" }
