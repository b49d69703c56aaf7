package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine commits a quantity of one stock record to an order. UnitPrice is
// a snapshot taken from the referenced price tier at order time so later tier
// edits never rewrite an order.
type OrderLine struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	StockID     uuid.UUID       `gorm:"column:stock_id;type:uuid;not null;index"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:decimal(14,3);not null"`
	PriceTierID *uuid.UUID      `gorm:"column:price_tier_id;type:uuid"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`

	Order *Order       `gorm:"foreignKey:OrderID"`
	Stock *StockRecord `gorm:"foreignKey:StockID"`
}

// TableName keeps the table name explicit.
func (OrderLine) TableName() string { return "order_lines" }
