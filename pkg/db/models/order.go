package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/corralonsoft/corralon-backend/pkg/enums"
)

// Order is a customer order. The inventory core only reads orders; status
// transitions are owned by the order endpoints.
type Order struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerName string            `gorm:"column:customer_name;not null"`
	Status       enums.OrderStatus `gorm:"column:status;not null;index"`
	Notes        *string           `gorm:"column:notes"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Lines []OrderLine `gorm:"foreignKey:OrderID"`
}

// TableName keeps the table name explicit.
func (Order) TableName() string { return "orders" }
