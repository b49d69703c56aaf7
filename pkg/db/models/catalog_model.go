package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corralonsoft/corralon-backend/pkg/enums"
)

// CatalogModel is one sellable model in the catalog (a board, a profile, a
// ceiling panel). Descriptive fields stay editable; identity fields are frozen
// once orders reference the model.
type CatalogModel struct {
	ID                  uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Product             enums.ProductCategory `gorm:"column:product;not null;index"`
	Name                string                `gorm:"column:name;not null"`
	WidthMM             *int                  `gorm:"column:width_mm"`
	LengthMM            *int                  `gorm:"column:length_mm"`
	ThicknessMM         *int                  `gorm:"column:thickness_mm"`
	UnitsPerSquareMeter decimal.Decimal       `gorm:"column:units_per_square_meter;type:decimal(10,3);not null;default:0"`
	IsActive            bool                  `gorm:"column:is_active;not null;default:true"`
	CreatedAt           time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the table clear of GORM's default pluralization.
func (CatalogModel) TableName() string { return "catalog_models" }
