package reservations

import (
	"context"

	"github.com/corralonsoft/corralon-backend/pkg/db/models"
	"github.com/corralonsoft/corralon-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository reads order commitments against stock. The package owns no
// tables of its own; every call re-scans live order state.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	SumLineQuantity(ctx context.Context, stockID uuid.UUID, status enums.OrderStatus) (decimal.Decimal, error)
	HasActiveLinesForModel(ctx context.Context, modelID uuid.UUID) (bool, error)
	CurrentQuantity(ctx context.Context, stockID uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a reservations repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) SumLineQuantity(ctx context.Context, stockID uuid.UUID, status enums.OrderStatus) (decimal.Decimal, error) {
	var out struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(ol.quantity), 0) AS total
		FROM order_lines ol
		JOIN orders o ON o.id = ol.order_id
		WHERE ol.stock_id = ? AND o.status = ?
	`, stockID, status).Scan(&out).Error
	if err != nil {
		return decimal.Zero, err
	}
	return out.Total, nil
}

func (r *repository) HasActiveLinesForModel(ctx context.Context, modelID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(1)
		FROM order_lines ol
		JOIN orders o ON o.id = ol.order_id
		JOIN stock_records sr ON sr.id = ol.stock_id
		WHERE sr.model_id = ? AND o.status IN ?
	`, modelID, enums.ActiveOrderStatuses).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CurrentQuantity(ctx context.Context, stockID uuid.UUID) (decimal.Decimal, error) {
	var record models.StockRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", stockID).Error; err != nil {
		return decimal.Zero, err
	}
	return record.CurrentQuantity, nil
}
