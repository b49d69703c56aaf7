package stock

import (
	"context"

	"github.com/corralonsoft/corralon-backend/pkg/db/models"
	"github.com/corralonsoft/corralon-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages persistence for stock records and their movement ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.StockRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.StockRecord, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.StockRecord, error)
	FindByModelID(ctx context.Context, modelID uuid.UUID) (*models.StockRecord, error)
	List(ctx context.Context) ([]models.StockRecord, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, stockID uuid.UUID) ([]models.StockMovement, error)
	DeleteMovements(ctx context.Context, stockID uuid.UUID) error
	SumMovements(ctx context.Context, stockID uuid.UUID) (decimal.Decimal, error)
	SumDeliveredLines(ctx context.Context, stockID uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stock repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.StockRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.StockRecord, error) {
	var record models.StockRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByIDForUpdate loads the record under a row lock so availability checks
// and quantity writes within the surrounding transaction are serialized.
// sqlite has no row locks; its single-writer model covers the same guarantee.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.StockRecord, error) {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record models.StockRecord
	if err := q.First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) FindByModelID(ctx context.Context, modelID uuid.UUID) (*models.StockRecord, error) {
	var record models.StockRecord
	if err := r.db.WithContext(ctx).First(&record, "model_id = ?", modelID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) List(ctx context.Context) ([]models.StockRecord, error) {
	var records []models.StockRecord
	if err := r.db.WithContext(ctx).
		Preload("Model").
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.StockRecord{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovements(ctx context.Context, stockID uuid.UUID) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	if err := r.db.WithContext(ctx).
		Where("stock_id = ?", stockID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *repository) DeleteMovements(ctx context.Context, stockID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("stock_id = ?", stockID).
		Delete(&models.StockMovement{}).Error
}

func (r *repository) SumMovements(ctx context.Context, stockID uuid.UUID) (decimal.Decimal, error) {
	var out struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(signed_quantity), 0) AS total
		FROM stock_movements
		WHERE stock_id = ?
	`, stockID).Scan(&out).Error
	if err != nil {
		return decimal.Zero, err
	}
	return out.Total, nil
}

// SumDeliveredLines totals the order-line quantities already delivered against
// a stock record. Reconciliation rebuilds the aggregate from this figure.
func (r *repository) SumDeliveredLines(ctx context.Context, stockID uuid.UUID) (decimal.Decimal, error) {
	var out struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(ol.quantity), 0) AS total
		FROM order_lines ol
		JOIN orders o ON o.id = ol.order_id
		WHERE ol.stock_id = ? AND o.status = ?
	`, stockID, enums.OrderStatusDelivered).Scan(&out).Error
	if err != nil {
		return decimal.Zero, err
	}
	return out.Total, nil
}
