package catalog

import (
	"context"

	"github.com/corralonsoft/corralon-backend/pkg/db/models"
	"github.com/corralonsoft/corralon-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for catalog models.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, model *models.CatalogModel) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CatalogModel, error)
	List(ctx context.Context, product *enums.ProductCategory) ([]models.CatalogModel, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasStockRecord(ctx context.Context, modelID uuid.UUID) (bool, error)
	HasOrderLines(ctx context.Context, modelID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, model *models.CatalogModel) error {
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CatalogModel, error) {
	var model models.CatalogModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &model, nil
}

func (r *repository) List(ctx context.Context, product *enums.ProductCategory) ([]models.CatalogModel, error) {
	q := r.db.WithContext(ctx)
	if product != nil {
		q = q.Where("product = ?", *product)
	}
	var list []models.CatalogModel
	if err := q.Order("product ASC").Order("name ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.CatalogModel{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CatalogModel{}, "id = ?", id).Error
}

func (r *repository) HasStockRecord(ctx context.Context, modelID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StockRecord{}).
		Where("model_id = ?", modelID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) HasOrderLines(ctx context.Context, modelID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(1)
		FROM order_lines ol
		JOIN stock_records sr ON sr.id = ol.stock_id
		WHERE sr.model_id = ?
	`, modelID).Scan(&count).Error
	return count > 0, err
}
