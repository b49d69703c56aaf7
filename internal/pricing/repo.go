package pricing

import (
	"context"

	"github.com/corralonsoft/corralon-backend/pkg/db/models"
	"github.com/corralonsoft/corralon-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for price tiers and the model listing the
// bulk workflow iterates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindTier(ctx context.Context, id uuid.UUID) (*models.PriceTier, error)
	FindActiveBaseTier(ctx context.Context, modelID uuid.UUID) (*models.PriceTier, error)
	FindActiveTierByName(ctx context.Context, modelID uuid.UUID, name string) (*models.PriceTier, error)
	CountActiveBaseTiers(ctx context.Context, modelID uuid.UUID) (int64, error)
	CreateTier(ctx context.Context, tier *models.PriceTier) error
	UpdateTier(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListTiers(ctx context.Context, modelID uuid.UUID) ([]models.PriceTier, error)
	ListActiveModelsByProduct(ctx context.Context, product enums.ProductCategory) ([]models.CatalogModel, error)
	ModelExists(ctx context.Context, modelID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pricing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindTier(ctx context.Context, id uuid.UUID) (*models.PriceTier, error) {
	var tier models.PriceTier
	if err := r.db.WithContext(ctx).First(&tier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *repository) FindActiveBaseTier(ctx context.Context, modelID uuid.UUID) (*models.PriceTier, error) {
	var tier models.PriceTier
	if err := r.db.WithContext(ctx).
		Where("model_id = ? AND is_base_tier = ? AND is_active = ?", modelID, true, true).
		Order("created_at ASC").
		First(&tier).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *repository) FindActiveTierByName(ctx context.Context, modelID uuid.UUID, name string) (*models.PriceTier, error) {
	var tier models.PriceTier
	if err := r.db.WithContext(ctx).
		Where("model_id = ? AND name = ? AND is_active = ?", modelID, name, true).
		Order("created_at ASC").
		First(&tier).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *repository) CountActiveBaseTiers(ctx context.Context, modelID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PriceTier{}).
		Where("model_id = ? AND is_base_tier = ? AND is_active = ?", modelID, true, true).
		Count(&count).Error
	return count, err
}

func (r *repository) CreateTier(ctx context.Context, tier *models.PriceTier) error {
	return r.db.WithContext(ctx).Create(tier).Error
}

func (r *repository) UpdateTier(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PriceTier{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListTiers(ctx context.Context, modelID uuid.UUID) ([]models.PriceTier, error) {
	var tiers []models.PriceTier
	if err := r.db.WithContext(ctx).
		Where("model_id = ?", modelID).
		Order("is_base_tier DESC").
		Order("created_at ASC").
		Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *repository) ListActiveModelsByProduct(ctx context.Context, product enums.ProductCategory) ([]models.CatalogModel, error) {
	var list []models.CatalogModel
	if err := r.db.WithContext(ctx).
		Where("product = ? AND is_active = ?", product, true).
		Order("name ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) ModelExists(ctx context.Context, modelID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CatalogModel{}).
		Where("id = ?", modelID).
		Count(&count).Error
	return count > 0, err
}
