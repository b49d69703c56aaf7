package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/corralonsoft/corralon-backend/pkg/db/models"
	"github.com/corralonsoft/corralon-backend/pkg/enums"
	pkgerrors "github.com/corralonsoft/corralon-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateModelInput registers a new catalog model.
type CreateModelInput struct {
	Product             enums.ProductCategory `json:"product"`
	Name                string                `json:"name"`
	WidthMM             *int                  `json:"width_mm,omitempty"`
	LengthMM            *int                  `json:"length_mm,omitempty"`
	ThicknessMM         *int                  `json:"thickness_mm,omitempty"`
	UnitsPerSquareMeter decimal.Decimal       `json:"units_per_square_meter"`
}

// UpdateModelInput changes descriptive fields. The product category and
// dimensions stay editable only until orders reference the model; the name
// is always editable.
type UpdateModelInput struct {
	ModelID             uuid.UUID        `json:"model_id"`
	Name                *string          `json:"name,omitempty"`
	WidthMM             *int             `json:"width_mm,omitempty"`
	LengthMM            *int             `json:"length_mm,omitempty"`
	ThicknessMM         *int             `json:"thickness_mm,omitempty"`
	UnitsPerSquareMeter *decimal.Decimal `json:"units_per_square_meter,omitempty"`
	IsActive            *bool            `json:"is_active,omitempty"`
}

// Service exposes catalog model management.
type Service interface {
	CreateModel(ctx context.Context, input CreateModelInput) (*models.CatalogModel, error)
	GetModel(ctx context.Context, id uuid.UUID) (*models.CatalogModel, error)
	ListModels(ctx context.Context, product *enums.ProductCategory) ([]models.CatalogModel, error)
	UpdateModel(ctx context.Context, input UpdateModelInput) (*models.CatalogModel, error)
	DeleteModel(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires a catalog service with the required collaborators.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateModel(ctx context.Context, input CreateModelInput) (*models.CatalogModel, error) {
	if !input.Product.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product category %q", input.Product))
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "model name required")
	}
	if input.UnitsPerSquareMeter.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "units per square meter cannot be negative")
	}

	model := &models.CatalogModel{
		ID:                  uuid.New(),
		Product:             input.Product,
		Name:                input.Name,
		WidthMM:             input.WidthMM,
		LengthMM:            input.LengthMM,
		ThicknessMM:         input.ThicknessMM,
		UnitsPerSquareMeter: input.UnitsPerSquareMeter,
		IsActive:            true,
	}
	if err := s.repo.Create(ctx, model); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create catalog model")
	}
	return model, nil
}

func (s *service) GetModel(ctx context.Context, id uuid.UUID) (*models.CatalogModel, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "model id required")
	}
	model, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog model not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog model")
	}
	return model, nil
}

func (s *service) ListModels(ctx context.Context, product *enums.ProductCategory) ([]models.CatalogModel, error) {
	if product != nil && !product.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product category %q", *product))
	}
	list, err := s.repo.List(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list catalog models")
	}
	return list, nil
}

func (s *service) UpdateModel(ctx context.Context, input UpdateModelInput) (*models.CatalogModel, error) {
	if input.ModelID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "model id required")
	}
	updates := map[string]any{}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "model name cannot be empty")
		}
		updates["name"] = *input.Name
	}
	if input.WidthMM != nil {
		updates["width_mm"] = *input.WidthMM
	}
	if input.LengthMM != nil {
		updates["length_mm"] = *input.LengthMM
	}
	if input.ThicknessMM != nil {
		updates["thickness_mm"] = *input.ThicknessMM
	}
	if input.UnitsPerSquareMeter != nil {
		if input.UnitsPerSquareMeter.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "units per square meter cannot be negative")
		}
		updates["units_per_square_meter"] = *input.UnitsPerSquareMeter
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	updates["updated_at"] = time.Now().UTC()

	var model *models.CatalogModel
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, input.ModelID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "catalog model not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog model")
		}
		if err := repo.Update(ctx, input.ModelID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update catalog model")
		}
		var err error
		model, err = repo.FindByID(ctx, input.ModelID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload catalog model")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return model, nil
}

// DeleteModel removes a model only while nothing references it. A model with
// a stock record or order history is kept and must be deactivated instead.
func (s *service) DeleteModel(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "model id required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "catalog model not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog model")
		}
		hasStock, err := repo.HasStockRecord(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check stock references")
		}
		if hasStock {
			return pkgerrors.New(pkgerrors.CodeConflict, "model has a stock record; deactivate it instead")
		}
		hasLines, err := repo.HasOrderLines(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order references")
		}
		if hasLines {
			return pkgerrors.New(pkgerrors.CodeConflict, "model is referenced by orders; deactivate it instead")
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete catalog model")
		}
		return nil
	})
}
