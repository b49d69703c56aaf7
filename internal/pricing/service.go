package pricing

import (
	"context"
	"fmt"

	"github.com/corralonsoft/corralon-backend/pkg/db/models"
	pkgerrors "github.com/corralonsoft/corralon-backend/pkg/errors"
	"github.com/corralonsoft/corralon-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ActiveOrderChecker reports whether a model has order lines in a status
// that blocks price edits. Implemented by the reservations package.
type ActiveOrderChecker interface {
	HasActiveOrders(ctx context.Context, modelID uuid.UUID) (bool, error)
}

// Service exposes tier management and the bulk pricing workflow.
type Service interface {
	UpsertTier(ctx context.Context, modelID uuid.UUID, spec TierSpec) (*models.PriceTier, error)
	ListTiers(ctx context.Context, modelID uuid.UUID) ([]models.PriceTier, error)
	Preview(ctx context.Context, input BulkInput) (*PreviewResult, error)
	Commit(ctx context.Context, input BulkInput) (*CommitResult, error)
}

type service struct {
	repo         Repository
	tx           txRunner
	activeOrders ActiveOrderChecker
	metrics      *metrics.CoreMetrics
}

// NewService wires a pricing service with the required collaborators.
func NewService(repo Repository, tx txRunner, activeOrders ActiveOrderChecker, m *metrics.CoreMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if activeOrders == nil {
		return nil, fmt.Errorf("active order checker required")
	}
	return &service{repo: repo, tx: tx, activeOrders: activeOrders, metrics: m}, nil
}

func (s *service) UpsertTier(ctx context.Context, modelID uuid.UUID, spec TierSpec) (*models.PriceTier, error) {
	if modelID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "model id required")
	}
	if err := validateTierSpec(spec); err != nil {
		return nil, err
	}

	var tier *models.PriceTier
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		exists, err := repo.ModelExists(ctx, modelID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check model")
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "catalog model not found")
		}
		tier, err = s.upsertTier(ctx, repo, modelID, spec)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tier, nil
}

// upsertTier writes one tier inside the caller's transaction. A base-tier
// spec updates the existing active base tier in place so historical order
// references keep their tier id; a named tier updates its active namesake
// the same way. Only when no match exists is a new row created.
func (s *service) upsertTier(ctx context.Context, repo Repository, modelID uuid.UUID, spec TierSpec) (*models.PriceTier, error) {
	prices := ComputeTierPrices(spec.Cost, spec.MarginPct, spec.CardSurchargePct, spec.RoundingConstant)

	var existing *models.PriceTier
	if spec.IsBaseTier {
		count, err := repo.CountActiveBaseTiers(ctx, modelID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count base tiers")
		}
		if count > 1 {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "model has multiple active base tiers")
		}
		if count == 1 {
			existing, err = repo.FindActiveBaseTier(ctx, modelID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load base tier")
			}
		}
	} else {
		found, err := repo.FindActiveTierByName(ctx, modelID, spec.Name)
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tier by name")
		}
		existing = found
	}

	if existing != nil {
		updates := map[string]any{
			"name":               spec.Name,
			"cost":               spec.Cost,
			"margin_pct":         spec.MarginPct,
			"card_surcharge_pct": spec.CardSurchargePct,
			"rounding_constant":  spec.RoundingConstant,
			"base_price":         prices.BasePrice,
			"card_price":         prices.CardPrice,
		}
		if err := repo.UpdateTier(ctx, existing.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tier")
		}
		tier, err := repo.FindTier(ctx, existing.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload tier")
		}
		return tier, nil
	}

	tier := &models.PriceTier{
		ID:               uuid.New(),
		ModelID:          modelID,
		Name:             spec.Name,
		IsBaseTier:       spec.IsBaseTier,
		IsActive:         true,
		Cost:             spec.Cost,
		MarginPct:        spec.MarginPct,
		CardSurchargePct: spec.CardSurchargePct,
		RoundingConstant: spec.RoundingConstant,
		BasePrice:        prices.BasePrice,
		CardPrice:        prices.CardPrice,
	}
	if err := repo.CreateTier(ctx, tier); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tier")
	}
	return tier, nil
}

func (s *service) ListTiers(ctx context.Context, modelID uuid.UUID) ([]models.PriceTier, error) {
	if modelID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "model id required")
	}
	exists, err := s.repo.ModelExists(ctx, modelID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check model")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog model not found")
	}
	tiers, err := s.repo.ListTiers(ctx, modelID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tiers")
	}
	return tiers, nil
}

func validateTierSpec(spec TierSpec) error {
	if spec.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "tier name required")
	}
	if spec.Cost.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cost cannot be negative")
	}
	return nil
}
