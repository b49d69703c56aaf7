package pricing

import (
	"context"
	"time"

	"github.com/corralonsoft/corralon-backend/pkg/db/models"
	"github.com/corralonsoft/corralon-backend/pkg/enums"
	pkgerrors "github.com/corralonsoft/corralon-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	blockedReasonActiveOrders  = "active orders"
	blockedReasonNoBaseTier    = "no active base tier"
	blockedReasonMultipleBases = "multiple active base tiers"
)

// classification is the per-model outcome of one bulk run pass. Exactly one
// of change and blocked is set.
type classification struct {
	change  *ModelChange
	blocked *BlockedModel
}

// Preview classifies every active model of the product without writing
// anything. The caller resubmits the same input to Commit.
func (s *service) Preview(ctx context.Context, input BulkInput) (*PreviewResult, error) {
	started := time.Now()
	if err := validateBulkInput(input); err != nil {
		return nil, err
	}

	catalogModels, err := s.repo.ListActiveModelsByProduct(ctx, input.Product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list models")
	}

	result := &PreviewResult{TotalModels: len(catalogModels)}
	excluded := excludedSet(input.ExcludedModelIDs)
	for _, model := range catalogModels {
		if excluded[model.ID] {
			result.ExcludedIDs = append(result.ExcludedIDs, model.ID)
			continue
		}
		outcome, err := s.classifyModel(ctx, s.repo, model, input)
		if err != nil {
			return nil, err
		}
		if outcome.blocked != nil {
			result.BlockedList = append(result.BlockedList, *outcome.blocked)
			continue
		}
		result.Changes = append(result.Changes, *outcome.change)
	}
	s.finishResult(result, "preview", started)
	return result, nil
}

// Commit re-runs the classification and applies each to-apply model in its
// own transaction. A model that picked up an active order since preview is
// reported as blocked, not silently skipped; a failed write is reported and
// the rest of the batch still lands.
func (s *service) Commit(ctx context.Context, input BulkInput) (*CommitResult, error) {
	started := time.Now()
	if err := validateBulkInput(input); err != nil {
		return nil, err
	}

	catalogModels, err := s.repo.ListActiveModelsByProduct(ctx, input.Product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list models")
	}

	result := &CommitResult{PreviewResult: PreviewResult{TotalModels: len(catalogModels)}}
	excluded := excludedSet(input.ExcludedModelIDs)
	for _, model := range catalogModels {
		if excluded[model.ID] {
			result.ExcludedIDs = append(result.ExcludedIDs, model.ID)
			continue
		}

		var change *ModelChange
		var tier *models.PriceTier
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			outcome, err := s.classifyModel(ctx, repo, model, input)
			if err != nil {
				return err
			}
			if outcome.blocked != nil {
				result.BlockedList = append(result.BlockedList, *outcome.blocked)
				return nil
			}
			change = outcome.change
			spec, err := resolveSpec(ctx, repo, model.ID, input)
			if err != nil {
				return err
			}
			tier, err = s.upsertTier(ctx, repo, model.ID, spec)
			return err
		})
		if err != nil {
			result.Failed = append(result.Failed, FailedModel{
				ModelID: model.ID,
				Reason:  err.Error(),
			})
			continue
		}
		if change == nil {
			continue
		}
		change.TierID = &tier.ID
		result.Changes = append(result.Changes, *change)
		result.Applied = append(result.Applied, AppliedModel{ModelID: model.ID, TierID: tier.ID})
	}
	s.finishResult(&result.PreviewResult, "commit", started)
	return result, nil
}

// classifyModel decides excluded/blocked/to-apply for one model and carries
// the before and after values for reporting. Performs no writes.
func (s *service) classifyModel(ctx context.Context, repo Repository, model models.CatalogModel, input BulkInput) (classification, error) {
	active, err := s.activeOrders.HasActiveOrders(ctx, model.ID)
	if err != nil {
		return classification{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active orders")
	}
	if active {
		return classification{blocked: &BlockedModel{
			ModelID:   model.ID,
			ModelName: model.Name,
			Reason:    blockedReasonActiveOrders,
		}}, nil
	}

	switch input.Mode {
	case enums.BulkUpdateModeUpdateBase:
		count, err := repo.CountActiveBaseTiers(ctx, model.ID)
		if err != nil {
			return classification{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count base tiers")
		}
		if count == 0 {
			return classification{blocked: &BlockedModel{
				ModelID:   model.ID,
				ModelName: model.Name,
				Reason:    blockedReasonNoBaseTier,
			}}, nil
		}
		if count > 1 {
			return classification{blocked: &BlockedModel{
				ModelID:   model.ID,
				ModelName: model.Name,
				Reason:    blockedReasonMultipleBases,
			}}, nil
		}
		base, err := repo.FindActiveBaseTier(ctx, model.ID)
		if err != nil {
			return classification{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load base tier")
		}
		spec := mergeOntoTier(base, input.Spec)
		before := snapshotTier(base)
		tierID := base.ID
		return classification{change: &ModelChange{
			ModelID:   model.ID,
			ModelName: model.Name,
			TierID:    &tierID,
			TierName:  spec.Name,
			Before:    &before,
			After:     specValues(spec),
		}}, nil

	case enums.BulkUpdateModeAddTier:
		spec := specFromUpdate(input.Spec)
		change := &ModelChange{
			ModelID:   model.ID,
			ModelName: model.Name,
			TierName:  spec.Name,
			After:     specValues(spec),
		}
		existing, err := repo.FindActiveTierByName(ctx, model.ID, spec.Name)
		if err != nil && err != gorm.ErrRecordNotFound {
			return classification{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tier by name")
		}
		if existing != nil {
			before := snapshotTier(existing)
			change.Before = &before
			id := existing.ID
			change.TierID = &id
		}
		return classification{change: change}, nil

	default:
		return classification{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid bulk update mode")
	}
}

// resolveSpec rebuilds the concrete tier spec for one model at apply time,
// reading the base tier inside the same transaction as the write.
func resolveSpec(ctx context.Context, repo Repository, modelID uuid.UUID, input BulkInput) (TierSpec, error) {
	if input.Mode == enums.BulkUpdateModeAddTier {
		return specFromUpdate(input.Spec), nil
	}
	base, err := repo.FindActiveBaseTier(ctx, modelID)
	if err != nil {
		return TierSpec{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load base tier")
	}
	return mergeOntoTier(base, input.Spec), nil
}

func (s *service) finishResult(result *PreviewResult, phase string, started time.Time) {
	result.ToApply = len(result.Changes)
	result.Blocked = len(result.BlockedList)
	result.Excluded = len(result.ExcludedIDs)
	s.metrics.IncBulkRun(phase)
	s.metrics.AddBulkModels("to_apply", result.ToApply)
	s.metrics.AddBulkModels("blocked", result.Blocked)
	s.metrics.AddBulkModels("excluded", result.Excluded)
	s.metrics.ObserveBulkDuration(time.Since(started))
}

func validateBulkInput(input BulkInput) error {
	if !input.Product.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product category")
	}
	if !input.Mode.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid bulk update mode")
	}
	switch input.Mode {
	case enums.BulkUpdateModeAddTier:
		if input.Spec.Name == nil || *input.Spec.Name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "tier name required for add_tier mode")
		}
		if input.Spec.Cost == nil || input.Spec.MarginPct == nil ||
			input.Spec.CardSurchargePct == nil || input.Spec.RoundingConstant == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "all price fields required for add_tier mode")
		}
	case enums.BulkUpdateModeUpdateBase:
		if input.Spec.Cost == nil && input.Spec.MarginPct == nil &&
			input.Spec.CardSurchargePct == nil && input.Spec.RoundingConstant == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "at least one price field required for update_base mode")
		}
	}
	if input.Spec.Cost != nil && input.Spec.Cost.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cost cannot be negative")
	}
	return nil
}

func excludedSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// mergeOntoTier lays the partial update over an existing tier's values.
func mergeOntoTier(tier *models.PriceTier, update PriceUpdateSpec) TierSpec {
	spec := TierSpec{
		Name:             tier.Name,
		IsBaseTier:       tier.IsBaseTier,
		Cost:             tier.Cost,
		MarginPct:        tier.MarginPct,
		CardSurchargePct: tier.CardSurchargePct,
		RoundingConstant: tier.RoundingConstant,
	}
	if update.Name != nil {
		spec.Name = *update.Name
	}
	if update.Cost != nil {
		spec.Cost = *update.Cost
	}
	if update.MarginPct != nil {
		spec.MarginPct = *update.MarginPct
	}
	if update.CardSurchargePct != nil {
		spec.CardSurchargePct = *update.CardSurchargePct
	}
	if update.RoundingConstant != nil {
		spec.RoundingConstant = *update.RoundingConstant
	}
	return spec
}

// specFromUpdate expands a full add_tier update into a concrete spec.
// validateBulkInput has already required every field.
func specFromUpdate(update PriceUpdateSpec) TierSpec {
	return TierSpec{
		Name:             *update.Name,
		IsBaseTier:       false,
		Cost:             *update.Cost,
		MarginPct:        *update.MarginPct,
		CardSurchargePct: *update.CardSurchargePct,
		RoundingConstant: *update.RoundingConstant,
	}
}

func snapshotTier(tier *models.PriceTier) TierValues {
	return TierValues{
		Cost:             tier.Cost,
		MarginPct:        tier.MarginPct,
		CardSurchargePct: tier.CardSurchargePct,
		RoundingConstant: tier.RoundingConstant,
		BasePrice:        tier.BasePrice,
		CardPrice:        tier.CardPrice,
	}
}

func specValues(spec TierSpec) TierValues {
	prices := ComputeTierPrices(spec.Cost, spec.MarginPct, spec.CardSurchargePct, spec.RoundingConstant)
	return TierValues{
		Cost:             spec.Cost,
		MarginPct:        spec.MarginPct,
		CardSurchargePct: spec.CardSurchargePct,
		RoundingConstant: spec.RoundingConstant,
		BasePrice:        prices.BasePrice,
		CardPrice:        prices.CardPrice,
	}
}
