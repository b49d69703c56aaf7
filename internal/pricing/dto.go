package pricing

import (
	"github.com/corralonsoft/corralon-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TierSpec is the full set of inputs for one price tier.
type TierSpec struct {
	Name             string          `json:"name"`
	IsBaseTier       bool            `json:"is_base_tier"`
	Cost             decimal.Decimal `json:"cost"`
	MarginPct        decimal.Decimal `json:"margin_pct"`
	CardSurchargePct decimal.Decimal `json:"card_surcharge_pct"`
	RoundingConstant decimal.Decimal `json:"rounding_constant"`
}

// PriceUpdateSpec is the partial spec the bulk workflow merges onto each
// model's base tier (update_base) or expands into a new tier (add_tier,
// where every field plus the name is required).
type PriceUpdateSpec struct {
	Name             *string          `json:"name,omitempty"`
	Cost             *decimal.Decimal `json:"cost,omitempty"`
	MarginPct        *decimal.Decimal `json:"margin_pct,omitempty"`
	CardSurchargePct *decimal.Decimal `json:"card_surcharge_pct,omitempty"`
	RoundingConstant *decimal.Decimal `json:"rounding_constant,omitempty"`
}

// BulkInput configures one bulk pricing run. Nothing is persisted between
// preview and commit; the caller resubmits the same input for both phases.
type BulkInput struct {
	Product          enums.ProductCategory `json:"product"`
	Mode             enums.BulkUpdateMode  `json:"mode"`
	Spec             PriceUpdateSpec       `json:"spec"`
	ExcludedModelIDs []uuid.UUID           `json:"excluded_model_ids"`
}

// TierValues is a point-in-time snapshot of a tier's pricing inputs and
// derived prices, used for before/after reporting.
type TierValues struct {
	Cost             decimal.Decimal `json:"cost"`
	MarginPct        decimal.Decimal `json:"margin_pct"`
	CardSurchargePct decimal.Decimal `json:"card_surcharge_pct"`
	RoundingConstant decimal.Decimal `json:"rounding_constant"`
	BasePrice        decimal.Decimal `json:"base_price"`
	CardPrice        decimal.Decimal `json:"card_price"`
}

// ModelChange is one to-apply entry in a preview or commit result.
type ModelChange struct {
	ModelID   uuid.UUID   `json:"model_id"`
	ModelName string      `json:"model_name"`
	TierID    *uuid.UUID  `json:"tier_id,omitempty"`
	TierName  string      `json:"tier_name"`
	Before    *TierValues `json:"before,omitempty"`
	After     TierValues  `json:"after"`
}

// BlockedModel names a model the workflow refused to touch and why.
type BlockedModel struct {
	ModelID   uuid.UUID `json:"model_id"`
	ModelName string    `json:"model_name"`
	Reason    string    `json:"reason"`
}

// PreviewResult reports the classification of every model in scope without
// performing any writes.
type PreviewResult struct {
	TotalModels int           `json:"total_models"`
	ToApply     int           `json:"to_apply"`
	Blocked     int           `json:"blocked"`
	Excluded    int           `json:"excluded"`
	Changes     []ModelChange `json:"changes"`
	BlockedList []BlockedModel `json:"blocked_list"`
	ExcludedIDs []uuid.UUID   `json:"excluded_ids"`
}

// AppliedModel confirms the tier written for one model at commit time.
type AppliedModel struct {
	ModelID uuid.UUID `json:"model_id"`
	TierID  uuid.UUID `json:"tier_id"`
}

// FailedModel reports a per-model commit failure; the rest of the batch is
// unaffected.
type FailedModel struct {
	ModelID uuid.UUID `json:"model_id"`
	Reason  string    `json:"reason"`
}

// CommitResult is the preview shape plus per-model confirmations and
// failures.
type CommitResult struct {
	PreviewResult
	Applied []AppliedModel `json:"applied"`
	Failed  []FailedModel  `json:"failed"`
}
