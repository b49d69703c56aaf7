package stock

import (
	"github.com/corralonsoft/corralon-backend/pkg/db/models"
	"github.com/corralonsoft/corralon-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateStockInput starts inventory tracking for a catalog model.
type CreateStockInput struct {
	ModelID             uuid.UUID       `json:"model_id"`
	Unit                enums.StockUnit `json:"unit"`
	InitialQuantity     decimal.Decimal `json:"initial_quantity"`
	DailyProductionRate decimal.Decimal `json:"daily_production_rate"`
	Responsible         string          `json:"responsible"`
}

// MovementInput carries a signed quantity change for a stock record.
type MovementInput struct {
	StockID     uuid.UUID       `json:"stock_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Responsible string          `json:"responsible"`
}

// OverwriteInput replaces the materialized quantity outside the signed
// add/subtract path. Only allowed while the record is empty or inactive.
type OverwriteInput struct {
	StockID     uuid.UUID       `json:"stock_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Responsible string          `json:"responsible"`
}

// UpdateMetadataInput changes descriptive fields without touching quantity.
type UpdateMetadataInput struct {
	StockID             uuid.UUID        `json:"stock_id"`
	Unit                *enums.StockUnit `json:"unit,omitempty"`
	DailyProductionRate *decimal.Decimal `json:"daily_production_rate,omitempty"`
	IsActive            *bool            `json:"is_active,omitempty"`
}

// MutationResult reports the state of a stock record after a ledger write.
type MutationResult struct {
	Record       *models.StockRecord `json:"record"`
	Movement     *models.StockMovement `json:"movement,omitempty"`
	Availability Availability        `json:"availability"`
}

// Availability breaks down how much of the on-hand quantity is spoken for.
type Availability struct {
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	Reserved        decimal.Decimal `json:"reserved"`
	Pending         decimal.Decimal `json:"pending"`
	Available       decimal.Decimal `json:"available"`
}

// Detail is the full read model for one stock record.
type Detail struct {
	Record       *models.StockRecord    `json:"record"`
	Movements    []models.StockMovement `json:"movements"`
	Availability Availability           `json:"availability"`
}

// ReconcileResult reports the rebuilt state for one stock record.
type ReconcileResult struct {
	StockID          uuid.UUID       `json:"stock_id"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	Quantity         decimal.Decimal `json:"quantity"`
}

// ReconcileFailure records a per-stock reconciliation error without aborting
// the rest of the batch.
type ReconcileFailure struct {
	StockID uuid.UUID `json:"stock_id"`
	Reason  string    `json:"reason"`
}

// ReconcileReport aggregates a reconcile-all run.
type ReconcileReport struct {
	Reconciled []ReconcileResult  `json:"reconciled"`
	Failed     []ReconcileFailure `json:"failed"`
}
