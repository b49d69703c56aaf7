package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/corralonsoft/corralon-backend/pkg/db"
	"github.com/corralonsoft/corralon-backend/pkg/db/models"
	pkgerrors "github.com/corralonsoft/corralon-backend/pkg/errors"
	"github.com/corralonsoft/corralon-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReconcileResponsible tags the synthetic movement written when a stock
// record's ledger is rebuilt from delivered orders.
const ReconcileResponsible = "automatic reconciliation"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CommitmentReader reports how much of a stock record is committed to active
// orders. Implemented by the reservations package. A nil tx reads committed
// state; a non-nil tx reads inside the caller's transaction.
type CommitmentReader interface {
	Commitments(ctx context.Context, tx *gorm.DB, stockID uuid.UUID) (reserved, pending decimal.Decimal, err error)
}

// Service exposes the ledger-backed stock operations.
type Service interface {
	Create(ctx context.Context, input CreateStockInput) (*models.StockRecord, error)
	Get(ctx context.Context, stockID uuid.UUID) (*Detail, error)
	List(ctx context.Context) ([]models.StockRecord, error)
	UpdateMetadata(ctx context.Context, input UpdateMetadataInput) (*models.StockRecord, error)
	RecordMovement(ctx context.Context, input MovementInput) (*MutationResult, error)
	AddStock(ctx context.Context, input MovementInput) (*MutationResult, error)
	SubtractStock(ctx context.Context, input MovementInput) (*MutationResult, error)
	OverwriteQuantity(ctx context.Context, input OverwriteInput) (*MutationResult, error)
	Reconcile(ctx context.Context, stockID uuid.UUID) (*ReconcileResult, error)
	ReconcileAll(ctx context.Context) (*ReconcileReport, error)
}

type service struct {
	repo        Repository
	tx          txRunner
	commitments CommitmentReader
	metrics     *metrics.CoreMetrics
}

// NewService wires a stock service with the required collaborators.
func NewService(repo Repository, tx txRunner, commitments CommitmentReader, m *metrics.CoreMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if commitments == nil {
		return nil, fmt.Errorf("commitment reader required")
	}
	return &service{repo: repo, tx: tx, commitments: commitments, metrics: m}, nil
}

func (s *service) Create(ctx context.Context, input CreateStockInput) (*models.StockRecord, error) {
	if input.ModelID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "model id required")
	}
	if !input.Unit.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stock unit %q", input.Unit))
	}
	if input.InitialQuantity.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial quantity cannot be negative")
	}
	if input.InitialQuantity.IsPositive() && input.Responsible == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "responsible required when seeding quantity")
	}

	record := &models.StockRecord{
		ID:                  uuid.New(),
		ModelID:             input.ModelID,
		CurrentQuantity:     input.InitialQuantity,
		Unit:                input.Unit,
		DailyProductionRate: input.DailyProductionRate,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, record); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "stock already tracked for model")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stock record")
		}
		if input.InitialQuantity.IsPositive() {
			movement := &models.StockMovement{
				ID:             uuid.New(),
				StockID:        record.ID,
				SignedQuantity: input.InitialQuantity,
				Responsible:    input.Responsible,
			}
			if err := repo.CreateMovement(ctx, movement); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record initial movement")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) Get(ctx context.Context, stockID uuid.UUID) (*Detail, error) {
	if stockID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock id required")
	}
	record, err := s.repo.FindByID(ctx, stockID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
	}
	movements, err := s.repo.ListMovements(ctx, stockID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock movements")
	}
	availability, err := s.availability(ctx, nil, record)
	if err != nil {
		return nil, err
	}
	return &Detail{Record: record, Movements: movements, Availability: availability}, nil
}

func (s *service) List(ctx context.Context) ([]models.StockRecord, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock records")
	}
	return records, nil
}

func (s *service) UpdateMetadata(ctx context.Context, input UpdateMetadataInput) (*models.StockRecord, error) {
	if input.StockID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock id required")
	}
	updates := map[string]any{}
	if input.Unit != nil {
		if !input.Unit.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stock unit %q", *input.Unit))
		}
		updates["unit"] = *input.Unit
	}
	if input.DailyProductionRate != nil {
		if input.DailyProductionRate.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "daily production rate cannot be negative")
		}
		updates["daily_production_rate"] = *input.DailyProductionRate
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	updates["updated_at"] = time.Now().UTC()

	var record *models.StockRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.FindByIDForUpdate(ctx, input.StockID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
		}
		if err := repo.Update(ctx, found.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock record")
		}
		record, err = repo.FindByID(ctx, found.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload stock record")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// RecordMovement appends an audit row and shifts the materialized quantity by
// the same signed amount, keeping the ledger sum equal to the aggregate.
func (s *service) RecordMovement(ctx context.Context, input MovementInput) (*MutationResult, error) {
	if err := validateMovement(input, false); err != nil {
		return nil, err
	}
	result, err := s.applyMovement(ctx, input.StockID, input.Quantity, input.Responsible)
	if err == nil {
		if input.Quantity.IsPositive() {
			s.metrics.IncMovement("in")
		} else {
			s.metrics.IncMovement("out")
		}
	}
	return result, err
}

func (s *service) AddStock(ctx context.Context, input MovementInput) (*MutationResult, error) {
	if err := validateMovement(input, true); err != nil {
		return nil, err
	}
	result, err := s.applyMovement(ctx, input.StockID, input.Quantity, input.Responsible)
	if err == nil {
		s.metrics.IncMovement("in")
	}
	return result, err
}

func (s *service) SubtractStock(ctx context.Context, input MovementInput) (*MutationResult, error) {
	if err := validateMovement(input, true); err != nil {
		return nil, err
	}

	var result *MutationResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := repo.FindByIDForUpdate(ctx, input.StockID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
		}

		reserved, pending, err := s.commitments.Commitments(ctx, tx, record.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read order commitments")
		}
		available := record.CurrentQuantity.Sub(reserved).Sub(pending)
		if !available.IsPositive() || input.Quantity.GreaterThan(available) {
			s.metrics.IncInsufficientStock()
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "requested quantity exceeds available stock").
				WithDetails(Availability{
					CurrentQuantity: record.CurrentQuantity,
					Reserved:        reserved,
					Pending:         pending,
					Available:       available,
				})
		}

		result, err = s.writeMovement(ctx, repo, record, input.Quantity.Neg(), input.Responsible, reserved, pending)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncMovement("out")
	return result, nil
}

// OverwriteQuantity replaces the materialized quantity directly. The guard is
// enforced here, not trusted from the edit form: only an empty or inactive
// record may be overwritten. The delta still lands in the ledger.
func (s *service) OverwriteQuantity(ctx context.Context, input OverwriteInput) (*MutationResult, error) {
	if input.StockID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock id required")
	}
	if input.Responsible == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "responsible required")
	}
	if input.Quantity.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	var result *MutationResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := repo.FindByIDForUpdate(ctx, input.StockID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
		}
		if !record.CurrentQuantity.IsZero() && record.IsActive {
			return pkgerrors.New(pkgerrors.CodeConflict, "quantity can only be overwritten while stock is empty or inactive")
		}

		delta := input.Quantity.Sub(record.CurrentQuantity)
		result, err = s.writeMovement(ctx, repo, record, delta, input.Responsible, decimal.Zero, decimal.Zero)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reconcile rebuilds one stock record from delivered order history: the
// quantity becomes the delivered total and the movement log collapses into a
// single synthetic entry. Runs under the same row lock as live mutations.
func (s *service) Reconcile(ctx context.Context, stockID uuid.UUID) (*ReconcileResult, error) {
	if stockID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock id required")
	}

	var result *ReconcileResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := repo.FindByIDForUpdate(ctx, stockID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
		}

		delivered, err := repo.SumDeliveredLines(ctx, record.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum delivered order lines")
		}
		if err := repo.DeleteMovements(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear movement history")
		}
		if !delivered.IsZero() {
			movement := &models.StockMovement{
				ID:             uuid.New(),
				StockID:        record.ID,
				SignedQuantity: delivered,
				Responsible:    ReconcileResponsible,
			}
			if err := repo.CreateMovement(ctx, movement); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write reconciliation movement")
			}
		}
		if err := repo.Update(ctx, record.ID, map[string]any{
			"current_quantity": delivered,
			"updated_at":       time.Now().UTC(),
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock quantity")
		}

		result = &ReconcileResult{
			StockID:          record.ID,
			PreviousQuantity: record.CurrentQuantity,
			Quantity:         delivered,
		}
		return nil
	})
	if err != nil {
		s.metrics.IncReconciliation("failure")
		return nil, err
	}
	s.metrics.IncReconciliation("success")
	return result, nil
}

// ReconcileAll runs Reconcile for every stock record. A failing record is
// reported and skipped, the rest of the batch proceeds.
func (s *service) ReconcileAll(ctx context.Context) (*ReconcileReport, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock records")
	}

	report := &ReconcileReport{}
	for _, record := range records {
		result, err := s.Reconcile(ctx, record.ID)
		if err != nil {
			report.Failed = append(report.Failed, ReconcileFailure{
				StockID: record.ID,
				Reason:  err.Error(),
			})
			continue
		}
		report.Reconciled = append(report.Reconciled, *result)
	}
	return report, nil
}

func (s *service) applyMovement(ctx context.Context, stockID uuid.UUID, delta decimal.Decimal, responsible string) (*MutationResult, error) {
	var result *MutationResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := repo.FindByIDForUpdate(ctx, stockID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
		}
		reserved, pending, err := s.commitments.Commitments(ctx, tx, record.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read order commitments")
		}
		result, err = s.writeMovement(ctx, repo, record, delta, responsible, reserved, pending)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// writeMovement appends the ledger row and moves the aggregate in one step.
// Callers hold the row lock. A zero delta skips the ledger row.
func (s *service) writeMovement(ctx context.Context, repo Repository, record *models.StockRecord, delta decimal.Decimal, responsible string, reserved, pending decimal.Decimal) (*MutationResult, error) {
	var movement *models.StockMovement
	if !delta.IsZero() {
		movement = &models.StockMovement{
			ID:             uuid.New(),
			StockID:        record.ID,
			SignedQuantity: delta,
			Responsible:    responsible,
		}
		if err := repo.CreateMovement(ctx, movement); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record movement")
		}
	}

	quantity := record.CurrentQuantity.Add(delta)
	if err := repo.Update(ctx, record.ID, map[string]any{
		"current_quantity": quantity,
		"updated_at":       time.Now().UTC(),
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock quantity")
	}
	record.CurrentQuantity = quantity

	return &MutationResult{
		Record:   record,
		Movement: movement,
		Availability: Availability{
			CurrentQuantity: quantity,
			Reserved:        reserved,
			Pending:         pending,
			Available:       quantity.Sub(reserved).Sub(pending),
		},
	}, nil
}

func (s *service) availability(ctx context.Context, tx *gorm.DB, record *models.StockRecord) (Availability, error) {
	reserved, pending, err := s.commitments.Commitments(ctx, tx, record.ID)
	if err != nil {
		return Availability{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read order commitments")
	}
	return Availability{
		CurrentQuantity: record.CurrentQuantity,
		Reserved:        reserved,
		Pending:         pending,
		Available:       record.CurrentQuantity.Sub(reserved).Sub(pending),
	}, nil
}

func validateMovement(input MovementInput, positiveOnly bool) error {
	if input.StockID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock id required")
	}
	if input.Responsible == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "responsible required")
	}
	if input.Quantity.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be zero")
	}
	if positiveOnly && input.Quantity.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return nil
}
