package reservations

import (
	"context"
	"fmt"

	"github.com/corralonsoft/corralon-backend/pkg/enums"
	pkgerrors "github.com/corralonsoft/corralon-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service derives reserved, pending and available quantities from live order
// state. Stateless: nothing is cached between calls.
type Service interface {
	ReservedQuantity(ctx context.Context, stockID uuid.UUID) (decimal.Decimal, error)
	PendingQuantity(ctx context.Context, stockID uuid.UUID) (decimal.Decimal, error)
	Availability(ctx context.Context, stockID uuid.UUID) (*Breakdown, error)
	HasActiveOrders(ctx context.Context, modelID uuid.UUID) (bool, error)
	Commitments(ctx context.Context, tx *gorm.DB, stockID uuid.UUID) (reserved, pending decimal.Decimal, err error)
}

// Breakdown is the availability view for one stock record. Available may go
// negative when orders over-commit the on-hand quantity.
type Breakdown struct {
	StockID         uuid.UUID       `json:"stock_id"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	Reserved        decimal.Decimal `json:"reserved"`
	Pending         decimal.Decimal `json:"pending"`
	Available       decimal.Decimal `json:"available"`
}

type service struct {
	repo Repository
}

// NewService wires a reservations service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reservations repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ReservedQuantity(ctx context.Context, stockID uuid.UUID) (decimal.Decimal, error) {
	if stockID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "stock id required")
	}
	total, err := s.repo.SumLineQuantity(ctx, stockID, enums.OrderStatusReserved)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum reserved lines")
	}
	return total, nil
}

func (s *service) PendingQuantity(ctx context.Context, stockID uuid.UUID) (decimal.Decimal, error) {
	if stockID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "stock id required")
	}
	total, err := s.repo.SumLineQuantity(ctx, stockID, enums.OrderStatusPending)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum pending lines")
	}
	return total, nil
}

func (s *service) Availability(ctx context.Context, stockID uuid.UUID) (*Breakdown, error) {
	if stockID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock id required")
	}
	current, err := s.repo.CurrentQuantity(ctx, stockID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
	}
	reserved, pending, err := s.Commitments(ctx, nil, stockID)
	if err != nil {
		return nil, err
	}
	return &Breakdown{
		StockID:         stockID,
		CurrentQuantity: current,
		Reserved:        reserved,
		Pending:         pending,
		Available:       current.Sub(reserved).Sub(pending),
	}, nil
}

func (s *service) HasActiveOrders(ctx context.Context, modelID uuid.UUID) (bool, error) {
	if modelID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "model id required")
	}
	active, err := s.repo.HasActiveLinesForModel(ctx, modelID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan active order lines")
	}
	return active, nil
}

// Commitments satisfies the reader interface the stock service locks against.
// A non-nil tx scopes the scan to the caller's transaction.
func (s *service) Commitments(ctx context.Context, tx *gorm.DB, stockID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	repo := s.repo.WithTx(tx)
	reserved, err := repo.SumLineQuantity(ctx, stockID, enums.OrderStatusReserved)
	if err != nil {
		return decimal.Zero, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum reserved lines")
	}
	pending, err := repo.SumLineQuantity(ctx, stockID, enums.OrderStatusPending)
	if err != nil {
		return decimal.Zero, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum pending lines")
	}
	return reserved, pending, nil
}
