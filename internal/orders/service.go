package orders

import (
	"context"
	"fmt"

	"github.com/corralonsoft/corralon-backend/pkg/db/models"
	"github.com/corralonsoft/corralon-backend/pkg/enums"
	pkgerrors "github.com/corralonsoft/corralon-backend/pkg/errors"
	"github.com/corralonsoft/corralon-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OrderLineInput is one line of a new order. When a price tier is named, the
// tier's base price is snapshotted onto the line so later tier edits do not
// reprice committed orders.
type OrderLineInput struct {
	StockID     uuid.UUID        `json:"stock_id"`
	Quantity    decimal.Decimal  `json:"quantity"`
	PriceTierID *uuid.UUID       `json:"price_tier_id,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateOrderInput registers a new customer order with its lines.
type CreateOrderInput struct {
	CustomerName string            `json:"customer_name"`
	Status       enums.OrderStatus `json:"status,omitempty"`
	Notes        *string           `json:"notes,omitempty"`
	Lines        []OrderLineInput  `json:"lines"`
}

// ChangeStatusInput moves an order to a new status. Transitions are not
// validated here; order state is owned by the sales flow and only read by
// the availability accounting.
type ChangeStatusInput struct {
	OrderID uuid.UUID         `json:"order_id"`
	Status  enums.OrderStatus `json:"status"`
}

// Service exposes the order write surface.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	ChangeStatus(ctx context.Context, input ChangeStatusInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*OrderPage, error)
}

// OrderPage is one cursor-paginated slice of the order list.
type OrderPage struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires an orders service with the required collaborators.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.CustomerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order line required")
	}
	status := input.Status
	if status == "" {
		status = enums.OrderStatusPending
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", status))
	}
	for i, line := range input.Lines {
		if line.StockID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: stock id required", i))
		}
		if !line.Quantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: quantity must be positive", i))
		}
	}

	order := &models.Order{
		ID:           uuid.New(),
		CustomerName: input.CustomerName,
		Status:       status,
		Notes:        input.Notes,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		for i, line := range input.Lines {
			stock, err := repo.FindStock(ctx, line.StockID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("line %d: stock record not found", i))
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
			}

			unitPrice := decimal.Zero
			if line.UnitPrice != nil {
				unitPrice = *line.UnitPrice
			}
			if line.PriceTierID != nil {
				tier, err := repo.FindTier(ctx, *line.PriceTierID)
				if err != nil {
					if err == gorm.ErrRecordNotFound {
						return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("line %d: price tier not found", i))
					}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load price tier")
				}
				if tier.ModelID != stock.ModelID {
					return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: price tier belongs to another model", i))
				}
				if line.UnitPrice == nil {
					unitPrice = tier.BasePrice
				}
			}

			record := &models.OrderLine{
				ID:          uuid.New(),
				OrderID:     order.ID,
				StockID:     line.StockID,
				Quantity:    line.Quantity,
				PriceTierID: line.PriceTierID,
				UnitPrice:   unitPrice,
			}
			if err := repo.CreateLine(ctx, record); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order line")
			}
			order.Lines = append(order.Lines, *record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) ChangeStatus(ctx context.Context, input ChangeStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", input.Status))
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if found.Status == input.Status {
			order = found
			return nil
		}
		if err := repo.UpdateStatus(ctx, found.ID, input.Status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		found.Status = input.Status
		order = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*OrderPage, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", *status))
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	list, err := s.repo.List(ctx, status, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	page := &OrderPage{Orders: list}
	if len(list) > limit {
		page.Orders = list[:limit]
		last := page.Orders[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}
