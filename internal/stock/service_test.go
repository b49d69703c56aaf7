package stock

import (
	"context"
	"testing"

	"github.com/corralonsoft/corralon-backend/pkg/enums"
	pkgerrors "github.com/corralonsoft/corralon-backend/pkg/errors"
	"github.com/corralonsoft/corralon-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})
}

type stubCommitments struct {
	reserved decimal.Decimal
	pending  decimal.Decimal
	err      error
}

func (s stubCommitments) Commitments(ctx context.Context, tx *gorm.DB, stockID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	return s.reserved, s.pending, s.err
}

func newTestService(t *testing.T, db *gorm.DB, commitments CommitmentReader) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), testTxRunner{db: db}, commitments, metrics.NewCoreMetrics(nil))
	require.NoError(t, err)
	return svc
}

func TestService_MovementValidation(t *testing.T) {
	db := setupStockTestDB(t)
	svc := newTestService(t, db, stubCommitments{})

	tests := []struct {
		name  string
		input MovementInput
	}{
		{
			name: "missing stock id",
			input: MovementInput{
				Quantity:    decimal.NewFromInt(5),
				Responsible: "deposito",
			},
		},
		{
			name: "missing responsible",
			input: MovementInput{
				StockID:  uuid.New(),
				Quantity: decimal.NewFromInt(5),
			},
		},
		{
			name: "zero quantity",
			input: MovementInput{
				StockID:     uuid.New(),
				Responsible: "deposito",
			},
		},
		{
			name: "negative quantity",
			input: MovementInput{
				StockID:     uuid.New(),
				Quantity:    decimal.NewFromInt(-4),
				Responsible: "deposito",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddStock(context.Background(), tc.input)
			require.Error(t, err)
			coded := pkgerrors.As(err)
			require.NotNil(t, coded)
			assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
		})
	}
}

func TestService_AddStockAppendsLedger(t *testing.T) {
	db := setupStockTestDB(t)
	svc := newTestService(t, db, stubCommitments{})
	ctx := context.Background()

	model := mustCreateTestModel(t, db)
	record := mustCreateTestStock(t, db, model.ID, "0", true)

	result, err := svc.AddStock(ctx, MovementInput{
		StockID:     record.ID,
		Quantity:    decimal.RequireFromString("25.5"),
		Responsible: "corralon",
	})
	require.NoError(t, err)
	assert.True(t, result.Record.CurrentQuantity.Equal(decimal.RequireFromString("25.5")))
	require.NotNil(t, result.Movement)
	assert.True(t, result.Movement.SignedQuantity.Equal(decimal.RequireFromString("25.5")))
	assert.Equal(t, "corralon", result.Movement.Responsible)
}

func TestService_LedgerAggregateConsistency(t *testing.T) {
	db := setupStockTestDB(t)
	svc := newTestService(t, db, stubCommitments{})
	repo := NewRepository(db)
	ctx := context.Background()

	model := mustCreateTestModel(t, db)
	record := mustCreateTestStock(t, db, model.ID, "0", true)

	steps := []struct {
		add string
		sub string
	}{
		{add: "100"},
		{sub: "12.5"},
		{add: "3"},
		{sub: "40"},
		{add: "0.75"},
	}
	for _, step := range steps {
		var err error
		if step.add != "" {
			_, err = svc.AddStock(ctx, MovementInput{
				StockID:     record.ID,
				Quantity:    decimal.RequireFromString(step.add),
				Responsible: "deposito",
			})
		} else {
			_, err = svc.SubtractStock(ctx, MovementInput{
				StockID:     record.ID,
				Quantity:    decimal.RequireFromString(step.sub),
				Responsible: "deposito",
			})
		}
		require.NoError(t, err)

		reloaded, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		sum, err := repo.SumMovements(ctx, record.ID)
		require.NoError(t, err)
		assert.True(t, reloaded.CurrentQuantity.Equal(sum),
			"aggregate %s diverged from ledger sum %s", reloaded.CurrentQuantity, sum)
	}
}

func TestService_SubtractStockAvailabilityScenario(t *testing.T) {
	db := setupStockTestDB(t)
	commitments := stubCommitments{
		reserved: decimal.NewFromInt(30),
		pending:  decimal.NewFromInt(10),
	}
	svc := newTestService(t, db, commitments)
	ctx := context.Background()

	model := mustCreateTestModel(t, db)
	record := mustCreateTestStock(t, db, model.ID, "100", true)

	_, err := svc.SubtractStock(ctx, MovementInput{
		StockID:     record.ID,
		Quantity:    decimal.NewFromInt(61),
		Responsible: "ventas",
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, coded.Code())

	result, err := svc.SubtractStock(ctx, MovementInput{
		StockID:     record.ID,
		Quantity:    decimal.NewFromInt(60),
		Responsible: "ventas",
	})
	require.NoError(t, err)
	assert.True(t, result.Availability.Available.IsZero(),
		"available = %s", result.Availability.Available)
	assert.True(t, result.Record.CurrentQuantity.Equal(decimal.NewFromInt(40)))
}

func TestService_SubtractStockOverReserved(t *testing.T) {
	db := setupStockTestDB(t)
	commitments := stubCommitments{
		reserved: decimal.NewFromInt(120),
		pending:  decimal.Zero,
	}
	svc := newTestService(t, db, commitments)
	ctx := context.Background()

	model := mustCreateTestModel(t, db)
	record := mustCreateTestStock(t, db, model.ID, "100", true)

	// available is -20: no subtraction at all, not even a small one
	_, err := svc.SubtractStock(ctx, MovementInput{
		StockID:     record.ID,
		Quantity:    decimal.NewFromInt(1),
		Responsible: "ventas",
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, coded.Code())
}

func TestService_OverwriteQuantityGuard(t *testing.T) {
	db := setupStockTestDB(t)
	svc := newTestService(t, db, stubCommitments{})
	repo := NewRepository(db)
	ctx := context.Background()

	model := mustCreateTestModel(t, db)
	active := mustCreateTestStock(t, db, model.ID, "50", true)

	_, err := svc.OverwriteQuantity(ctx, OverwriteInput{
		StockID:     active.ID,
		Quantity:    decimal.NewFromInt(80),
		Responsible: "admin",
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())

	inactive := mustCreateTestStock(t, db, mustCreateTestModel(t, db).ID, "50", false)
	result, err := svc.OverwriteQuantity(ctx, OverwriteInput{
		StockID:     inactive.ID,
		Quantity:    decimal.NewFromInt(80),
		Responsible: "admin",
	})
	require.NoError(t, err)
	assert.True(t, result.Record.CurrentQuantity.Equal(decimal.NewFromInt(80)))
	require.NotNil(t, result.Movement)
	assert.True(t, result.Movement.SignedQuantity.Equal(decimal.NewFromInt(30)),
		"overwrite delta should land in the ledger")

	sum, err := repo.SumMovements(ctx, inactive.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(30)))
}

func TestService_Reconcile(t *testing.T) {
	db := setupStockTestDB(t)
	svc := newTestService(t, db, stubCommitments{})
	repo := NewRepository(db)
	ctx := context.Background()

	model := mustCreateTestModel(t, db)
	record := mustCreateTestStock(t, db, model.ID, "999", true)
	for i := 0; i < 4; i++ {
		_, err := svc.RecordMovement(ctx, MovementInput{
			StockID:     record.ID,
			Quantity:    decimal.NewFromInt(int64(i + 1)),
			Responsible: "deposito",
		})
		require.NoError(t, err)
	}

	mustCreateTestOrder(t, db, enums.OrderStatusDelivered, record.ID, "35")
	mustCreateTestOrder(t, db, enums.OrderStatusDelivered, record.ID, "7.5")
	mustCreateTestOrder(t, db, enums.OrderStatusReserved, record.ID, "500")

	result, err := svc.Reconcile(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, result.PreviousQuantity.Equal(decimal.RequireFromString("1009")))
	assert.True(t, result.Quantity.Equal(decimal.RequireFromString("42.5")))

	movements, err := repo.ListMovements(ctx, record.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1, "history collapses into one synthetic entry")
	assert.Equal(t, ReconcileResponsible, movements[0].Responsible)
	assert.True(t, movements[0].SignedQuantity.Equal(decimal.RequireFromString("42.5")))

	reloaded, err := repo.FindByID(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.CurrentQuantity.Equal(decimal.RequireFromString("42.5")))
}

func TestService_ReconcileZeroHistory(t *testing.T) {
	db := setupStockTestDB(t)
	svc := newTestService(t, db, stubCommitments{})
	repo := NewRepository(db)
	ctx := context.Background()

	model := mustCreateTestModel(t, db)
	record := mustCreateTestStock(t, db, model.ID, "15", true)

	result, err := svc.Reconcile(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, result.Quantity.IsZero())

	movements, err := repo.ListMovements(ctx, record.ID)
	require.NoError(t, err)
	assert.Empty(t, movements, "no delivered history leaves the ledger empty")
}
