package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/corralonsoft/corralon-backend/internal/stock"
)

type fakeReconciler struct {
	report *stock.ReconcileReport
	err    error
	calls  int
}

func (f *fakeReconciler) ReconcileAll(context.Context) (*stock.ReconcileReport, error) {
	f.calls++
	return f.report, f.err
}

func TestReconcileJobReportsCleanRun(t *testing.T) {
	reconciler := &fakeReconciler{report: &stock.ReconcileReport{
		Reconciled: []stock.ReconcileResult{
			{StockID: uuid.New(), Quantity: decimal.NewFromInt(40)},
		},
	}}
	job, err := NewReconcileJob(ReconcileJobParams{Logger: testLogger(), Stock: reconciler})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	require.Equal(t, 1, reconciler.calls)
}

func TestReconcileJobSurfacesPerStockFailures(t *testing.T) {
	reconciler := &fakeReconciler{report: &stock.ReconcileReport{
		Failed: []stock.ReconcileFailure{
			{StockID: uuid.New(), Reason: "record not found"},
		},
	}}
	job, err := NewReconcileJob(ReconcileJobParams{Logger: testLogger(), Stock: reconciler})
	require.NoError(t, err)

	require.Error(t, job.Run(context.Background()))
}

func TestReconcileJobPropagatesServiceError(t *testing.T) {
	reconciler := &fakeReconciler{err: errors.New("db down")}
	job, err := NewReconcileJob(ReconcileJobParams{Logger: testLogger(), Stock: reconciler})
	require.NoError(t, err)

	require.Error(t, job.Run(context.Background()))
	require.Equal(t, 1, reconciler.calls)
}

func TestNewReconcileJobValidatesParams(t *testing.T) {
	_, err := NewReconcileJob(ReconcileJobParams{Logger: testLogger()})
	require.Error(t, err)

	_, err = NewReconcileJob(ReconcileJobParams{Stock: &fakeReconciler{}})
	require.Error(t, err)
}
