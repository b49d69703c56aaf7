package cron

import (
	"context"
	"fmt"

	"github.com/corralonsoft/corralon-backend/internal/stock"
	"github.com/corralonsoft/corralon-backend/pkg/logger"
)

type stockReconciler interface {
	ReconcileAll(ctx context.Context) (*stock.ReconcileReport, error)
}

// ReconcileJobParams configure the nightly stock reconciliation.
type ReconcileJobParams struct {
	Logger *logger.Logger
	Stock  stockReconciler
}

// NewReconcileJob builds the job that rebuilds every stock quantity from
// delivered order history.
func NewReconcileJob(params ReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock service required")
	}
	return &reconcileJob{
		logg:  params.Logger,
		stock: params.Stock,
	}, nil
}

type reconcileJob struct {
	logg  *logger.Logger
	stock stockReconciler
}

func (j *reconcileJob) Name() string { return "stock-reconcile" }

func (j *reconcileJob) Run(ctx context.Context) error {
	report, err := j.stock.ReconcileAll(ctx)
	if err != nil {
		return fmt.Errorf("reconcile all: %w", err)
	}

	ctx = j.logg.WithFields(ctx, map[string]any{
		"reconciled": len(report.Reconciled),
		"failed":     len(report.Failed),
	})
	for _, failure := range report.Failed {
		failCtx := j.logg.WithStockID(ctx, failure.StockID.String())
		j.logg.Warn(failCtx, "stock record skipped: "+failure.Reason)
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d stock records failed to reconcile", len(report.Failed))
	}

	j.logg.Info(ctx, "stock reconciliation complete")
	return nil
}
