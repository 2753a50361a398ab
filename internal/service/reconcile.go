package service

import (
	"context"
	"log/slog"
	"time"

	"verseflow/internal/middleware"
	"verseflow/internal/observability"
	"verseflow/internal/repository"
)

// ReconcileService heals drift between denormalized counters and their source
// tables. Drift is expected to be rare (crash between statements, manual data
// surgery) and small; the job runs on a schedule rather than on demand.
type ReconcileService struct {
	engagementRepo repository.EngagementRepository
}

// NewReconcileService creates a new reconcile service.
func NewReconcileService(engagementRepo repository.EngagementRepository) *ReconcileService {
	return &ReconcileService{engagementRepo: engagementRepo}
}

// Run recomputes counters and logs what was repaired.
func (s *ReconcileService) Run(ctx context.Context) error {
	span, ctx := observability.NewSpan(ctx, "reconcile.Run")
	defer span.End()

	start := time.Now()
	repaired, err := s.engagementRepo.ReconcileCounters(ctx)
	if err != nil {
		span.SetError(err)
		middleware.Logger.ErrorContext(ctx, "counter reconciliation failed",
			slog.String("error", err.Error()))
		return err
	}

	total := int64(0)
	for counter, rows := range repaired {
		observability.CounterDriftRepaired.WithLabelValues(counter).Add(float64(rows))
		total += rows
	}

	middleware.Logger.InfoContext(ctx, "counter reconciliation completed",
		slog.Int64("repaired_rows", total),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}
