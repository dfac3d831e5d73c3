package jobs

import (
	"context"
	"log/slog"

	"orderflow/internal/core/domain/model/inventory"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// DefaultRefreshSchedule reloads stock every five minutes.
const DefaultRefreshSchedule = "0 */5 * * * *"

// StockReplacer accepts a new stock snapshot. *inventory.Ledger implements it.
type StockReplacer interface {
	Replace(items []inventory.Item) error
}

// InventoryRefreshJob reloads the ledger from the stock store on a schedule.
type InventoryRefreshJob struct {
	repo     ports.InventoryRepository
	ledger   StockReplacer
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewInventoryRefreshJob reloads ledger from repo on the given cron schedule.
func NewInventoryRefreshJob(
	repo ports.InventoryRepository,
	ledger StockReplacer,
	schedule string,
	logger *slog.Logger,
) *InventoryRefreshJob {
	if schedule == "" {
		schedule = DefaultRefreshSchedule
	}
	return &InventoryRefreshJob{
		repo:     repo,
		ledger:   ledger,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "inventory_refresh_job"),
	}
}

// Refresh loads one snapshot and swaps it in. On error the ledger is unchanged.
func (j *InventoryRefreshJob) Refresh(ctx context.Context) error {
	items, err := j.repo.LoadStock(ctx)
	if err == nil {
		err = j.ledger.Replace(items)
	}
	if err != nil {
		metrics.InventoryRefreshTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return err
	}
	metrics.InventoryRefreshTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	j.logger.DebugContext(ctx, "Inventory refreshed", "materials", len(items))
	return nil
}

// Start schedules Refresh.
func (j *InventoryRefreshJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()
		if refreshErr := j.Refresh(ctx); refreshErr != nil {
			j.logger.ErrorContext(ctx, "Inventory refresh failed", "error", refreshErr)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Inventory refresh job started", "schedule", j.schedule)
	return nil
}

// Stop stops the schedule and waits for a running refresh.
func (j *InventoryRefreshJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Inventory refresh job stopped")
}
