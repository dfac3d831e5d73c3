package jobs

import (
	"context"
	"fmt"
)

// JobManager coordinates the background jobs of the process.
type JobManager struct {
	inventoryRefreshJob *InventoryRefreshJob
	deliveryTracker     *DeliveryTracker
}

// NewJobManager wires the background jobs started by Start.
func NewJobManager(inventoryRefreshJob *InventoryRefreshJob, deliveryTracker *DeliveryTracker) *JobManager {
	return &JobManager{
		inventoryRefreshJob: inventoryRefreshJob,
		deliveryTracker:     deliveryTracker,
	}
}

// StartAll loads the first stock snapshot and starts the refresh schedule.
// The first load must succeed: an empty ledger would mark every order short.
func (jm *JobManager) StartAll(ctx context.Context) error {
	if err := jm.inventoryRefreshJob.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load inventory: %w", err)
	}
	if err := jm.inventoryRefreshJob.Start(); err != nil {
		return fmt.Errorf("failed to start inventory refresh job: %w", err)
	}
	return nil
}

// StopAll stops the refresh schedule and cancels every delivery run.
func (jm *JobManager) StopAll() {
	jm.inventoryRefreshJob.Stop()
	jm.deliveryTracker.StopAll()
}
