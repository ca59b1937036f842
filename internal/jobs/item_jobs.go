package jobs

import (
	"context"

	"rentdesk-backend/internal/logger"
)

const SyncItemStatusesJob = "SyncItemStatuses"

// SyncItemStatuses is the cron entry point. Rentals committed ahead of time only put
// their items on rent once their start passes, and expired ones release them here.
func (jr *JobRunner) SyncItemStatuses() {
	// runWithRecovery has already logged any failure; cron has nowhere to report it.
	_ = jr.RunSyncItemStatuses()
}

func (jr *JobRunner) RunSyncItemStatuses() error {
	return jr.runWithRecovery(SyncItemStatusesJob, func(ctx context.Context) error {
		res, err := jr.booking.SyncItemStatuses(ctx)
		if err != nil {
			return err
		}
		if res.Activated > 0 || res.Released > 0 {
			logger.Info("Item statuses synced", "activated", res.Activated, "released", res.Released)
		}
		return nil
	})
}
