package tasks

import (
	"context"
	"fmt"
	"time"
)

// newJournalMaintenanceTask creates the scheduled task that prunes delivery
// journal entries past the configured retention and then compacts the
// database.
func newJournalMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "journal_maintenance")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled journal maintenance task...")
		startTime := time.Now()

		retention := time.Duration(deps.Config.Database.RetentionDays) * 24 * time.Hour
		cutoff := time.Now().UTC().Add(-retention)

		pruned, err := deps.Store.PruneDeliveries(ctx, cutoff)
		if err != nil {
			log.ErrorContext(ctx, "Journal pruning failed", "error", err, "cutoff", cutoff)
			return fmt.Errorf("journal pruning failed: %w", err)
		}
		log.InfoContext(ctx, "Journal pruned", "pruned", pruned, "cutoff", cutoff)

		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "Journal maintenance task failed", "error", err, "duration", time.Since(startTime))
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled journal maintenance task completed successfully", "duration", time.Since(startTime))
		return nil
	}
}
