package tasks

import (
	"context"
	"fmt"
	"time"
)

// statsWindow is how far back the stats task looks when summarizing
// delivery outcomes.
const statsWindow = 24 * time.Hour

// newJournalStatsTask creates the scheduled task that logs a summary of
// recent delivery outcomes. It gives operators a heartbeat: which rules
// fire, and whether deliveries are failing.
func newJournalStatsTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "journal_stats")

	return func(ctx context.Context) error {
		since := time.Now().UTC().Add(-statsWindow)

		counts, err := deps.Store.OutcomeCounts(ctx, since)
		if err != nil {
			log.ErrorContext(ctx, "Failed to summarize delivery outcomes", "error", err)
			return fmt.Errorf("journal stats failed: %w", err)
		}

		if len(counts) == 0 {
			log.InfoContext(ctx, "No deliveries recorded in stats window", "window", statsWindow)
			return nil
		}

		log.InfoContext(ctx, "Delivery outcomes",
			"window", statsWindow,
			"delivered", counts["delivered"],
			"delivery_failed", counts["delivery_failed"],
			"render_failed", counts["render_failed"],
		)
		return nil
	}
}
