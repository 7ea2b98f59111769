package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for delivery journal operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// RecordDelivery inserts one journal entry for a routed message.
	RecordDelivery(ctx context.Context, delivery *Delivery) error

	// OutcomeCounts returns the number of journal entries per outcome
	// recorded at or after since.
	OutcomeCounts(ctx context.Context, since time.Time) (map[string]int64, error)

	// PruneDeliveries deletes journal entries created before the cutoff
	// and reports how many were removed.
	PruneDeliveries(ctx context.Context, before time.Time) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RecordDelivery inserts one journal entry. CreatedAt is stamped here so
// callers never have to remember it.
func (s *sqlxStore) RecordDelivery(ctx context.Context, delivery *Delivery) error {
	if delivery == nil {
		return fmt.Errorf("cannot record nil delivery")
	}
	if delivery.Outcome == "" {
		return fmt.Errorf("delivery must have an outcome")
	}
	if delivery.RuleIndex < 0 {
		return fmt.Errorf("delivery must reference a rule index")
	}

	delivery.CreatedAt = time.Now().UTC()

	query := `INSERT INTO deliveries (created_at, source_chat_id, rule_index, topic_id, outcome, error)
	          VALUES (:created_at, :source_chat_id, :rule_index, :topic_id, :outcome, :error)`

	result, err := s.db.NamedExecContext(ctx, query, delivery)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error recording delivery",
			"outcome", delivery.Outcome, "topic_id", delivery.TopicID, "error", err)
		return fmt.Errorf("failed to record delivery: %w", err)
	}

	if id, idErr := result.LastInsertId(); idErr != nil {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after recording delivery", "error", idErr)
	} else {
		delivery.ID = uint(id)
	}

	s.logger.DebugContext(ctx, "Delivery recorded",
		"id", delivery.ID, "outcome", delivery.Outcome, "rule_index", delivery.RuleIndex, "topic_id", delivery.TopicID)
	return nil
}

// OutcomeCounts aggregates journal entries per outcome since the given time.
func (s *sqlxStore) OutcomeCounts(ctx context.Context, since time.Time) (map[string]int64, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	type outcomeRow struct {
		Outcome string `db:"outcome"`
		Count   int64  `db:"count"`
	}

	var rows []outcomeRow
	query := `SELECT outcome, COUNT(*) AS count FROM deliveries WHERE created_at >= ? GROUP BY outcome`
	if err := s.db.SelectContext(ctx, &rows, query, since); err != nil {
		s.logger.ErrorContext(ctx, "Error counting delivery outcomes", "error", err)
		return nil, fmt.Errorf("failed to count delivery outcomes: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Outcome] = row.Count
	}

	s.logger.DebugContext(ctx, "Counted delivery outcomes", "outcomes", len(counts), "since", since)
	return counts, nil
}

// PruneDeliveries deletes journal entries older than the cutoff.
func (s *sqlxStore) PruneDeliveries(ctx context.Context, before time.Time) (int64, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM deliveries WHERE created_at < ?`, before)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error pruning deliveries", "cutoff", before, "error", err)
		return 0, fmt.Errorf("failed to prune deliveries: %w", err)
	}

	pruned, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not determine number of pruned deliveries", "error", err)
		return 0, nil
	}

	s.logger.DebugContext(ctx, "Pruned old deliveries", "count", pruned, "cutoff", before)
	return pruned, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// Give concurrent writers a chance to finish before VACUUM takes the
	// exclusive lock. VACUUM itself must run outside a transaction.
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		s.logger.WarnContext(ctx, "Failed to set busy timeout", "error", err)
	}

	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}
