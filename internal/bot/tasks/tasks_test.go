package tasks_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/edgard/topicrelay/internal/bot/tasks"
	"github.com/edgard/topicrelay/internal/config"
	"github.com/edgard/topicrelay/internal/database"
)

type fakeStore struct {
	pruneCutoff     time.Time
	pruneErr        error
	maintenanceRuns int
	maintenanceErr  error
	counts          map[string]int64
	countsErr       error
}

func (s *fakeStore) Ping(context.Context) error { return nil }

func (s *fakeStore) RecordDelivery(context.Context, *database.Delivery) error { return nil }

func (s *fakeStore) OutcomeCounts(context.Context, time.Time) (map[string]int64, error) {
	return s.counts, s.countsErr
}

func (s *fakeStore) PruneDeliveries(_ context.Context, before time.Time) (int64, error) {
	s.pruneCutoff = before
	if s.pruneErr != nil {
		return 0, s.pruneErr
	}
	return 3, nil
}

func (s *fakeStore) RunSQLMaintenance(context.Context) error {
	s.maintenanceRuns++
	return s.maintenanceErr
}

func newTaskDeps(store database.Store) tasks.TaskDeps {
	return tasks.TaskDeps{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:  store,
		Config: &config.Config{
			Database: config.DatabaseConfig{Path: ":memory:", RetentionDays: 30},
		},
	}
}

func TestRegisterAllTasks(t *testing.T) {
	t.Parallel()

	registered := tasks.RegisterAllTasks(newTaskDeps(&fakeStore{}))

	for _, name := range []string{"journal_maintenance", "journal_stats"} {
		if _, ok := registered[name]; !ok {
			t.Errorf("task %s not registered", name)
		}
	}
}

func TestJournalMaintenanceTask(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	task := tasks.RegisterAllTasks(newTaskDeps(store))["journal_maintenance"]

	if err := task(context.Background()); err != nil {
		t.Fatalf("task returned error: %v", err)
	}

	if store.maintenanceRuns != 1 {
		t.Errorf("maintenance runs = %d, want 1", store.maintenanceRuns)
	}

	wantCutoff := time.Now().UTC().Add(-30 * 24 * time.Hour)
	diff := store.pruneCutoff.Sub(wantCutoff)
	if diff < -time.Minute || diff > time.Minute {
		t.Errorf("prune cutoff = %v, want about %v", store.pruneCutoff, wantCutoff)
	}
}

func TestJournalMaintenanceTaskErrors(t *testing.T) {
	t.Parallel()

	pruneErr := errors.New("prune failed")
	store := &fakeStore{pruneErr: pruneErr}
	task := tasks.RegisterAllTasks(newTaskDeps(store))["journal_maintenance"]

	if err := task(context.Background()); !errors.Is(err, pruneErr) {
		t.Errorf("error = %v, want wrapped prune error", err)
	}
	if store.maintenanceRuns != 0 {
		t.Errorf("maintenance ran despite prune failure")
	}

	store = &fakeStore{maintenanceErr: errors.New("vacuum failed")}
	task = tasks.RegisterAllTasks(newTaskDeps(store))["journal_maintenance"]

	if err := task(context.Background()); err == nil {
		t.Error("task succeeded despite maintenance failure")
	}
}

func TestJournalStatsTask(t *testing.T) {
	t.Parallel()

	store := &fakeStore{counts: map[string]int64{"delivered": 12, "delivery_failed": 1}}
	task := tasks.RegisterAllTasks(newTaskDeps(store))["journal_stats"]

	if err := task(context.Background()); err != nil {
		t.Fatalf("task returned error: %v", err)
	}

	store = &fakeStore{countsErr: errors.New("query failed")}
	task = tasks.RegisterAllTasks(newTaskDeps(store))["journal_stats"]

	if err := task(context.Background()); err == nil {
		t.Error("task succeeded despite store failure")
	}
}
