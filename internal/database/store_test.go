package database_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/edgard/topicrelay/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, nil)
}

func TestPing(t *testing.T) {
	store := newTestStore(t)

	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
}

func TestRecordDelivery(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	delivery := &database.Delivery{
		SourceChatID: -100111,
		RuleIndex:    0,
		TopicID:      5,
		Outcome:      "delivered",
	}
	if err := store.RecordDelivery(ctx, delivery); err != nil {
		t.Fatalf("RecordDelivery returned error: %v", err)
	}
	if delivery.ID == 0 {
		t.Error("delivery ID not set after insert")
	}
	if delivery.CreatedAt.IsZero() {
		t.Error("delivery CreatedAt not stamped")
	}

	failed := &database.Delivery{
		SourceChatID: -100111,
		RuleIndex:    2,
		TopicID:      9,
		Outcome:      "delivery_failed",
		Error:        sql.NullString{String: "telegram: bad gateway", Valid: true},
	}
	if err := store.RecordDelivery(ctx, failed); err != nil {
		t.Fatalf("RecordDelivery with error returned error: %v", err)
	}

	counts, err := store.OutcomeCounts(ctx, time.Time{})
	if err != nil {
		t.Fatalf("OutcomeCounts returned error: %v", err)
	}
	if counts["delivered"] != 1 || counts["delivery_failed"] != 1 {
		t.Errorf("counts = %v, want delivered:1 delivery_failed:1", counts)
	}
}

func TestRecordDeliveryValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	testCases := []struct {
		name     string
		delivery *database.Delivery
	}{
		{name: "nil delivery", delivery: nil},
		{
			name:     "missing outcome",
			delivery: &database.Delivery{SourceChatID: 1, RuleIndex: 0, TopicID: 5},
		},
		{
			name:     "negative rule index",
			delivery: &database.Delivery{SourceChatID: 1, RuleIndex: -1, TopicID: 5, Outcome: "delivered"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := store.RecordDelivery(ctx, tc.delivery); err == nil {
				t.Error("RecordDelivery succeeded, want validation error")
			}
		})
	}
}

func TestOutcomeCountsSince(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d := &database.Delivery{SourceChatID: 1, RuleIndex: i, TopicID: 5, Outcome: "delivered"}
		if err := store.RecordDelivery(ctx, d); err != nil {
			t.Fatalf("RecordDelivery returned error: %v", err)
		}
	}

	counts, err := store.OutcomeCounts(ctx, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("OutcomeCounts returned error: %v", err)
	}
	if counts["delivered"] != 3 {
		t.Errorf("counts since an hour ago = %v, want delivered:3", counts)
	}

	counts, err = store.OutcomeCounts(ctx, time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("OutcomeCounts returned error: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("counts since an hour ahead = %v, want empty", counts)
	}
}

func TestPruneDeliveries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d := &database.Delivery{SourceChatID: 1, RuleIndex: i, TopicID: 5, Outcome: "delivered"}
		if err := store.RecordDelivery(ctx, d); err != nil {
			t.Fatalf("RecordDelivery returned error: %v", err)
		}
	}

	pruned, err := store.PruneDeliveries(ctx, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("PruneDeliveries returned error: %v", err)
	}
	if pruned != 0 {
		t.Errorf("pruned with past cutoff = %d, want 0", pruned)
	}

	pruned, err = store.PruneDeliveries(ctx, time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("PruneDeliveries returned error: %v", err)
	}
	if pruned != 2 {
		t.Errorf("pruned with future cutoff = %d, want 2", pruned)
	}

	counts, err := store.OutcomeCounts(ctx, time.Time{})
	if err != nil {
		t.Fatalf("OutcomeCounts returned error: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("counts after prune = %v, want empty", counts)
	}
}

func TestRunSQLMaintenance(t *testing.T) {
	store := newTestStore(t)

	if err := store.RunSQLMaintenance(context.Background()); err != nil {
		t.Fatalf("RunSQLMaintenance returned error: %v", err)
	}
}
