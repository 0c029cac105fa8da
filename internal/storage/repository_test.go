package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"triad/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "triad.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestAppendAndListRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	at := time.Date(2026, 8, 26, 9, 0, 0, 0, time.Local)
	repo.now = func() time.Time { return at }

	d := core.Decision{Label: "Buy index fund", Category: core.Finance, Wealth: 20, Health: 0, Self: -10}
	ref, err := repo.Append(context.Background(), d)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "1" {
		t.Fatalf("expected first row id, got %q", ref)
	}

	ds, err := repo.ListDecisions(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ds) != 1 {
		t.Fatalf("expected 1 row, got %d", len(ds))
	}
	got := ds[0]
	if got.Label != d.Label || got.Category != d.Category || got.Wealth != d.Wealth ||
		got.Health != d.Health || got.Self != d.Self {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.LoggedAt.Valid || !got.LoggedAt.Equal(at) {
		t.Fatalf("timestamp should be store-assigned, got %+v", got.LoggedAt)
	}
}

func TestAppendRejectsInvalidInput(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.Append(context.Background(), core.Decision{Label: "x", Category: "Nope"}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestMirrorPendingLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Append(ctx, core.Decision{Label: "a", Category: core.Work, Wealth: 1}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := repo.Append(ctx, core.Decision{Label: "b", Category: core.Work, Wealth: 2}); err != nil {
		t.Fatalf("append: %v", err)
	}

	pending, err := repo.GetPendingMirror(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending rows, got %d", len(pending))
	}

	if err := repo.MarkMirrored(ctx, pending[0].ID); err != nil {
		t.Fatalf("mark mirrored: %v", err)
	}
	if err := repo.MarkMirrorError(ctx, pending[1].ID); err != nil {
		t.Fatalf("mark error: %v", err)
	}

	pending, err = repo.GetPendingMirror(ctx, 10)
	if err != nil {
		t.Fatalf("pending after marks: %v", err)
	}
	// The errored row stays pending for the next sweep.
	if len(pending) != 1 || pending[0].Decision.Label != "b" {
		t.Fatalf("unexpected pending set: %+v", pending)
	}
}
