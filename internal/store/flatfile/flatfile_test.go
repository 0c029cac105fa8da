package flatfile

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"triad/internal/core"
)

func TestListOnMissingFileIsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "decisions.csv"))
	ds, err := s.ListDecisions(context.Background())
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if len(ds) != 0 {
		t.Fatalf("expected empty sequence, got %d", len(ds))
	}
}

func TestAppendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.csv")
	at := time.Date(2026, 8, 26, 9, 15, 0, 0, time.Local)
	s := NewWithClock(path, func() time.Time { return at })

	d := core.Decision{Label: "Buy index fund", Category: core.Finance, Wealth: 20, Health: 0, Self: -10}
	ref, err := s.Append(context.Background(), d)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if !strings.HasPrefix(ref, "csv:") {
		t.Fatalf("unexpected ref: %q", ref)
	}

	ds, err := s.ListDecisions(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ds) != 1 {
		t.Fatalf("expected 1 record, got %d", len(ds))
	}
	got := ds[0]
	if got.Label != d.Label || got.Category != d.Category ||
		got.Wealth != d.Wealth || got.Health != d.Health || got.Self != d.Self {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.LoggedAt.Valid || !got.LoggedAt.Equal(at) {
		t.Fatalf("timestamp should be store-assigned %v, got %+v", at, got.LoggedAt)
	}
}

func TestHeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.csv")
	s := New(path)
	for i := 0; i < 2; i++ {
		if _, err := s.Append(context.Background(), core.Decision{Label: "x", Category: core.Work}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if got := strings.Count(string(raw), "Decision,Category,Wealth,Health,Self,Time"); got != 1 {
		t.Fatalf("header must appear exactly once, found %d times in:\n%s", got, raw)
	}
}

func TestAppendRejectsInvalidInput(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "decisions.csv"))
	bads := []core.Decision{
		{Label: "x", Category: "Nope"},
		{Label: "x", Category: core.Work, Wealth: 101},
	}
	for i, d := range bads {
		if _, err := s.Append(context.Background(), d); err == nil {
			t.Fatalf("case %d expected validation error", i)
		}
	}
}

func TestIdempotentLoad(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "decisions.csv"))
	if _, err := s.Append(context.Background(), core.Decision{Label: "a", Category: core.Work, Wealth: 5}); err != nil {
		t.Fatalf("append: %v", err)
	}
	first, err := s.ListDecisions(context.Background())
	if err != nil {
		t.Fatalf("first list: %v", err)
	}
	second, err := s.ListDecisions(context.Background())
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("loads differ:\n%+v\n%+v", first, second)
	}
}

func TestLegacyFileWithoutCategoryBackfills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.csv")
	legacy := "Decision,Wealth,Health,Self,Time\n" +
		"old habit,10,-5,0,2024-03-01 08:00:00\n"
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatalf("write legacy file: %v", err)
	}

	ds, err := New(path).ListDecisions(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ds) != 1 {
		t.Fatalf("expected 1 record, got %d", len(ds))
	}
	if ds[0].Category != core.Uncategorized {
		t.Fatalf("legacy row should backfill Uncategorized, got %q", ds[0].Category)
	}
	if ds[0].Wealth != 10 || ds[0].Health != -5 || ds[0].Self != 0 {
		t.Fatalf("legacy scores mismatch: %+v", ds[0])
	}
}

func TestUnparsableTimeBecomesInvalidMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.csv")
	raw := "Decision,Category,Wealth,Health,Self,Time\n" +
		"a,Work,1,2,3,not-a-time\n" +
		"b,Work,1,2,3,2026-08-26 09:15:00.123456\n"
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	ds, err := New(path).ListDecisions(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ds) != 2 {
		t.Fatalf("bad timestamps must not drop rows, got %d", len(ds))
	}
	if ds[0].LoggedAt.Valid {
		t.Fatalf("unparsable time should be invalid marker")
	}
	if !ds[1].LoggedAt.Valid {
		t.Fatalf("microsecond layout should parse")
	}
}
