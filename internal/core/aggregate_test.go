package core

import (
	"reflect"
	"testing"
	"time"
)

func dec(label string, cat Category, w, h, s Score, at LogTime) Decision {
	return Decision{Label: label, Category: cat, Wealth: w, Health: h, Self: s, LoggedAt: at}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil, time.Now())
	if sum.DecisionsToday != 0 || sum.AvgWealth != 0 || sum.AvgNegativeFlags != 0 {
		t.Fatalf("empty history must summarize to zeros, got %+v", sum)
	}
}

func TestCountToday(t *testing.T) {
	today := time.Date(2026, 8, 26, 12, 0, 0, 0, time.Local)
	ds := []Decision{
		dec("a", Work, 1, 1, 1, NewLogTime(today.Add(-2*time.Hour))),
		dec("b", Work, 1, 1, 1, NewLogTime(today.AddDate(0, 0, -1))),
		dec("c", Work, 1, 1, 1, InvalidLogTime()),
	}
	if got := CountToday(ds, today); got != 1 {
		t.Fatalf("CountToday = %d, want 1", got)
	}
}

func TestAverageWealth(t *testing.T) {
	now := NewLogTime(time.Now())
	ds := []Decision{
		dec("a", Work, 50, 0, 0, now),
		dec("b", Work, -50, 0, 0, now),
	}
	if got := AverageWealth(ds); got != 0 {
		t.Fatalf("AverageWealth = %v, want 0", got)
	}
	if got := AverageWealth(ds[:1]); got != 50 {
		t.Fatalf("AverageWealth = %v, want 50", got)
	}
}

func TestAverageNegativeFlagCountBounds(t *testing.T) {
	now := NewLogTime(time.Now())
	cases := [][]Decision{
		{dec("a", Work, -1, -1, -1, now)},
		{dec("a", Work, 1, 1, 1, now)},
		{dec("a", Work, -1, 0, 1, now), dec("b", Work, -1, -1, 1, now)},
	}
	want := []float64{3, 0, 1.5}
	for i, ds := range cases {
		got := AverageNegativeFlagCount(ds)
		if got != want[i] {
			t.Fatalf("case %d: got %v, want %v", i, got, want[i])
		}
		if got < 0 || got > 3 {
			t.Fatalf("case %d: %v outside [0, 3]", i, got)
		}
	}
}

func TestFilterByLabelsPreservesOrder(t *testing.T) {
	now := NewLogTime(time.Now())
	ds := []Decision{
		dec("a", Work, 1, 1, 1, now),
		dec("b", Work, 2, 2, 2, now),
		dec("a", Work, 3, 3, 3, now),
	}
	got := FilterByLabels(ds, []string{"a"})
	if len(got) != 2 || got[0].Wealth != 1 || got[1].Wealth != 3 {
		t.Fatalf("unexpected filter result: %+v", got)
	}
	if got := FilterByLabels(ds, []string{"X"}); len(got) != 0 {
		t.Fatalf("no-match filter should be empty, got %+v", got)
	}
}

func TestSectorTotalsAndLastSectors(t *testing.T) {
	now := NewLogTime(time.Now())
	ds := []Decision{
		dec("a", Work, 10, -5, 0, now),
		dec("b", Finance, 20, 5, -10, now),
	}
	totals := SectorTotals(ds)
	if totals != (SectorValues{Wealth: 30, Health: 0, Self: -10}) {
		t.Fatalf("unexpected totals: %+v", totals)
	}

	last, ok := LastSectors(ds)
	if !ok || last != (SectorValues{Wealth: 20, Health: 5, Self: -10}) {
		t.Fatalf("unexpected last: ok=%v %+v", ok, last)
	}
	if _, ok := LastSectors(nil); ok {
		t.Fatalf("LastSectors on empty must report !ok")
	}
}

func TestLabelsDistinctFirstSeen(t *testing.T) {
	now := NewLogTime(time.Now())
	ds := []Decision{
		dec("b", Work, 1, 1, 1, now),
		dec("a", Work, 1, 1, 1, now),
		dec("b", Work, 1, 1, 1, now),
	}
	if got := Labels(ds); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Fatalf("Labels = %v", got)
	}
}
