package core

import (
	"testing"
	"time"
)

func TestComputeViewModelEmptySelection(t *testing.T) {
	now := NewLogTime(time.Now())
	ds := []Decision{dec("a", Work, 10, 20, 30, now)}

	vm := ComputeViewModel(ds, []string{"X"})
	if !vm.Empty {
		t.Fatalf("selection with no matches must be empty")
	}
	if len(vm.AllLabels) != 1 || vm.AllLabels[0] != "a" {
		t.Fatalf("AllLabels should still list history labels, got %v", vm.AllLabels)
	}
}

func TestComputeViewModelShiftsTernary(t *testing.T) {
	now := NewLogTime(time.Date(2026, 8, 26, 10, 0, 0, 0, time.Local))
	ds := []Decision{
		dec("a", Work, -100, 0, 100, now),
		dec("b", Finance, 20, 0, -10, now),
	}

	vm := ComputeViewModel(ds, nil)
	if vm.Empty {
		t.Fatalf("nil selection means everything")
	}
	if len(vm.Ternary) != 2 {
		t.Fatalf("expected 2 points, got %d", len(vm.Ternary))
	}
	p := vm.Ternary[0]
	if p.W2 != 0 || p.H2 != 100 || p.S2 != 200 {
		t.Fatalf("unexpected shifted point: %+v", p)
	}
	if p.Raw != (SectorValues{Wealth: -100, Health: 0, Self: 100}) {
		t.Fatalf("raw values must ride along: %+v", p.Raw)
	}
	if p.Time == "" {
		t.Fatalf("valid log time should be formatted")
	}

	if vm.LastLabel != "b" || vm.Last != (SectorValues{Wealth: 20, Health: 0, Self: -10}) {
		t.Fatalf("unexpected last record: %q %+v", vm.LastLabel, vm.Last)
	}
	if vm.Totals != (SectorValues{Wealth: -80, Health: 0, Self: 90}) {
		t.Fatalf("unexpected totals: %+v", vm.Totals)
	}
}

func TestComputeViewModelInvalidTimeOmitted(t *testing.T) {
	ds := []Decision{dec("a", Work, 1, 1, 1, InvalidLogTime())}
	vm := ComputeViewModel(ds, nil)
	if vm.Ternary[0].Time != "" {
		t.Fatalf("invalid time must not be formatted, got %q", vm.Ternary[0].Time)
	}
}
