package core

import (
	"reflect"
	"testing"
)

func TestClassifyImpact(t *testing.T) {
	cases := []struct {
		name     string
		w, h, s  Score
		negative []Sector
		zero     []Sector
	}{
		{"all positive", 10, 20, 30, nil, nil},
		{"mixed", 20, 0, -10, []Sector{SectorSelf}, []Sector{SectorHealth}},
		{"all negative", -1, -2, -3, []Sector{SectorWealth, SectorHealth, SectorSelf}, nil},
		{"all zero", 0, 0, 0, nil, []Sector{SectorWealth, SectorHealth, SectorSelf}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := ClassifyImpact(tc.w, tc.h, tc.s)
			if !reflect.DeepEqual(dir.Negative, tc.negative) {
				t.Fatalf("negative = %v, want %v", dir.Negative, tc.negative)
			}
			if !reflect.DeepEqual(dir.Zero, tc.zero) {
				t.Fatalf("zero = %v, want %v", dir.Zero, tc.zero)
			}
		})
	}
}

func TestSectorValuesGet(t *testing.T) {
	v := SectorValues{Wealth: 1, Health: 2, Self: 3}
	if v.Get(SectorWealth) != 1 || v.Get(SectorHealth) != 2 || v.Get(SectorSelf) != 3 {
		t.Fatalf("unexpected sector lookup: %+v", v)
	}
}
