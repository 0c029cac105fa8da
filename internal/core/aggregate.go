package core

import "time"

// Summary holds the three dashboard metrics computed over the full
// decision history.
type Summary struct {
	DecisionsToday   int
	AvgWealth        float64
	AvgNegativeFlags float64
}

// Summarize computes the dashboard metrics for the given day. All
// metrics are 0 over an empty history.
func Summarize(ds []Decision, today time.Time) Summary {
	return Summary{
		DecisionsToday:   CountToday(ds, today),
		AvgWealth:        AverageWealth(ds),
		AvgNegativeFlags: AverageNegativeFlagCount(ds),
	}
}

// CountToday counts decisions logged on the given calendar day.
// Records with an invalid timestamp are excluded.
func CountToday(ds []Decision, today time.Time) int {
	n := 0
	for _, d := range ds {
		if d.LoggedAt.SameDay(today) {
			n++
		}
	}
	return n
}

// AverageWealth is the arithmetic mean of the wealth score, 0 when empty.
func AverageWealth(ds []Decision) float64 {
	if len(ds) == 0 {
		return 0
	}
	sum := 0
	for _, d := range ds {
		sum += int(d.Wealth)
	}
	return float64(sum) / float64(len(ds))
}

// AverageNegativeFlagCount is the mean, across all decisions, of how
// many of the three sectors are strictly negative (0-3 per record).
// 0 when empty.
func AverageNegativeFlagCount(ds []Decision) float64 {
	if len(ds) == 0 {
		return 0
	}
	flags := 0
	for _, d := range ds {
		for _, s := range []Score{d.Wealth, d.Health, d.Self} {
			if s < 0 {
				flags++
			}
		}
	}
	return float64(flags) / float64(len(ds))
}

// FilterByLabels returns the subsequence of decisions whose label is in
// the given set, preserving order.
func FilterByLabels(ds []Decision, labels []string) []Decision {
	want := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		want[l] = struct{}{}
	}
	out := make([]Decision, 0, len(ds))
	for _, d := range ds {
		if _, ok := want[d.Label]; ok {
			out = append(out, d)
		}
	}
	return out
}

// SectorTotals sums each sector independently across the given decisions.
func SectorTotals(ds []Decision) SectorValues {
	var t SectorValues
	for _, d := range ds {
		t.Wealth += int(d.Wealth)
		t.Health += int(d.Health)
		t.Self += int(d.Self)
	}
	return t
}

// LastSectors returns the sector triple of the last decision in the
// sequence. ok is false when the sequence is empty.
func LastSectors(ds []Decision) (v SectorValues, ok bool) {
	if len(ds) == 0 {
		return SectorValues{}, false
	}
	return ds[len(ds)-1].Sectors(), true
}

// Labels returns the distinct decision labels in first-seen order.
func Labels(ds []Decision) []string {
	seen := make(map[string]struct{}, len(ds))
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		if _, ok := seen[d.Label]; ok {
			continue
		}
		seen[d.Label] = struct{}{}
		out = append(out, d.Label)
	}
	return out
}
