package core

// ternaryShift moves scores from [-100, 100] into [0, 200] so each
// decision plots as a single positive-range point on the three-axis view.
const ternaryShift = 100

// TernaryPoint is one decision prepared for the three-axis scatter.
// W2/H2/S2 are the shifted coordinates; the raw values ride along for
// hover detail.
type TernaryPoint struct {
	Label    string       `json:"label"`
	Category Category     `json:"category"`
	W2       int          `json:"w2"`
	H2       int          `json:"h2"`
	S2       int          `json:"s2"`
	Raw      SectorValues `json:"raw"`
	Time     string       `json:"time,omitempty"`
}

// ViewModel is everything the chart layer needs for one render of the
// filtered working sequence. It is a pure projection: no I/O, no state.
type ViewModel struct {
	// Empty is true when the filter selected nothing; the presentation
	// layer shows "No decisions to show." instead of charts.
	Empty bool `json:"empty"`

	// AllLabels are the distinct labels of the unfiltered history, for
	// the filter control.
	AllLabels []string `json:"allLabels"`

	Ternary []TernaryPoint `json:"ternary,omitempty"`

	// Last is the raw sector triple of the last decision in the
	// filtered sequence, for the per-decision bar chart.
	Last         SectorValues `json:"last"`
	LastLabel    string       `json:"lastLabel,omitempty"`
	LastCategory Category     `json:"lastCategory,omitempty"`

	// Totals are the summed sector values of the filtered sequence,
	// for the overall-impact bar chart.
	Totals SectorValues `json:"totals"`
}

// ComputeViewModel projects the full history through the user's label
// selection. A nil selection means "everything" (the form defaults to
// all labels selected).
func ComputeViewModel(ds []Decision, selection []string) ViewModel {
	vm := ViewModel{AllLabels: Labels(ds)}

	working := ds
	if selection != nil {
		working = FilterByLabels(ds, selection)
	}
	if len(working) == 0 {
		vm.Empty = true
		return vm
	}

	vm.Ternary = make([]TernaryPoint, 0, len(working))
	for _, d := range working {
		p := TernaryPoint{
			Label:    d.Label,
			Category: d.Category,
			W2:       int(d.Wealth) + ternaryShift,
			H2:       int(d.Health) + ternaryShift,
			S2:       int(d.Self) + ternaryShift,
			Raw:      d.Sectors(),
		}
		if d.LoggedAt.Valid {
			p.Time = d.LoggedAt.Format("2006-01-02 15:04:05")
		}
		vm.Ternary = append(vm.Ternary, p)
	}

	last := working[len(working)-1]
	vm.Last, _ = LastSectors(working)
	vm.LastLabel = last.Label
	vm.LastCategory = last.Category
	vm.Totals = SectorTotals(working)
	return vm
}
