package core

// Sector names one of the three tracked impact dimensions.
type Sector string

const (
	SectorWealth Sector = "Wealth"
	SectorHealth Sector = "Health"
	SectorSelf   Sector = "Self"
)

// Sectors returns the three sectors in display order.
func Sectors() []Sector {
	return []Sector{SectorWealth, SectorHealth, SectorSelf}
}

// SectorValues carries one value per sector, in sector order.
type SectorValues struct {
	Wealth int
	Health int
	Self   int
}

// Get returns the value for the named sector.
func (v SectorValues) Get(s Sector) int {
	switch s {
	case SectorWealth:
		return v.Wealth
	case SectorHealth:
		return v.Health
	default:
		return v.Self
	}
}

// ImpactDirections is the per-submission sanity check shown to the
// submitter: sectors with a strictly negative score, and sectors with a
// zero score. Positive sectors are unflagged. It inspects only the
// submitted triple, not historical trends.
type ImpactDirections struct {
	Negative []Sector
	Zero     []Sector
}

// ClassifyImpact partitions the three submitted scores by direction.
// The presentation layer surfaces Negative as an error-level message
// and Zero as a warning-level message only when Negative is empty.
func ClassifyImpact(wealth, health, self Score) ImpactDirections {
	var dir ImpactDirections
	for _, sv := range []struct {
		sector Sector
		value  Score
	}{
		{SectorWealth, wealth},
		{SectorHealth, health},
		{SectorSelf, self},
	} {
		switch {
		case sv.value < 0:
			dir.Negative = append(dir.Negative, sv.sector)
		case sv.value == 0:
			dir.Zero = append(dir.Zero, sv.sector)
		}
	}
	return dir
}

// Sectors of the given decision as plain ints.
func (d Decision) Sectors() SectorValues {
	return SectorValues{
		Wealth: int(d.Wealth),
		Health: int(d.Health),
		Self:   int(d.Self),
	}
}
