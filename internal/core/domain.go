package core

import (
	"errors"
	"fmt"
	"time"
)

const (
	Work       Category = "Work"
	Personal   Category = "Personal"
	HealthGoal Category = "Health goal"
	Finance    Category = "Finance"
	Other      Category = "Other"

	// Uncategorized is backfilled on legacy rows that predate the
	// category column. It is never accepted on new submissions.
	Uncategorized Category = "Uncategorized"
)

const (
	ScoreMin Score = -100
	ScoreMax Score = 100
)

type (
	Category string

	// Score is one impact value in [ScoreMin, ScoreMax].
	Score int

	// LogTime is the moment a decision was logged. Valid is false when
	// the stored timestamp could not be parsed; such records stay in
	// the sequence but are excluded from date-based aggregation.
	LogTime struct {
		time.Time
		Valid bool
	}

	Decision struct {
		Label    string
		Category Category
		Wealth   Score
		Health   Score
		Self     Score
		LoggedAt LogTime
	}
)

var (
	ErrScoreOutOfRange = errors.New("score out of range")
	ErrUnknownCategory = errors.New("unknown category")
)

// Categories lists the categories accepted on submission, in form order.
func Categories() []Category {
	return []Category{Work, Personal, HealthGoal, Finance, Other}
}

func (c Category) Valid() bool {
	switch c {
	case Work, Personal, HealthGoal, Finance, Other:
		return true
	default:
		return false
	}
}

func (s Score) Validate() error {
	if s < ScoreMin || s > ScoreMax {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrScoreOutOfRange, int(s), int(ScoreMin), int(ScoreMax))
	}
	return nil
}

// NewLogTime returns a valid LogTime for the given instant.
func NewLogTime(t time.Time) LogTime {
	return LogTime{Time: t, Valid: true}
}

// InvalidLogTime is the explicit marker for unparsable stored timestamps.
func InvalidLogTime() LogTime {
	return LogTime{}
}

// SameDay reports whether the log time falls on the given calendar day.
// Invalid times never match any day.
func (lt LogTime) SameDay(day time.Time) bool {
	if !lt.Valid {
		return false
	}
	y1, m1, d1 := lt.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Validate checks a decision as submitted by the user. The label may be
// empty; the category must be one of the fixed set and all three scores
// must be in range. Stored legacy data is normalized at load instead.
func (d Decision) Validate() error {
	if !d.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, string(d.Category))
	}
	for _, s := range []Score{d.Wealth, d.Health, d.Self} {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
