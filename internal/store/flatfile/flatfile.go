// Package flatfile persists decisions as a row-oriented CSV file with
// the header Decision,Category,Wealth,Health,Self,Time. The header is
// written only when the file is created; appends add rows in place.
package flatfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"triad/internal/core"
)

// TimeLayout is the on-disk timestamp format. Parsing also accepts the
// microsecond variant older files were written with.
const TimeLayout = "2006-01-02 15:04:05"

var header = []string{"Decision", "Category", "Wealth", "Health", "Self", "Time"}

var parseLayouts = []string{
	TimeLayout,
	"2006-01-02 15:04:05.999999",
	time.RFC3339,
}

type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// NewWithClock injects the append clock, for tests.
func NewWithClock(path string, now func() time.Time) *Store {
	return &Store{path: path, now: now}
}

// Append writes one decision row, creating the file with a header on
// first write. The timestamp is assigned here, never user-supplied.
func (s *Store) Append(ctx context.Context, d core.Decision) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create data directory: %w", err)
		}
	}

	_, statErr := os.Stat(s.path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("open decision log: %w", err)
	}
	defer f.Close()

	at := s.now()
	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(header); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
	}
	row := []string{
		d.Label,
		string(d.Category),
		strconv.Itoa(int(d.Wealth)),
		strconv.Itoa(int(d.Health)),
		strconv.Itoa(int(d.Self)),
		at.Format(TimeLayout),
	}
	if err := w.Write(row); err != nil {
		return "", fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush decision log: %w", err)
	}

	ref := "csv:" + at.Format(TimeLayout)
	slog.InfoContext(ctx, "Decision appended to flat file",
		"path", s.path,
		"label", d.Label,
		"category", string(d.Category),
		"ref", ref)
	return ref, nil
}

// ListDecisions loads the full history in insertion order. A missing
// file yields an empty sequence. Rows are normalized: files predating
// the Category column backfill Uncategorized, unparsable timestamps
// become the invalid marker, unparsable scores read as 0.
func (s *Store) ListDecisions(ctx context.Context) ([]core.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return []core.Decision{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open decision log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err == io.EOF {
		return []core.Decision{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := columnIndexes(head)

	var out []core.Decision
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		out = append(out, normalizeRow(ctx, row, cols))
	}
	if out == nil {
		out = []core.Decision{}
	}
	return out, nil
}

// Path returns the storage location, mostly for logs.
func (s *Store) Path() string {
	return s.path
}

type indexes struct {
	decision, category, wealth, health, self, timeCol int
}

func columnIndexes(head []string) indexes {
	ix := indexes{decision: -1, category: -1, wealth: -1, health: -1, self: -1, timeCol: -1}
	for i, name := range head {
		switch name {
		case "Decision":
			ix.decision = i
		case "Category":
			ix.category = i
		case "Wealth":
			ix.wealth = i
		case "Health":
			ix.health = i
		case "Self":
			ix.self = i
		case "Time":
			ix.timeCol = i
		}
	}
	return ix
}

func normalizeRow(ctx context.Context, row []string, ix indexes) core.Decision {
	d := core.Decision{
		Label:    field(row, ix.decision),
		Category: core.Uncategorized,
	}
	if cat := field(row, ix.category); cat != "" {
		d.Category = core.Category(cat)
	}
	d.Wealth = parseScore(ctx, field(row, ix.wealth))
	d.Health = parseScore(ctx, field(row, ix.health))
	d.Self = parseScore(ctx, field(row, ix.self))
	d.LoggedAt = ParseLogTime(field(row, ix.timeCol))
	return d
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseScore(ctx context.Context, s string) core.Score {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		slog.WarnContext(ctx, "Unparsable score in decision log, reading as 0", "value", s)
		return 0
	}
	return core.Score(n)
}

// ParseLogTime coerces a stored Time field. Unparsable values become
// the explicit invalid marker rather than a load failure.
func ParseLogTime(s string) core.LogTime {
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return core.NewLogTime(t)
		}
	}
	return core.InvalidLogTime()
}
