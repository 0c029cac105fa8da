// Package memory keeps the decision log in process memory. It backs
// tests and the zero-setup demo backend.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"triad/internal/core"
)

type Store struct {
	mu    sync.Mutex
	now   func() time.Time
	items []core.Decision
}

func New() *Store {
	return &Store{now: time.Now}
}

// NewWithClock injects the append clock, for tests.
func NewWithClock(now func() time.Time) *Store {
	return &Store{now: now}
}

// Append stores the decision and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, d core.Decision) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d.LoggedAt = core.NewLogTime(s.now())
	s.items = append(s.items, d)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// ListDecisions returns a copy of the history in insertion order.
func (s *Store) ListDecisions(_ context.Context) ([]core.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Decision, len(s.items))
	copy(out, s.items)
	return out, nil
}
