package store

import (
	"context"

	"triad/internal/core"
)

// Ports for outbound persistence adapters. The dashboard reloads the
// full history on every render, so listing is the only read operation.
type (
	DecisionWriter interface {
		// Append persists one decision, assigning its timestamp, and
		// returns a backend-specific row reference. The first append
		// creates the storage container.
		Append(ctx context.Context, d core.Decision) (rowRef string, err error)
	}

	DecisionLister interface {
		// ListDecisions returns every stored decision in insertion
		// order. A store that does not exist yet yields an empty
		// sequence, not an error. Records are normalized on load:
		// missing categories become Uncategorized, unparsable
		// timestamps become the invalid marker.
		ListDecisions(ctx context.Context) ([]core.Decision, error)
	}
)
