package worker

import (
	"context"
	"fmt"
	"log/slog"

	"triad/internal/amqp"
	"triad/internal/core"
	"triad/internal/storage"
)

// DecisionAppender is the mirror target. Satisfied by
// *mirror.SheetsClient.
type DecisionAppender interface {
	AppendDecision(ctx context.Context, d core.Decision) (string, error)
}

// MirrorWorker replays appended decisions into the mirror target. The
// AMQP stream is the primary path; when the sqlite backend is active a
// periodic sweep over mirror-pending rows catches lost messages.
type MirrorWorker struct {
	repo      *storage.SQLiteRepository // nil unless the sqlite backend is active
	target    DecisionAppender
	batchSize int
}

func NewMirrorWorker(repo *storage.SQLiteRepository, target DecisionAppender, batchSize int) *MirrorWorker {
	return &MirrorWorker{
		repo:      repo,
		target:    target,
		batchSize: batchSize,
	}
}

// HandleDecisionLogged processes one mirror message from AMQP. The
// message carries the full row, so no storage lookup is needed.
func (w *MirrorWorker) HandleDecisionLogged(ctx context.Context, msg *amqp.DecisionLoggedMessage) error {
	d := msg.Decision()
	ref, err := w.target.AppendDecision(ctx, d)
	if err != nil {
		return fmt.Errorf("mirror decision %q: %w", d.Label, err)
	}

	slog.InfoContext(ctx, "Decision mirrored from message",
		"message_id", msg.MessageID,
		"label", d.Label,
		"mirror_ref", ref)
	return nil
}

// ProcessPending sweeps rows whose mirror message was lost. It is a
// no-op when no sqlite repository is configured.
func (w *MirrorWorker) ProcessPending(ctx context.Context) error {
	if w.repo == nil {
		return nil
	}

	pending, err := w.repo.GetPendingMirror(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending decisions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing mirror-pending decisions", "count", len(pending))

	for _, p := range pending {
		ref, err := w.target.AppendDecision(ctx, p.Decision)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to mirror pending decision",
				"id", p.ID, "label", p.Decision.Label, "error", err)
			if markErr := w.repo.MarkMirrorError(ctx, p.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to record mirror error", "id", p.ID, "error", markErr)
			}
			continue
		}
		if err := w.repo.MarkMirrored(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mark decision mirrored", "id", p.ID, "error", err)
			continue
		}
		slog.InfoContext(ctx, "Pending decision mirrored",
			"id", p.ID, "label", p.Decision.Label, "mirror_ref", ref)
	}

	return nil
}
