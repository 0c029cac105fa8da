package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"triad/internal/core"
	"triad/internal/store"
)

// DecisionPublisher publishes mirror messages for appended decisions.
// Satisfied by *amqp.Client; nil disables mirroring.
type DecisionPublisher interface {
	PublishDecisionLogged(ctx context.Context, d core.Decision) error
}

// SubmissionInput is one form submission as received from the UI.
type SubmissionInput struct {
	Label    string
	Category string
	Wealth   int
	Health   int
	Self     int
}

// SubmissionResult is what the presentation layer needs after a
// successful append: the impact sanity check for the submitted triple
// and the refreshed summary metrics.
type SubmissionResult struct {
	Ref     string
	Impact  core.ImpactDirections
	Summary core.Summary
}

// DecisionService orchestrates the append–reload–summarize cycle over
// the injected store, decoupled from any UI refresh strategy.
type DecisionService struct {
	writer    store.DecisionWriter
	lister    store.DecisionLister
	publisher DecisionPublisher
	now       func() time.Time
}

func NewDecisionService(writer store.DecisionWriter, lister store.DecisionLister, publisher DecisionPublisher) *DecisionService {
	return &DecisionService{
		writer:    writer,
		lister:    lister,
		publisher: publisher,
		now:       time.Now,
	}
}

// HandleSubmission validates and appends one decision, then returns the
// impact classification of the submitted scores and the updated
// summary. Validation failures return the core sentinel errors without
// touching storage. Mirror publishing is best-effort: the append has
// already succeeded, so publish failures are only logged.
func (s *DecisionService) HandleSubmission(ctx context.Context, in SubmissionInput) (SubmissionResult, error) {
	d := core.Decision{
		Label:    in.Label,
		Category: core.Category(in.Category),
		Wealth:   core.Score(in.Wealth),
		Health:   core.Score(in.Health),
		Self:     core.Score(in.Self),
	}
	if err := d.Validate(); err != nil {
		return SubmissionResult{}, err
	}

	impact := core.ClassifyImpact(d.Wealth, d.Health, d.Self)

	ref, err := s.writer.Append(ctx, d)
	if err != nil {
		return SubmissionResult{}, fmt.Errorf("append decision: %w", err)
	}

	if s.publisher != nil {
		d.LoggedAt = core.NewLogTime(s.now())
		if err := s.publisher.PublishDecisionLogged(ctx, d); err != nil {
			slog.ErrorContext(ctx, "Failed to publish mirror message",
				"label", d.Label, "error", err)
		}
	}

	summary, err := s.Summary(ctx)
	if err != nil {
		return SubmissionResult{}, fmt.Errorf("refresh summary: %w", err)
	}

	return SubmissionResult{Ref: ref, Impact: impact, Summary: summary}, nil
}

// Summary reloads the full history and computes the dashboard metrics.
func (s *DecisionService) Summary(ctx context.Context) (core.Summary, error) {
	ds, err := s.lister.ListDecisions(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("load decisions: %w", err)
	}
	return core.Summarize(ds, s.now()), nil
}

// ViewModel reloads the history and projects it through the label
// selection for the chart layer.
func (s *DecisionService) ViewModel(ctx context.Context, selection []string) (core.ViewModel, error) {
	ds, err := s.lister.ListDecisions(ctx)
	if err != nil {
		return core.ViewModel{}, fmt.Errorf("load decisions: %w", err)
	}
	return core.ComputeViewModel(ds, selection), nil
}
