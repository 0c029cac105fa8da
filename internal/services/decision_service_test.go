package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"triad/internal/core"
	"triad/internal/store/memory"
)

type fakePublisher struct {
	published []core.Decision
	err       error
}

func (f *fakePublisher) PublishDecisionLogged(_ context.Context, d core.Decision) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, d)
	return nil
}

func TestHandleSubmission(t *testing.T) {
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, time.Local)
	st := memory.NewWithClock(func() time.Time { return now })
	pub := &fakePublisher{}
	svc := NewDecisionService(st, st, pub)
	svc.now = func() time.Time { return now }

	res, err := svc.HandleSubmission(context.Background(), SubmissionInput{
		Label:    "Buy index fund",
		Category: "Finance",
		Wealth:   20,
		Health:   0,
		Self:     -10,
	})
	if err != nil {
		t.Fatalf("submission failed: %v", err)
	}
	if res.Ref != "mem:1" {
		t.Fatalf("unexpected ref %q", res.Ref)
	}
	if len(res.Impact.Negative) != 1 || res.Impact.Negative[0] != core.SectorSelf {
		t.Fatalf("expected Self flagged negative, got %+v", res.Impact)
	}
	if len(res.Impact.Zero) != 1 || res.Impact.Zero[0] != core.SectorHealth {
		t.Fatalf("expected Health flagged zero, got %+v", res.Impact)
	}
	if res.Summary.DecisionsToday != 1 {
		t.Fatalf("DecisionsToday = %d, want 1", res.Summary.DecisionsToday)
	}
	if res.Summary.AvgWealth != 20 {
		t.Fatalf("AvgWealth = %v, want 20", res.Summary.AvgWealth)
	}
	if len(pub.published) != 1 || pub.published[0].Label != "Buy index fund" {
		t.Fatalf("mirror message not published: %+v", pub.published)
	}
}

func TestHandleSubmissionRejectsInvalidInput(t *testing.T) {
	st := memory.New()
	svc := NewDecisionService(st, st, nil)

	cases := []SubmissionInput{
		{Label: "x", Category: "Nope", Wealth: 1},
		{Label: "x", Category: "Work", Wealth: 101},
		{Label: "x", Category: "Work", Self: -200},
	}
	for i, in := range cases {
		if _, err := svc.HandleSubmission(context.Background(), in); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}

	// Nothing was appended.
	ds, _ := st.ListDecisions(context.Background())
	if len(ds) != 0 {
		t.Fatalf("invalid input must not touch storage, got %d records", len(ds))
	}
}

func TestHandleSubmissionSurvivesPublishFailure(t *testing.T) {
	st := memory.New()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewDecisionService(st, st, pub)

	if _, err := svc.HandleSubmission(context.Background(), SubmissionInput{
		Label: "a", Category: "Work", Wealth: 1, Health: 1, Self: 1,
	}); err != nil {
		t.Fatalf("publish failure must not fail the append: %v", err)
	}

	ds, _ := st.ListDecisions(context.Background())
	if len(ds) != 1 {
		t.Fatalf("append should have succeeded, got %d records", len(ds))
	}
}

func TestViewModelFilters(t *testing.T) {
	st := memory.New()
	svc := NewDecisionService(st, st, nil)
	ctx := context.Background()

	for _, in := range []SubmissionInput{
		{Label: "a", Category: "Work", Wealth: 10},
		{Label: "b", Category: "Finance", Wealth: 20},
	} {
		if _, err := svc.HandleSubmission(ctx, in); err != nil {
			t.Fatalf("submission: %v", err)
		}
	}

	vm, err := svc.ViewModel(ctx, []string{"b"})
	if err != nil {
		t.Fatalf("viewmodel: %v", err)
	}
	if vm.Empty || len(vm.Ternary) != 1 || vm.LastLabel != "b" {
		t.Fatalf("unexpected viewmodel: %+v", vm)
	}

	vm, err = svc.ViewModel(ctx, []string{"nope"})
	if err != nil {
		t.Fatalf("viewmodel: %v", err)
	}
	if !vm.Empty {
		t.Fatalf("no-match selection should be empty")
	}
}
