package amqp

import (
	"testing"
	"time"

	"triad/internal/core"
)

func TestDecisionLoggedMessageRoundTrip(t *testing.T) {
	at := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	d := core.Decision{
		Label:    "Buy index fund",
		Category: core.Finance,
		Wealth:   20,
		Health:   0,
		Self:     -10,
		LoggedAt: core.NewLogTime(at),
	}

	msg := NewDecisionLoggedMessage(d)
	if msg.MessageID == "" {
		t.Fatalf("message ID must be assigned")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := DecisionLoggedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := back.Decision()
	if got.Label != d.Label || got.Category != d.Category ||
		got.Wealth != d.Wealth || got.Health != d.Health || got.Self != d.Self {
		t.Fatalf("decision mismatch: %+v", got)
	}
	if !got.LoggedAt.Valid || !got.LoggedAt.Equal(at) {
		t.Fatalf("logged-at mismatch: %+v", got.LoggedAt)
	}
}

func TestDecisionLoggedMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := DecisionLoggedMessageFromJSON([]byte("not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}
