package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"triad/internal/core"
)

// DecisionLoggedMessage carries one appended decision to the mirror
// worker. The flat-file store has no natural row IDs, so the message
// carries the full row rather than a reference to fetch.
type DecisionLoggedMessage struct {
	MessageID string    `json:"message_id"`
	Label     string    `json:"label"`
	Category  string    `json:"category"`
	Wealth    int       `json:"wealth"`
	Health    int       `json:"health"`
	Self      int       `json:"self"`
	LoggedAt  time.Time `json:"logged_at"`
	Published time.Time `json:"published"`
}

// NewDecisionLoggedMessage builds a mirror message for the decision.
func NewDecisionLoggedMessage(d core.Decision) *DecisionLoggedMessage {
	return &DecisionLoggedMessage{
		MessageID: uuid.NewString(),
		Label:     d.Label,
		Category:  string(d.Category),
		Wealth:    int(d.Wealth),
		Health:    int(d.Health),
		Self:      int(d.Self),
		LoggedAt:  d.LoggedAt.Time,
		Published: time.Now(),
	}
}

// Decision reconstructs the logged decision from the message payload.
func (m *DecisionLoggedMessage) Decision() core.Decision {
	return core.Decision{
		Label:    m.Label,
		Category: core.Category(m.Category),
		Wealth:   core.Score(m.Wealth),
		Health:   core.Score(m.Health),
		Self:     core.Score(m.Self),
		LoggedAt: core.NewLogTime(m.LoggedAt),
	}
}

func (m *DecisionLoggedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DecisionLoggedMessageFromJSON(data []byte) (*DecisionLoggedMessage, error) {
	var msg DecisionLoggedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
