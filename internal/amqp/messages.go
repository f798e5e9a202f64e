package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"ledgerbot/internal/notify"
)

// LedgerEventMessage is the JSON body published for every ledger event.
// Amounts are decimal strings with two places, as in the expense log.
type LedgerEventMessage struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Category  string    `json:"category"`
	Amount    string    `json:"amount"`
	Total     string    `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEventMessage wraps ev with a fresh message ID.
func NewLedgerEventMessage(ev notify.Event) *LedgerEventMessage {
	ts := ev.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return &LedgerEventMessage{
		ID:        uuid.NewString(),
		Type:      ev.Type,
		Category:  ev.Category,
		Amount:    ev.Amount.String(),
		Total:     ev.Total.String(),
		Timestamp: ts.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
