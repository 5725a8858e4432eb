package events

import (
	"encoding/json"
	"time"
)

// ExpenseEventMessage is the lightweight wire message for a ledger change.
// Consumers fetch the full record over HTTP if they need more than the status.
type ExpenseEventMessage struct {
	Event     string    `json:"event"`
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseEventMessage creates an event message with the current timestamp.
func NewExpenseEventMessage(event, id, status string) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		Event:     event,
		ID:        id,
		Status:    status,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventMessageFromJSON creates a message from JSON bytes.
func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
