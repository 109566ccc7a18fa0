package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// LedgerChangedMessage announces one committed ledger mutation. It carries
// identifiers only; consumers read the current state from storage.
type LedgerChangedMessage struct {
	Revision  uint64    `json:"revision"`
	Entity    string    `json:"entity"`
	Operation string    `json:"operation"`
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage stamps a change notification with the current time.
func NewLedgerChangedMessage(revision uint64, entity, operation, id string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Revision:  revision,
		Entity:    entity,
		Operation: operation,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON decodes a message and checks its required fields.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Entity == "" {
		return nil, fmt.Errorf("ledger change message without entity")
	}
	return &msg, nil
}
