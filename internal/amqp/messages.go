package amqp

import (
	"encoding/json"
	"time"

	"github.com/felipetaua/finan/internal/core"
)

// TransactionCreatedMessage announces a newly saved transaction so
// side effects (the XP award) can run off the request path. It
// carries only identifiers and the type; consumers fetch anything
// else from the store.
type TransactionCreatedMessage struct {
	ID        string               `json:"id"`
	UserID    string               `json:"user_id"`
	Type      core.TransactionType `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
}

func NewTransactionCreatedMessage(id, userID string, typ core.TransactionType) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		ID:        id,
		UserID:    userID,
		Type:      typ,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
