package amqp

import (
	"encoding/json"
	"time"
)

// Export actions carried by TransactionExportMessage.
const (
	ActionUpsert = "upsert"
	ActionDelete = "delete"
)

// TransactionExportMessage is a lightweight pointer to a transaction that
// needs exporting. The worker fetches the full row from the database, so the
// message only needs the ID and the action.
type TransactionExportMessage struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionExportMessage(id, action string) *TransactionExportMessage {
	return &TransactionExportMessage{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *TransactionExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionExportMessageFromJSON(data []byte) (*TransactionExportMessage, error) {
	var msg TransactionExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
