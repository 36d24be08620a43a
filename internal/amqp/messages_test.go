package amqp

import (
	"testing"
	"time"
)

func TestNewTransactionExportMessage(t *testing.T) {
	msg := NewTransactionExportMessage("c3a1e6b4-7f0f-4f32-9a8e-1f2d3c4b5a69", ActionUpsert)

	if msg.ID != "c3a1e6b4-7f0f-4f32-9a8e-1f2d3c4b5a69" {
		t.Errorf("ID = %v, want the original id", msg.ID)
	}
	if msg.Action != ActionUpsert {
		t.Errorf("Action = %v, want %v", msg.Action, ActionUpsert)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestTransactionExportMessage_JSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &TransactionExportMessage{
		ID:        "deadbeef-0000-4000-8000-000000000001",
		Action:    ActionDelete,
		Timestamp: timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := TransactionExportMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("TransactionExportMessageFromJSON() error = %v", err)
	}

	if parsed.ID != msg.ID {
		t.Errorf("Parsed ID = %v, want %v", parsed.ID, msg.ID)
	}
	if parsed.Action != msg.Action {
		t.Errorf("Parsed Action = %v, want %v", parsed.Action, msg.Action)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestTransactionExportMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"id": 42, "action": "upsert"}`)

	if _, err := TransactionExportMessageFromJSON(invalidJSON); err == nil {
		t.Error("TransactionExportMessageFromJSON() should fail with invalid JSON")
	}
}
