package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry event actions carried on the export queue.
const (
	ActionSync   = "sync"
	ActionDelete = "delete"
)

// EntryEventMessage is a lightweight notification about a time entry.
// It carries only the entry ID and the action; the worker fetches the
// full entry from the database when it processes the message.
type EntryEventMessage struct {
	EntryID   string    `json:"entry_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntrySyncMessage builds a sync notification for an entry.
func NewEntrySyncMessage(entryID string) *EntryEventMessage {
	return &EntryEventMessage{
		EntryID:   entryID,
		Action:    ActionSync,
		Timestamp: time.Now(),
	}
}

// NewEntryDeleteMessage builds a delete notification for an entry.
func NewEntryDeleteMessage(entryID string) *EntryEventMessage {
	return &EntryEventMessage{
		EntryID:   entryID,
		Action:    ActionDelete,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *EntryEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryEventMessageFromJSON parses a message from JSON bytes.
func EntryEventMessageFromJSON(data []byte) (*EntryEventMessage, error) {
	var msg EntryEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.EntryID == "" {
		return nil, fmt.Errorf("message without entry_id")
	}
	switch msg.Action {
	case ActionSync, ActionDelete:
	default:
		return nil, fmt.Errorf("unknown action %q", msg.Action)
	}
	return &msg, nil
}
