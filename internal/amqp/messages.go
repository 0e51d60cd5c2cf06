package amqp

import (
	"encoding/json"
	"time"
)

// EntryEvent announces that an entry was appended to a user's ledger.
// The entry payload is carried verbatim so the mirror worker can replay
// the append against another backend without a read-back.
type EntryEvent struct {
	Username  string          `json:"username"`
	Table     string          `json:"table"`
	Entry     json.RawMessage `json:"entry"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEntryEvent builds an event for the given table and entry value.
func NewEntryEvent(username, table string, entry any) (*EntryEvent, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	return &EntryEvent{
		Username:  username,
		Table:     table,
		Entry:     payload,
		Timestamp: time.Now(),
	}, nil
}

// ToJSON converts the event to JSON bytes.
func (m *EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryEventFromJSON creates an event from JSON bytes.
func EntryEventFromJSON(data []byte) (*EntryEvent, error) {
	var msg EntryEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DecodeEntry unmarshals the carried payload into the given entry struct.
func (m *EntryEvent) DecodeEntry(v any) error {
	return json.Unmarshal(m.Entry, v)
}
