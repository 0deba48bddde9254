package domain

import (
	"encoding/json"
	"time"
)

// Event is an operational or audit event streamed to Kafka, OTel logs, and Loki.
// The JSON shape is the Kafka message value consumed by the audit worker.
type Event struct {
	EventType string          `json:"eventType"`
	Source    string          `json:"source"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewEvent builds an Event stamped with the current UTC time. metadata is marshaled as JSON;
// a value that cannot be marshaled is dropped.
func NewEvent(eventType, source string, metadata any) *Event {
	e := &Event{EventType: eventType, Source: source, CreatedAt: time.Now().UTC()}
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			e.Metadata = b
		}
	}
	return e
}
