package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope wrapping every message published to Kafka.
type Event struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	Source        string          `json:"source"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent builds an event envelope with a generated ID and current timestamp.
func NewEvent(eventType, aggregateID, source string, data any) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		EventID:     uuid.New().String(),
		EventType:   eventType,
		AggregateID: aggregateID,
		Source:      source,
		OccurredAt:  time.Now().UTC(),
		Data:        dataBytes,
	}, nil
}

// WithCorrelationID sets the correlation ID on the event.
func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// Marshal serializes the event to JSON bytes.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalData deserializes the event payload into target.
func (e *Event) UnmarshalData(target any) error {
	return json.Unmarshal(e.Data, target)
}
