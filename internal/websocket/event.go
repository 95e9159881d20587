package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to the entity
type EventType string

const (
	EventTypeUpdated  EventType = "updated"
	EventTypeError    EventType = "error"
	EventTypeExported EventType = "exported"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeReport EntityType = "report"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, seq, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`          // Combined type e.g. "report.updated"
	Entity    EntityType  `json:"entity"`        // Entity type e.g. "report"
	Seq       *uint64     `json:"seq,omitempty"` // Filter request this answers
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// WithSeq returns a copy of the event answering filter request seq
func (e Event) WithSeq(seq uint64) Event {
	e.Seq = &seq
	return e
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ErrorPayload describes why a report could not be produced
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Error codes sent in ErrorPayload
const (
	ErrorCodeValidation      = "validation"
	ErrorCodeDataUnavailable = "data_unavailable"
	ErrorCodeUnauthorized    = "unauthorized"
	ErrorCodeBadMessage      = "bad_message"
	ErrorCodeInternal        = "internal"
)

// ReportUpdated creates a report.updated event
func ReportUpdated(seq uint64, payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeReport, payload).WithSeq(seq)
}

// ReportError creates a report.error event
func ReportError(seq uint64, payload ErrorPayload) Event {
	return NewEvent(EventTypeError, EntityTypeReport, payload).WithSeq(seq)
}

// ReportExported creates a report.exported event
func ReportExported(payload interface{}) Event {
	return NewEvent(EventTypeExported, EntityTypeReport, payload)
}
