package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventUploadSucceeded = "upload.job.succeeded"
	EventUploadFailed    = "upload.job.failed"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// UploadOutcomeEvent is published when an upload job reaches a terminal state
type UploadOutcomeEvent struct {
	JobID            string    `json:"job_id"`
	State            string    `json:"state"`
	ResultID         string    `json:"result_id,omitempty"`
	Reason           string    `json:"reason,omitempty"`
	Message          string    `json:"message,omitempty"`
	AgentID          string    `json:"agent_id"`
	CounterpartyName string    `json:"counterparty_name"`
	Profile          string    `json:"profile"`
	FileName         string    `json:"file_name"`
	DurationMs       int64     `json:"duration_ms"`
	FinishedAt       time.Time `json:"finished_at"`
}
