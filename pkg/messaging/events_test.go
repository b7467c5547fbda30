package messaging_test

import (
	"testing"
	"time"

	"github.com/diallo/callreview/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_RoundTripsData(t *testing.T) {
	finished := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	outcome := messaging.UploadOutcomeEvent{
		JobID:      "job-1",
		State:      "succeeded",
		ResultID:   "abc123",
		AgentID:    "agent-7",
		Profile:    "deepgram",
		FileName:   "call.gsm",
		FinishedAt: finished,
	}

	event, err := messaging.NewEvent(messaging.EventUploadSucceeded, "callreview-console", "corr-1", outcome)
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, messaging.EventUploadSucceeded, event.Type)
	assert.Equal(t, "callreview-console", event.Source)
	assert.Equal(t, "corr-1", event.CorrelationID)
	assert.False(t, event.Timestamp.IsZero())

	var decoded messaging.UploadOutcomeEvent
	require.NoError(t, event.UnmarshalData(&decoded))
	assert.Equal(t, outcome, decoded)
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	a, err := messaging.NewEvent(messaging.EventUploadFailed, "src", "", map[string]string{})
	require.NoError(t, err)
	b, err := messaging.NewEvent(messaging.EventUploadFailed, "src", "", map[string]string{})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}
