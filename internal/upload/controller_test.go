package upload_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diallo/callreview/internal/resource"
	"github.com/diallo/callreview/internal/upload"
	"github.com/diallo/callreview/pkg/config"
	"github.com/diallo/callreview/pkg/errors"
	"github.com/diallo/callreview/pkg/logger"
	"github.com/diallo/callreview/pkg/messaging"
	"github.com/diallo/callreview/pkg/testutil"
)

var uploadConfig = config.UploadConfig{
	AudioExtensions: []string{".gsm"},
	DefaultProfile:  "deepgram",
}

// countingTranscriber records calls and optionally blocks until released
type countingTranscriber struct {
	mu       sync.Mutex
	calls    int
	profile  string
	last     resource.Submission
	resultID string
	err      error

	entered chan struct{}
	release chan struct{}
}

func (f *countingTranscriber) Transcribe(ctx context.Context, profile string, s resource.Submission) (string, error) {
	f.mu.Lock()
	f.calls++
	f.profile = profile
	f.last = s
	f.mu.Unlock()

	if f.entered != nil {
		close(f.entered)
	}
	if f.release != nil {
		<-f.release
	}
	return f.resultID, f.err
}

func (f *countingTranscriber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingPublisher struct {
	mu     sync.Mutex
	types  []string
	events []messaging.UploadOutcomeEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, eventType)
	p.events = append(p.events, data.(messaging.UploadOutcomeEvent))
	return p.err
}

func validCandidate() upload.Candidate {
	return upload.Candidate{
		File:              upload.File{Name: "call.gsm", Data: []byte("GSM-FRAMES")},
		AgentID:           "agent-7",
		CounterpartyName:  "Jean Martin",
		CounterpartyPhone: "+221770000000",
	}
}

func newController(t *testing.T, tr upload.Transcriber, pub upload.Publisher) *upload.Controller {
	t.Helper()
	return upload.NewController(tr, pub, uploadConfig, logger.Nop())
}

func TestController_Accepts(t *testing.T) {
	c := newController(t, &countingTranscriber{}, nil)

	tests := []struct {
		name      string
		mediaType string
		want      bool
	}{
		{"call.gsm", "", true},
		{"call.gsm", "application/x-unknown", true},
		{"CALL.GSM", "", true},
		{"notes.txt", "text/plain", false},
		{"song.mp3", "audio/mpeg", true},
		{"voice", "Audio/Wav", true},
		{"archive.gsm.zip", "application/zip", false},
	}

	for _, tt := range tests {
		t.Run(tt.name+"|"+tt.mediaType, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Accepts(tt.name, tt.mediaType))
		})
	}
}

func TestController_MissingFieldsNeverReachesNetwork(t *testing.T) {
	tr := &countingTranscriber{resultID: "abc123"}
	c := newController(t, tr, nil)

	candidate := validCandidate()
	candidate.AgentID = ""
	_, err := c.Select(candidate)
	require.NoError(t, err)

	job, err := c.Submit(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingFields))
	assert.Equal(t, upload.StateFailed, job.State)
	assert.Equal(t, upload.ReasonMissingFields, job.Reason)
	assert.Equal(t, 0, tr.Calls())
}

func TestController_MissingFile(t *testing.T) {
	tr := &countingTranscriber{resultID: "abc123"}
	c := newController(t, tr, nil)

	candidate := validCandidate()
	candidate.File = upload.File{}
	_, err := c.Select(candidate)
	require.NoError(t, err)

	job, err := c.Submit(context.Background())

	require.Error(t, err)
	assert.Equal(t, upload.ReasonMissingFields, job.Reason)
	assert.Equal(t, 0, tr.Calls())
}

func TestController_InvalidFileTypeNeverReachesNetwork(t *testing.T) {
	tr := &countingTranscriber{resultID: "abc123"}
	c := newController(t, tr, nil)

	candidate := validCandidate()
	candidate.File = upload.File{Name: "notes.txt", MediaType: "text/plain", Data: []byte("hello")}
	_, err := c.Select(candidate)
	require.NoError(t, err)

	job, err := c.Submit(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidFileType))
	assert.Equal(t, upload.StateFailed, job.State)
	assert.Equal(t, upload.ReasonInvalidFileType, job.Reason)
	assert.Equal(t, 0, tr.Calls())
}

func TestController_SubmitSucceedsAgainstBackend(t *testing.T) {
	fake := testutil.NewFakeBackend(t)
	fake.On(http.MethodPost, resource.PathTranscribe, testutil.OK("response", "abc123"))

	backend := resource.NewBackend(resource.NewClient(fake.URL(), 5*time.Second, logger.Nop()), "tts_model")
	c := newController(t, backend, nil)

	_, err := c.Select(validCandidate())
	require.NoError(t, err)

	job, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, upload.StateSucceeded, job.State)
	assert.Equal(t, "abc123", job.ResultID)
	assert.NotEqual(t, uuid.Nil, job.ID)
	require.NotNil(t, job.FinishedAt)

	requests := fake.Requests()
	require.Len(t, requests, 1)
	req := requests[0]
	assert.Equal(t, "deepgram", req.Query.Get("tts_model"))
	assert.Equal(t, "file", req.FileField)
	assert.Equal(t, "call.gsm", req.FileName)
	assert.Equal(t, []byte("GSM-FRAMES"), req.FileData)
	assert.Equal(t, map[string]string{
		"agent_name":         "agent-7",
		"patient_name":       "Jean Martin",
		"agent_phone_number": "+221770000000",
	}, req.Form)
}

func TestController_TransportFailureThenReset(t *testing.T) {
	fake := testutil.NewFakeBackend(t)
	fake.On(http.MethodPost, resource.PathTranscribe, testutil.Raw(http.StatusBadGateway, "<html>bad gateway</html>"))

	backend := resource.NewBackend(resource.NewClient(fake.URL(), 5*time.Second, logger.Nop()), "tts_model")
	c := newController(t, backend, nil)

	_, err := c.Select(validCandidate())
	require.NoError(t, err)

	job, err := c.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTransport))
	assert.Equal(t, upload.StateFailed, job.State)
	assert.Equal(t, upload.ReasonTransport, job.Reason)

	job, err = c.Reset()
	require.NoError(t, err)
	assert.Equal(t, upload.StateIdle, job.State)
	assert.Equal(t, upload.Candidate{}, job.Candidate)
	assert.Equal(t, upload.Job{State: upload.StateIdle}, c.Snapshot())
	assert.Equal(t, 1, fake.Count(http.MethodPost, resource.PathTranscribe))
}

func TestController_DomainFailureKeepsBackendMessage(t *testing.T) {
	tr := &countingTranscriber{err: errors.DomainFailure("recording too short")}
	c := newController(t, tr, nil)

	_, err := c.Select(validCandidate())
	require.NoError(t, err)

	job, err := c.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, upload.ReasonDomainFailure, job.Reason)
	assert.Equal(t, "recording too short", job.Message)
}

func TestController_ProfileIsPassedThrough(t *testing.T) {
	tr := &countingTranscriber{resultID: "r1"}
	c := newController(t, tr, nil)

	candidate := validCandidate()
	candidate.Profile = "Groq"
	_, err := c.Select(candidate)
	require.NoError(t, err)

	_, err = c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "groq", tr.profile)
	assert.Equal(t, "agent-7", tr.last.AgentName)
}

func TestController_SecondSubmitWhileInFlightIsRejected(t *testing.T) {
	tr := &countingTranscriber{
		resultID: "abc123",
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	c := newController(t, tr, nil)

	_, err := c.Select(validCandidate())
	require.NoError(t, err)

	done := make(chan upload.Job)
	go func() {
		job, _ := c.Submit(context.Background())
		done <- job
	}()
	<-tr.entered

	snapshot, err := c.Submit(context.Background())
	assert.True(t, errors.Is(err, upload.ErrJobInFlight))
	assert.Equal(t, upload.StateSubmitting, snapshot.State)

	_, err = c.Select(validCandidate())
	assert.True(t, errors.Is(err, upload.ErrNotIdle))

	_, err = c.Reset()
	assert.True(t, errors.Is(err, upload.ErrJobInFlight))

	close(tr.release)
	job := <-done

	assert.Equal(t, upload.StateSucceeded, job.State)
	assert.Equal(t, 1, tr.Calls())
}

func TestController_SubmitFromTerminalRequiresReset(t *testing.T) {
	tr := &countingTranscriber{resultID: "abc123"}
	c := newController(t, tr, nil)

	_, err := c.Select(validCandidate())
	require.NoError(t, err)
	_, err = c.Submit(context.Background())
	require.NoError(t, err)

	job, err := c.Submit(context.Background())
	assert.True(t, errors.Is(err, upload.ErrTerminal))
	assert.Equal(t, upload.StateSucceeded, job.State)
	assert.Equal(t, 1, tr.Calls())

	_, err = c.Reset()
	require.NoError(t, err)
	_, err = c.Select(validCandidate())
	require.NoError(t, err)
	_, err = c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Calls())
}

func TestController_Select(t *testing.T) {
	c := newController(t, &countingTranscriber{}, nil)

	changed, err := c.Select(validCandidate())
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = c.Select(validCandidate())
	require.NoError(t, err)
	assert.False(t, changed, "identical candidate is not a change")

	candidate := validCandidate()
	candidate.AgentID = "  agent-7  "
	changed, err = c.Select(candidate)
	require.NoError(t, err)
	assert.False(t, changed, "surrounding whitespace is ignored")

	snapshot := c.Snapshot()
	assert.Equal(t, upload.StateIdle, snapshot.State)
	assert.Equal(t, upload.ProfileDeepgram, snapshot.Candidate.Profile)
}

func TestController_SnapshotDoesNotAliasCandidate(t *testing.T) {
	c := newController(t, &countingTranscriber{}, nil)

	candidate := validCandidate()
	_, err := c.Select(candidate)
	require.NoError(t, err)

	candidate.File.Data[0] = 'X'
	snapshot := c.Snapshot()
	snapshot.Candidate.File.Data[1] = 'Y'

	assert.Equal(t, []byte("GSM-FRAMES"), c.Snapshot().Candidate.File.Data)
}

func TestController_PublishesOutcomes(t *testing.T) {
	pub := &recordingPublisher{}
	tr := &countingTranscriber{resultID: "abc123"}
	c := newController(t, tr, pub)

	_, err := c.Select(validCandidate())
	require.NoError(t, err)
	job, err := c.Submit(context.Background())
	require.NoError(t, err)

	_, err = c.Reset()
	require.NoError(t, err)
	_, err = c.Submit(context.Background())
	require.Error(t, err)

	require.Len(t, pub.events, 2)
	assert.Equal(t, []string{messaging.EventUploadSucceeded, messaging.EventUploadFailed}, pub.types)

	assert.Equal(t, job.ID.String(), pub.events[0].JobID)
	assert.Equal(t, "abc123", pub.events[0].ResultID)
	assert.Equal(t, "agent-7", pub.events[0].AgentID)
	assert.Equal(t, "deepgram", pub.events[0].Profile)

	assert.Equal(t, "failed", pub.events[1].State)
	assert.Equal(t, string(upload.ReasonMissingFields), pub.events[1].Reason)
}

func TestController_PublishErrorDoesNotFailJob(t *testing.T) {
	pub := &recordingPublisher{err: errors.Internal("broker down")}
	c := newController(t, &countingTranscriber{resultID: "abc123"}, pub)

	_, err := c.Select(validCandidate())
	require.NoError(t, err)

	job, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, upload.StateSucceeded, job.State)
}

// stalledPublisher blocks until its context ends, like a broker that never answers
type stalledPublisher struct {
	done chan error
}

func (p *stalledPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	<-ctx.Done()
	p.done <- ctx.Err()
	return ctx.Err()
}

func TestController_StalledPublisherIsBounded(t *testing.T) {
	pub := &stalledPublisher{done: make(chan error, 1)}
	cfg := uploadConfig
	cfg.PublishTimeout = 20 * time.Millisecond
	c := upload.NewController(&countingTranscriber{resultID: "abc123"}, pub, cfg, logger.Nop())

	_, err := c.Select(validCandidate())
	require.NoError(t, err)

	start := time.Now()
	job, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, upload.StateSucceeded, job.State)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.ErrorIs(t, <-pub.done, context.DeadlineExceeded)
}

func TestController_UnsupportedProfileRejectedOnSelect(t *testing.T) {
	tr := &countingTranscriber{}
	c := newController(t, tr, nil)

	candidate := validCandidate()
	candidate.Profile = "Whisper"
	changed, err := c.Select(candidate)
	require.Error(t, err)
	assert.False(t, changed)
	assert.Equal(t, upload.CodeUnsupportedProfile, errors.CodeOf(err))

	snapshot := c.Snapshot()
	assert.Equal(t, upload.StateIdle, snapshot.State)
	assert.Empty(t, snapshot.Candidate.AgentID, "rejected candidate is not kept")
	assert.Equal(t, 0, tr.Calls())
}

func TestController_UnsupportedDefaultProfileFallsBack(t *testing.T) {
	cfg := uploadConfig
	cfg.DefaultProfile = "whisper"
	c := upload.NewController(&countingTranscriber{}, nil, cfg, logger.Nop())

	_, err := c.Select(validCandidate())
	require.NoError(t, err)
	assert.Equal(t, upload.DefaultProfile, c.Snapshot().Candidate.Profile)
}
