package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/diallo/callreview/pkg/errors"
)

// Backend paths
const (
	PathCalls      = "/calls"
	PathAgents     = "/agents"
	PathTranscribe = "/transcribe"
	PathDocs       = "/docs"
)

// Submission is the multipart payload of POST /transcribe
type Submission struct {
	FileName         string
	MediaType        string
	Data             []byte
	AgentName        string
	PatientName      string
	AgentPhoneNumber string
}

// Backend wraps Client with the typed calls the console makes
type Backend struct {
	client       *Client
	profileParam string
}

// NewBackend creates a typed backend. profileParam names the query parameter
// carrying the processing profile on /transcribe.
func NewBackend(client *Client, profileParam string) *Backend {
	if profileParam == "" {
		profileParam = "tts_model"
	}
	return &Backend{client: client, profileParam: profileParam}
}

// ListCalls fetches every analyzed call as raw report documents
func (b *Backend) ListCalls(ctx context.Context) ([]any, error) {
	payload, err := b.client.Request(ctx, http.MethodGet, PathCalls, nil, nil)
	if err != nil {
		return nil, err
	}

	var docs []any
	if err := json.Unmarshal(payload, &docs); err != nil {
		return nil, errors.Decode(fmt.Errorf("calls payload: %w", err))
	}
	return docs, nil
}

// ListAgents fetches the known agent identifiers
func (b *Backend) ListAgents(ctx context.Context) ([]string, error) {
	payload, err := b.client.Request(ctx, http.MethodGet, PathAgents, nil, nil)
	if err != nil {
		return nil, err
	}

	var agents []string
	if err := json.Unmarshal(payload, &agents); err != nil {
		return nil, errors.Decode(fmt.Errorf("agents payload: %w", err))
	}
	return agents, nil
}

// Transcribe submits a recording and returns the identifier of the resulting report
func (b *Backend) Transcribe(ctx context.Context, profile string, s Submission) (string, error) {
	body := NewMultipartBody().
		File(FormFile{Field: "file", Name: s.FileName, MediaType: s.MediaType, Data: s.Data}).
		Field("agent_name", s.AgentName).
		Field("patient_name", s.PatientName).
		Field("agent_phone_number", s.AgentPhoneNumber)

	query := url.Values{}
	if profile != "" {
		query.Set(b.profileParam, profile)
	}

	payload, err := b.client.Request(ctx, http.MethodPost, PathTranscribe, query, body)
	if err != nil {
		return "", err
	}

	var id string
	if err := json.Unmarshal(payload, &id); err != nil || id == "" {
		return "", errors.Decode(fmt.Errorf("transcribe payload is not an identifier: %s", truncate(payload)))
	}
	return id, nil
}

// GetDocument fetches the raw report document for one call
func (b *Backend) GetDocument(ctx context.Context, docID string) (any, error) {
	payload, err := b.client.Request(ctx, http.MethodGet, PathDocs, url.Values{"doc_id": {docID}}, nil)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, errors.Decode(fmt.Errorf("document payload: %w", err))
	}
	return doc, nil
}

func truncate(raw json.RawMessage) string {
	const max = 120
	if len(raw) > max {
		return string(raw[:max]) + "..."
	}
	return string(raw)
}
