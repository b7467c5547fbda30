// Package resource executes requests against the analysis backend and classifies
// every answer as a payload, a domain failure, a transport failure or a decode failure.
package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/diallo/callreview/pkg/errors"
	"github.com/diallo/callreview/pkg/httputil"
	"github.com/diallo/callreview/pkg/logger"
)

// maxErrorBody bounds how much of a non-2xx body is read when looking for an envelope
const maxErrorBody = 1 << 20

// Body is an encoded request payload
type Body interface {
	// Encode returns the payload reader and its content type
	Encode() (io.Reader, string, error)
}

// Client provides HTTP access to the analysis backend.
// It performs exactly one attempt per call; retries are left to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new backend client. A zero timeout keeps the transport default.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.WithComponent("resource"),
	}
}

// envelope is the backend's response wrapper. Lists come back under data,
// single documents and identifiers under response.
type envelope struct {
	Success  *bool           `json:"success"`
	Response json.RawMessage `json:"response"`
	Data     json.RawMessage `json:"data"`
	Message  string          `json:"message"`
	Error    json.RawMessage `json:"error"`
}

func (e *envelope) payload() json.RawMessage {
	if present(e.Response) {
		return e.Response
	}
	if present(e.Data) {
		return e.Data
	}
	return json.RawMessage("null")
}

// failureMessage picks the backend-supplied reason for an unsuccessful envelope
func (e *envelope) failureMessage() string {
	var s string
	if present(e.Response) && json.Unmarshal(e.Response, &s) == nil && s != "" {
		return s
	}
	if e.Message != "" {
		return e.Message
	}
	if present(e.Error) && json.Unmarshal(e.Error, &s) == nil && s != "" {
		return s
	}
	return "unknown error"
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Request executes one request and returns the envelope's payload field.
// Errors are *errors.AppError with code TRANSPORT, DOMAIN_FAILURE or DECODE; a
// request that cannot be built never leaves the process and counts as TRANSPORT.
func (c *Client) Request(ctx context.Context, method, path string, query url.Values, body Body) (json.RawMessage, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	contentType := ""
	if body != nil {
		var err error
		reader, contentType, err = body.Encode()
		if err != nil {
			return nil, errors.Transport(fmt.Errorf("failed to encode request body: %w", err))
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.Transport(fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if requestID := httputil.GetRequestID(ctx); requestID != "" {
		httpReq.Header.Set(httputil.RequestIDHeader, requestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).
			Str("method", method).
			Str("path", path).
			Msg("backend request failed")
		return nil, errors.Transport(err)
	}
	defer resp.Body.Close()

	event := c.logger.Debug()
	if resp.StatusCode >= 300 {
		event = c.logger.Warn()
	}
	event.Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyNon2xx(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Transport(fmt.Errorf("failed to read response body: %w", err))
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Decode(err)
	}
	if env.Success == nil {
		return nil, errors.Decode(fmt.Errorf("response envelope has no success flag"))
	}
	if !*env.Success {
		return nil, errors.DomainFailure(env.failureMessage())
	}

	return env.payload(), nil
}

// classifyNon2xx keeps a structured refusal as a domain failure and treats
// anything else as a transport failure.
func classifyNon2xx(resp *http.Response) error {
	statusErr := fmt.Errorf("backend answered %s", resp.Status)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return errors.Transport(statusErr)
	}

	var env envelope
	if json.Unmarshal(data, &env) != nil || env.Success == nil || *env.Success {
		return errors.Transport(statusErr)
	}
	return errors.DomainFailure(env.failureMessage())
}
