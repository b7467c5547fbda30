// Package upload owns the lifecycle of one recording upload: candidate selection,
// local validation, submission to the analysis backend and an explicit reset.
package upload

import (
	"time"

	"github.com/google/uuid"

	"github.com/diallo/callreview/pkg/errors"
)

// State is the lifecycle state of the controller's job
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// InFlight reports whether a job is being validated or submitted
func (s State) InFlight() bool {
	return s == StateValidating || s == StateSubmitting
}

// Terminal reports whether only Reset leaves the state
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Reason explains a failed job
type Reason string

const (
	ReasonMissingFields   Reason = "missing_fields"
	ReasonInvalidFileType Reason = "invalid_file_type"
	ReasonTransport       Reason = "transport"
	ReasonDomainFailure   Reason = "domain_failure"
	ReasonDecode          Reason = "decode"
)

// Profile selects the backend's transcription engine
type Profile string

const (
	ProfileGroq     Profile = "groq"
	ProfileOpenAI   Profile = "openai"
	ProfileDeepgram Profile = "deepgram"
)

// DefaultProfile is used when a candidate names none
const DefaultProfile = ProfileDeepgram

// Profiles lists the supported profiles
var Profiles = []Profile{ProfileGroq, ProfileOpenAI, ProfileDeepgram}

// Supported reports whether the backend knows p
func (p Profile) Supported() bool {
	for _, known := range Profiles {
		if p == known {
			return true
		}
	}
	return false
}

// File is the recording chosen for upload
type File struct {
	Name      string `json:"name" validate:"required"`
	MediaType string `json:"media_type"`
	Data      []byte `json:"-" validate:"required,min=1"`
}

// Candidate is the form state before submission
type Candidate struct {
	File              File    `json:"file"`
	AgentID           string  `json:"agent_id" validate:"required"`
	CounterpartyName  string  `json:"counterparty_name" validate:"required"`
	CounterpartyPhone string  `json:"counterparty_phone" validate:"required"`
	Profile           Profile `json:"profile" validate:"required,oneof=groq openai deepgram"`
}

func (c Candidate) clone() Candidate {
	if c.File.Data != nil {
		c.File.Data = append([]byte(nil), c.File.Data...)
	}
	return c
}

func (c Candidate) equal(o Candidate) bool {
	return c.File.Name == o.File.Name &&
		c.File.MediaType == o.File.MediaType &&
		string(c.File.Data) == string(o.File.Data) &&
		c.AgentID == o.AgentID &&
		c.CounterpartyName == o.CounterpartyName &&
		c.CounterpartyPhone == o.CounterpartyPhone &&
		c.Profile == o.Profile
}

// Job is a snapshot of the controller. ID is uuid.Nil while Idle.
type Job struct {
	ID         uuid.UUID  `json:"id"`
	State      State      `json:"state"`
	Candidate  Candidate  `json:"candidate"`
	ResultID   string     `json:"result_id,omitempty"`
	Reason     Reason     `json:"reason,omitempty"`
	Message    string     `json:"message,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Controller errors. Each leaves the controller unchanged.
var (
	ErrJobInFlight = newControllerError("JOB_IN_FLIGHT", "an upload is already in progress", "errors.job_in_flight")
	ErrTerminal    = newControllerError("JOB_TERMINAL", "reset before starting a new upload", "errors.job_terminal")
	ErrNotIdle     = newControllerError("NOT_IDLE", "the candidate can only change while idle", "errors.not_idle")
)

// CodeUnsupportedProfile rejects a candidate naming an unknown profile
const CodeUnsupportedProfile = "UNSUPPORTED_PROFILE"

func unsupportedProfile(p Profile) *errors.AppError {
	err := errors.BadRequest("unsupported processing profile " + string(p))
	err.Code = CodeUnsupportedProfile
	err.MessageKey = "errors.unsupported_profile"
	err.Params = map[string]string{"profile": string(p)}
	return err
}

func newControllerError(code, message, key string) *errors.AppError {
	err := errors.Conflict(message)
	err.Code = code
	err.MessageKey = key
	return err
}
