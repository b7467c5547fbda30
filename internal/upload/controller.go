package upload

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diallo/callreview/internal/resource"
	"github.com/diallo/callreview/pkg/config"
	"github.com/diallo/callreview/pkg/errors"
	"github.com/diallo/callreview/pkg/httputil"
	"github.com/diallo/callreview/pkg/logger"
	"github.com/diallo/callreview/pkg/messaging"
)

// Transcriber submits a recording to the analysis backend and returns the result identifier
type Transcriber interface {
	Transcribe(ctx context.Context, profile string, s resource.Submission) (string, error)
}

// Publisher emits job outcome events
type Publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// defaultPublishTimeout applies when the configuration leaves it unset
const defaultPublishTimeout = 5 * time.Second

// Controller drives at most one upload job at a time.
//
//	Idle --Submit--> Validating --ok--> Submitting --> Succeeded | Failed
//	                      \--invalid--> Failed
//	Succeeded | Failed --Reset--> Idle
type Controller struct {
	transcriber Transcriber
	publisher   Publisher
	extensions  []string
	profile     Profile
	pubTimeout  time.Duration
	log         *logger.Logger
	now         func() time.Time

	mu        sync.Mutex
	state     State
	candidate Candidate
	job       Job
}

// NewController creates an idle controller. publisher may be nil.
func NewController(t Transcriber, publisher Publisher, cfg config.UploadConfig, log *logger.Logger) *Controller {
	log = log.WithComponent("upload")

	profile := Profile(strings.ToLower(strings.TrimSpace(cfg.DefaultProfile)))
	if !profile.Supported() {
		if profile != "" {
			log.Warn().Str("profile", string(profile)).Msg("unsupported default profile, using " + string(DefaultProfile))
		}
		profile = DefaultProfile
	}

	pubTimeout := cfg.PublishTimeout
	if pubTimeout <= 0 {
		pubTimeout = defaultPublishTimeout
	}

	extensions := make([]string, 0, len(cfg.AudioExtensions))
	for _, ext := range cfg.AudioExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions = append(extensions, ext)
	}

	return &Controller{
		transcriber: t,
		publisher:   publisher,
		extensions:  extensions,
		profile:     profile,
		pubTimeout:  pubTimeout,
		log:         log,
		now:         time.Now,
		state:       StateIdle,
	}
}

// Accepts reports whether a file with this name and declared media type may be
// uploaded: any audio/* media type, or a name with a configured extension.
func (c *Controller) Accepts(name, mediaType string) bool {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "audio/") {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range c.extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Select replaces the candidate. It reports whether anything changed.
func (c *Controller) Select(candidate Candidate) (bool, error) {
	candidate = c.prepare(candidate)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return false, ErrNotIdle
	}
	if !candidate.Profile.Supported() {
		return false, unsupportedProfile(candidate.Profile)
	}
	if c.candidate.equal(candidate) {
		return false, nil
	}
	c.candidate = candidate.clone()
	return true, nil
}

// Submit validates the candidate and, when valid, sends it to the backend.
// It returns the terminal job and, for a failed job, the failure cause.
// Validation failures never reach the network.
func (c *Controller) Submit(ctx context.Context) (Job, error) {
	c.mu.Lock()
	switch {
	case c.state.InFlight():
		snapshot := c.snapshotLocked()
		c.mu.Unlock()
		return snapshot, ErrJobInFlight
	case c.state.Terminal():
		snapshot := c.snapshotLocked()
		c.mu.Unlock()
		return snapshot, ErrTerminal
	}

	started := c.now()
	c.state = StateValidating
	c.job = Job{
		ID:        uuid.New(),
		State:     StateValidating,
		Candidate: c.candidate.clone(),
		StartedAt: &started,
	}
	log := c.log.WithJobID(c.job.ID.String())

	if err := c.validate(c.job.Candidate); err != nil {
		job := c.finishLocked(StateFailed, "", reasonOf(err), err)
		c.mu.Unlock()
		log.Info().Str("reason", string(job.Reason)).Msg("upload rejected locally")
		c.publish(ctx, job)
		return job, err
	}

	c.state = StateSubmitting
	c.job.State = StateSubmitting
	candidate := c.job.Candidate
	c.mu.Unlock()

	log.Info().
		Str("file", candidate.File.Name).
		Str("agent_id", candidate.AgentID).
		Str("profile", string(candidate.Profile)).
		Int("size", len(candidate.File.Data)).
		Msg("submitting upload")

	resultID, err := c.transcriber.Transcribe(ctx, string(candidate.Profile), resource.Submission{
		FileName:         candidate.File.Name,
		MediaType:        candidate.File.MediaType,
		Data:             candidate.File.Data,
		AgentName:        candidate.AgentID,
		PatientName:      candidate.CounterpartyName,
		AgentPhoneNumber: candidate.CounterpartyPhone,
	})

	c.mu.Lock()
	var job Job
	if err != nil {
		job = c.finishLocked(StateFailed, "", reasonOf(err), err)
	} else {
		job = c.finishLocked(StateSucceeded, resultID, "", nil)
	}
	c.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Str("reason", string(job.Reason)).Msg("upload failed")
	} else {
		log.Info().Str("result_id", resultID).Msg("upload succeeded")
	}
	c.publish(ctx, job)

	return job, err
}

// Reset returns the controller to Idle and clears the candidate. It is
// rejected while a job is in flight; there is no cancellation.
func (c *Controller) Reset() (Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.InFlight() {
		return c.snapshotLocked(), ErrJobInFlight
	}
	c.state = StateIdle
	c.candidate = Candidate{}
	c.job = Job{}
	return c.snapshotLocked(), nil
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Job {
	if c.state == StateIdle {
		return Job{State: StateIdle, Candidate: c.candidate.clone()}
	}
	job := c.job
	job.Candidate = job.Candidate.clone()
	return job
}

func (c *Controller) finishLocked(state State, resultID string, reason Reason, cause error) Job {
	finished := c.now()
	c.state = state
	c.job.State = state
	c.job.ResultID = resultID
	c.job.Reason = reason
	c.job.FinishedAt = &finished
	if cause != nil {
		c.job.Message = failureMessage(cause)
	}
	return c.snapshotLocked()
}

func (c *Controller) prepare(candidate Candidate) Candidate {
	candidate.File.Name = strings.TrimSpace(candidate.File.Name)
	candidate.File.MediaType = strings.TrimSpace(candidate.File.MediaType)
	candidate.AgentID = strings.TrimSpace(candidate.AgentID)
	candidate.CounterpartyName = strings.TrimSpace(candidate.CounterpartyName)
	candidate.CounterpartyPhone = strings.TrimSpace(candidate.CounterpartyPhone)
	candidate.Profile = Profile(strings.ToLower(strings.TrimSpace(string(candidate.Profile))))
	if candidate.Profile == "" {
		candidate.Profile = c.profile
	}
	return candidate
}

func (c *Controller) validate(candidate Candidate) error {
	if fields := httputil.Validate(candidate); fields != nil {
		return errors.MissingFields(fields)
	}
	if !c.Accepts(candidate.File.Name, candidate.File.MediaType) {
		return errors.InvalidFileType(candidate.File.Name)
	}
	return nil
}

func (c *Controller) publish(ctx context.Context, job Job) {
	if c.publisher == nil {
		return
	}

	eventType := messaging.EventUploadSucceeded
	if job.State == StateFailed {
		eventType = messaging.EventUploadFailed
	}

	var duration int64
	if job.StartedAt != nil && job.FinishedAt != nil {
		duration = job.FinishedAt.Sub(*job.StartedAt).Milliseconds()
	}

	event := messaging.UploadOutcomeEvent{
		JobID:            job.ID.String(),
		State:            string(job.State),
		ResultID:         job.ResultID,
		Reason:           string(job.Reason),
		Message:          job.Message,
		AgentID:          job.Candidate.AgentID,
		CounterpartyName: job.Candidate.CounterpartyName,
		Profile:          string(job.Candidate.Profile),
		FileName:         job.Candidate.File.Name,
		DurationMs:       duration,
	}
	if job.FinishedAt != nil {
		event.FinishedAt = job.FinishedAt.UTC()
	}

	// the job is already terminal; a slow broker must not hold up the caller
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.pubTimeout)
	defer cancel()
	pubCtx = messaging.WithCorrelationID(pubCtx, job.ID.String())
	if err := c.publisher.Publish(pubCtx, eventType, event); err != nil {
		c.log.Warn().Err(err).Str("job_id", event.JobID).Msg("failed to publish upload outcome")
	}
}

func reasonOf(err error) Reason {
	switch errors.CodeOf(err) {
	case errors.CodeMissingFields:
		return ReasonMissingFields
	case errors.CodeInvalidFileType:
		return ReasonInvalidFileType
	case errors.CodeDomainFailure:
		return ReasonDomainFailure
	case errors.CodeDecode:
		return ReasonDecode
	default:
		return ReasonTransport
	}
}

func failureMessage(err error) string {
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
