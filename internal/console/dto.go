package console

import (
	"time"

	"github.com/google/uuid"

	"github.com/diallo/callreview/internal/detail"
	"github.com/diallo/callreview/internal/render"
	"github.com/diallo/callreview/internal/upload"
)

type candidateResponse struct {
	FileName          string `json:"file_name,omitempty"`
	MediaType         string `json:"media_type,omitempty"`
	Size              int    `json:"size"`
	AgentID           string `json:"agent_id"`
	CounterpartyName  string `json:"counterparty_name"`
	CounterpartyPhone string `json:"counterparty_phone"`
	Profile           string `json:"profile"`
}

type uploadResponse struct {
	ID         string            `json:"id,omitempty"`
	State      upload.State      `json:"state"`
	Candidate  candidateResponse `json:"candidate"`
	ResultID   string            `json:"result_id,omitempty"`
	ReportPath string            `json:"report_path,omitempty"`
	Reason     upload.Reason     `json:"reason,omitempty"`
	Message    string            `json:"message,omitempty"`
	StartedAt  *time.Time        `json:"started_at,omitempty"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
}

func toUploadResponse(job upload.Job) uploadResponse {
	resp := uploadResponse{
		State: job.State,
		Candidate: candidateResponse{
			FileName:          job.Candidate.File.Name,
			MediaType:         job.Candidate.File.MediaType,
			Size:              len(job.Candidate.File.Data),
			AgentID:           job.Candidate.AgentID,
			CounterpartyName:  job.Candidate.CounterpartyName,
			CounterpartyPhone: job.Candidate.CounterpartyPhone,
			Profile:           string(job.Candidate.Profile),
		},
		ResultID:   job.ResultID,
		Reason:     job.Reason,
		Message:    job.Message,
		StartedAt:  job.StartedAt,
		FinishedAt: job.FinishedAt,
	}
	if job.ID != uuid.Nil {
		resp.ID = job.ID.String()
	}
	if job.ResultID != "" {
		resp.ReportPath = "/api/v1/reports/" + job.ResultID
	}
	return resp
}

type reportResponse struct {
	ID        string           `json:"id"`
	State     detail.State     `json:"state"`
	Seq       uint64           `json:"seq"`
	Sections  []render.Section `json:"sections"`
	UpdatedAt *time.Time       `json:"updated_at,omitempty"`
}

func toReportResponse(s detail.Snapshot) reportResponse {
	resp := reportResponse{
		ID:        s.ID,
		State:     s.State,
		Seq:       s.Seq,
		Sections:  []render.Section{},
		UpdatedAt: s.UpdatedAt,
	}
	if s.View != nil {
		resp.Sections = s.View.Sections()
	}
	return resp
}

// failure is the data carried next to an error body
type failure struct {
	Notification Notification    `json:"notification"`
	Upload       *uploadResponse `json:"upload,omitempty"`
	Report       *reportResponse `json:"report,omitempty"`
}

type uploadResult struct {
	Upload       uploadResponse `json:"upload"`
	Changed      *bool          `json:"changed,omitempty"`
	Notification *Notification  `json:"notification,omitempty"`
}

type selectionRequest struct {
	Selected *bool `json:"selected" validate:"required"`
}
