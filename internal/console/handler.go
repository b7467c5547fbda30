// Package console exposes the call review components to the browser over JSON.
package console

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/diallo/callreview/internal/calls"
	"github.com/diallo/callreview/internal/detail"
	"github.com/diallo/callreview/internal/upload"
	"github.com/diallo/callreview/pkg/errors"
	"github.com/diallo/callreview/pkg/httputil"
	"github.com/diallo/callreview/pkg/logger"
)

// multipartMemory is how much of an upload form is held in memory before spilling to disk
const multipartMemory = 32 << 20

// AgentLister returns the known agent identifiers
type AgentLister interface {
	ListAgents(ctx context.Context) ([]string, error)
}

// Handler handles the console's HTTP requests
type Handler struct {
	agents      AgentLister
	uploads     *upload.Controller
	calls       *calls.List
	reports     *detail.Service
	maxFileSize int64
	log         *logger.Logger
}

// NewHandler creates a console handler
func NewHandler(agents AgentLister, uploads *upload.Controller, list *calls.List, reports *detail.Service, maxFileSize int64, log *logger.Logger) *Handler {
	return &Handler{
		agents:      agents,
		uploads:     uploads,
		calls:       list,
		reports:     reports,
		maxFileSize: maxFileSize,
		log:         log.WithComponent("console"),
	}
}

// ListAgents handles GET /api/v1/agents
func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.agents.ListAgents(r.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to list agents")
		httputil.ErrorLocalized(w, r, err, failure{Notification: fetchFailure(r.Context(), "notifications.agents_failed")})
		return
	}
	if agents == nil {
		agents = []string{}
	}
	httputil.JSON(w, http.StatusOK, agents)
}

// ListCalls handles GET /api/v1/calls?page=&per_page=&sort=&q=
// The list is loaded from the backend on first use.
func (h *Handler) ListCalls(w http.ResponseWriter, r *http.Request) {
	query, err := parseQuery(r)
	if err != nil {
		httputil.ErrorLocalized(w, r, err, failure{Notification: requestFailure(r.Context(), err)})
		return
	}

	if !h.calls.Loaded() {
		if _, err := h.calls.Refresh(r.Context()); err != nil {
			httputil.ErrorLocalized(w, r, err, failure{Notification: fetchFailure(r.Context(), "notifications.calls_failed")})
			return
		}
	}

	page, err := h.calls.Page(query)
	if err != nil {
		httputil.ErrorLocalized(w, r, err, failure{Notification: requestFailure(r.Context(), err)})
		return
	}
	httputil.JSONWithMeta(w, http.StatusOK, page.Rows, &page.Meta)
}

// RefreshCalls handles POST /api/v1/calls/refresh
func (h *Handler) RefreshCalls(w http.ResponseWriter, r *http.Request) {
	n, err := h.calls.Refresh(r.Context())
	if err != nil {
		httputil.ErrorLocalized(w, r, err, failure{Notification: fetchFailure(r.Context(), "notifications.calls_failed")})
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]int{"count": n})
}

// SetSelection handles PUT /api/v1/calls/{id}/selection
func (h *Handler) SetSelection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		err := errors.BadRequest("invalid request body")
		httputil.ErrorLocalized(w, r, err, failure{Notification: requestFailure(r.Context(), err)})
		return
	}
	if err := httputil.ValidateRequest(req); err != nil {
		httputil.ErrorLocalized(w, r, err, failure{Notification: requestFailure(r.Context(), err)})
		return
	}

	row, err := h.calls.SetSelected(id, *req.Selected)
	if err != nil {
		httputil.ErrorLocalized(w, r, err, failure{Notification: requestFailure(r.Context(), err)})
		return
	}
	httputil.JSON(w, http.StatusOK, row)
}

// GetReport handles GET /api/v1/reports/{id}
// Each call fetches the document again; a failure leaves the report in no_data.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snapshot, err := h.reports.Load(r.Context(), id)
	resp := toReportResponse(snapshot)
	if err != nil {
		httputil.ErrorLocalized(w, r, err, failure{
			Notification: fetchFailure(r.Context(), "notifications.report_failed"),
			Report:       &resp,
		})
		return
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// GetUpload handles GET /api/v1/upload
func (h *Handler) GetUpload(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, uploadResult{Upload: toUploadResponse(h.uploads.Snapshot())})
}

// SelectCandidate handles PUT /api/v1/upload/candidate
// Accepts multipart form with:
// - file: the recording (optional, keeps the current file when absent)
// - agent_id, counterparty_name, counterparty_phone, profile
func (h *Handler) SelectCandidate(w http.ResponseWriter, r *http.Request) {
	if h.maxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+multipartMemory/32)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		err := errors.BadRequest("file too large or invalid multipart form")
		httputil.ErrorLocalized(w, r, err, failure{Notification: requestFailure(r.Context(), err)})
		return
	}
	// parts above the memory limit were spilled to temp files
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.log.Warn().Err(err).Msg("failed to remove multipart temp files")
		}
	}()

	current := h.uploads.Snapshot()
	candidate := current.Candidate
	candidate.AgentID = r.FormValue("agent_id")
	candidate.CounterpartyName = r.FormValue("counterparty_name")
	candidate.CounterpartyPhone = r.FormValue("counterparty_phone")
	candidate.Profile = upload.Profile(r.FormValue("profile"))

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()

		mediaType := header.Header.Get("Content-Type")
		if !h.uploads.Accepts(header.Filename, mediaType) {
			err := errors.InvalidFileType(header.Filename)
			resp := toUploadResponse(current)
			httputil.ErrorLocalized(w, r, err, failure{Notification: uploadFailure(r.Context(), err), Upload: &resp})
			return
		}

		data, err := io.ReadAll(file)
		if err != nil {
			h.log.Error().Err(err).Msg("failed to read uploaded file")
			err := errors.Internal("failed to read uploaded file")
			httputil.ErrorLocalized(w, r, err, failure{Notification: requestFailure(r.Context(), err)})
			return
		}
		candidate.File = upload.File{Name: header.Filename, MediaType: mediaType, Data: data}
	case err != http.ErrMissingFile:
		err := errors.BadRequest("invalid file part")
		httputil.ErrorLocalized(w, r, err, failure{Notification: requestFailure(r.Context(), err)})
		return
	}

	changed, err := h.uploads.Select(candidate)
	if err != nil {
		resp := toUploadResponse(h.uploads.Snapshot())
		httputil.ErrorLocalized(w, r, err, failure{Notification: uploadFailure(r.Context(), err), Upload: &resp})
		return
	}

	httputil.JSON(w, http.StatusOK, uploadResult{
		Upload:  toUploadResponse(h.uploads.Snapshot()),
		Changed: &changed,
	})
}

// SubmitUpload handles POST /api/v1/upload/submit
// The job runs to completion even if the caller goes away.
func (h *Handler) SubmitUpload(w http.ResponseWriter, r *http.Request) {
	job, err := h.uploads.Submit(context.WithoutCancel(r.Context()))
	resp := toUploadResponse(job)
	if err != nil {
		httputil.ErrorLocalized(w, r, err, failure{Notification: uploadFailure(r.Context(), err), Upload: &resp})
		return
	}

	n := uploadedNotification(r.Context())
	httputil.JSON(w, http.StatusOK, uploadResult{Upload: resp, Notification: &n})
}

// ResetUpload handles POST /api/v1/upload/reset
func (h *Handler) ResetUpload(w http.ResponseWriter, r *http.Request) {
	job, err := h.uploads.Reset()
	resp := toUploadResponse(job)
	if err != nil {
		httputil.ErrorLocalized(w, r, err, failure{Notification: uploadFailure(r.Context(), err), Upload: &resp})
		return
	}
	httputil.JSON(w, http.StatusOK, uploadResult{Upload: resp})
}

func parseQuery(r *http.Request) (calls.Query, error) {
	values := r.URL.Query()
	q := calls.Query{
		Sort: values.Get("sort"),
		Q:    values.Get("q"),
	}

	var err error
	if q.Page, err = intParam(values.Get("page")); err != nil {
		return q, errors.BadRequest("page must be a number")
	}
	if q.PerPage, err = intParam(values.Get("per_page")); err != nil {
		return q, errors.BadRequest("per_page must be a number")
	}
	return q, nil
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
