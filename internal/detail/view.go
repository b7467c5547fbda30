// Package detail loads one call report for display: fetch, normalize, render.
package detail

import (
	"context"
	"sync"
	"time"

	"github.com/diallo/callreview/internal/render"
	"github.com/diallo/callreview/internal/report"
	"github.com/diallo/callreview/pkg/i18n"
	"github.com/diallo/callreview/pkg/logger"
)

// State of a report view
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateNoData  State = "no_data"
)

// Fetcher returns the raw report document for an identifier
type Fetcher interface {
	GetDocument(ctx context.Context, docID string) (any, error)
}

// Snapshot is what a report view currently displays
type Snapshot struct {
	ID    string             `json:"id"`
	State State              `json:"state"`
	View  *render.ReportView `json:"view,omitempty"`
	// Seq is the sequence number of the fetch that produced this snapshot
	Seq       uint64     `json:"seq"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type slot struct {
	issued   uint64
	snapshot Snapshot
}

// Service holds one view per report identifier. Overlapping loads of the same
// identifier are allowed; only the most recently issued one may update the view.
type Service struct {
	fetcher  Fetcher
	renderer *render.Renderer
	log      *logger.Logger

	mu    sync.Mutex
	slots map[string]*slot
}

// NewService creates a detail service
func NewService(fetcher Fetcher, renderer *render.Renderer, log *logger.Logger) *Service {
	return &Service{
		fetcher:  fetcher,
		renderer: renderer,
		log:      log.WithComponent("detail"),
		slots:    make(map[string]*slot),
	}
}

// Load fetches, normalizes and renders the report id. On failure the view
// moves to no_data and the error is returned; nothing partial is displayed.
// A load overtaken by a newer one returns the newer state without applying its own.
func (s *Service) Load(ctx context.Context, id string) (Snapshot, error) {
	seq := s.begin(id)
	log := s.log.WithDocumentID(id)

	view, err := s.build(ctx, id)
	if err != nil {
		log.Warn().Err(err).Uint64("seq", seq).Msg("report load failed")
	}

	snapshot, applied := s.complete(id, seq, view)
	if !applied {
		log.Debug().Uint64("seq", seq).Uint64("current", snapshot.Seq).Msg("discarded superseded report load")
		return snapshot, nil
	}
	return snapshot, err
}

// Get returns the current view of id without fetching
func (s *Service) Get(id string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[id]
	if !ok {
		return Snapshot{}, false
	}
	return sl.snapshot, true
}

// Forget drops the view of id
func (s *Service) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, id)
}

func (s *Service) build(ctx context.Context, id string) (*render.ReportView, error) {
	raw, err := s.fetcher.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	canonical, err := report.Normalize(raw)
	if err != nil {
		return nil, err
	}

	view := s.renderer.Localized(i18n.LocalizerFromContext(ctx)).Render(canonical)
	return &view, nil
}

func (s *Service) begin(id string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[id]
	if !ok {
		sl = &slot{snapshot: Snapshot{ID: id, State: StateLoading}}
		s.slots[id] = sl
	}
	sl.issued++
	if sl.snapshot.State != StateReady {
		sl.snapshot.State = StateLoading
	}
	return sl.issued
}

func (s *Service) complete(id string, seq uint64, view *render.ReportView) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[id]
	if !ok || seq != sl.issued {
		if !ok {
			return Snapshot{ID: id, State: StateLoading}, false
		}
		return sl.snapshot, false
	}

	now := time.Now()
	sl.snapshot = Snapshot{ID: id, State: StateReady, View: view, Seq: seq, UpdatedAt: &now}
	if view == nil {
		sl.snapshot.State = StateNoData
	}
	return sl.snapshot, true
}
