// Package calls keeps the list of analyzed calls shown in the console.
package calls

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/diallo/callreview/internal/report"
	"github.com/diallo/callreview/pkg/errors"
	"github.com/diallo/callreview/pkg/httputil"
	"github.com/diallo/callreview/pkg/logger"
)

// Lister returns every analyzed call as a raw report document
type Lister interface {
	ListCalls(ctx context.Context) ([]any, error)
}

// Sort orders
const (
	SortNewest = "created_at_desc"
	SortOldest = "created_at_asc"
)

// PerPageOptions are the accepted page sizes
var PerPageOptions = []int{5, 10, 20}

// Row is one call in the list
type Row struct {
	ID               string           `json:"id"`
	AgentName        string           `json:"agent_name"`
	CounterpartyName string           `json:"counterparty_name"`
	AgentPhone       string           `json:"agent_phone"`
	CreatedAt        *time.Time       `json:"created_at,omitempty"`
	Sentiment        report.Sentiment `json:"sentiment"`
	TotalScore       *float64         `json:"total_score,omitempty"`
	Selected         bool             `json:"selected"`
}

// RowState is the per-row UI state. It is keyed by call id and survives reloads.
type RowState struct {
	Selected bool
}

// Query selects a page of rows
type Query struct {
	Page    int    `validate:"min=1"`
	PerPage int    `validate:"oneof=5 10 20"`
	Sort    string `validate:"omitempty,oneof=created_at_desc created_at_asc"`
	Q       string
}

// Page is one page of rows with its pagination meta
type Page struct {
	Rows []Row
	Meta httputil.Meta
}

// List holds the rows of the last successful refresh and the per-row state
type List struct {
	lister         Lister
	defaultPerPage int
	log            *logger.Logger

	mu       sync.RWMutex
	rows     []Row
	state    map[string]*RowState
	loaded   bool
	loadedAt time.Time
}

// NewList creates an empty list
func NewList(lister Lister, defaultPerPage int, log *logger.Logger) *List {
	if !validPerPage(defaultPerPage) {
		defaultPerPage = PerPageOptions[0]
	}
	return &List{
		lister:         lister,
		defaultPerPage: defaultPerPage,
		log:            log.WithComponent("calls"),
		state:          make(map[string]*RowState),
	}
}

// Refresh reloads the rows from the backend. Documents that cannot be
// normalized or carry no id are skipped. Row state is kept for ids that are
// still listed. On error the previous rows stay in place.
func (l *List) Refresh(ctx context.Context) (int, error) {
	docs, err := l.lister.ListCalls(ctx)
	if err != nil {
		l.log.Warn().Err(err).Msg("failed to load calls")
		return 0, err
	}

	rows := make([]Row, 0, len(docs))
	seen := make(map[string]bool, len(docs))
	for i, doc := range docs {
		c, err := report.Normalize(doc)
		if err != nil {
			l.log.Warn().Err(err).Int("index", i).Msg("skipping unreadable call document")
			continue
		}
		if c.ID == "" {
			l.log.Warn().Int("index", i).Msg("skipping call document without id")
			continue
		}
		if seen[c.ID] {
			l.log.Warn().Str("id", c.ID).Msg("skipping duplicate call document")
			continue
		}
		seen[c.ID] = true
		rows = append(rows, rowFrom(c))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for id := range l.state {
		if !seen[id] {
			delete(l.state, id)
		}
	}
	l.rows = rows
	l.loaded = true
	l.loadedAt = time.Now()

	l.log.Debug().Int("rows", len(rows)).Int("skipped", len(docs)-len(rows)).Msg("calls refreshed")
	return len(rows), nil
}

// Loaded reports whether a refresh has succeeded at least once
func (l *List) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Page filters, sorts and paginates the rows. Zero Page and PerPage take defaults.
func (l *List) Page(q Query) (Page, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = l.defaultPerPage
	}
	q.Q = strings.TrimSpace(q.Q)
	if err := httputil.ValidateRequest(q); err != nil {
		return Page{}, err
	}

	l.mu.RLock()
	matched := make([]Row, 0, len(l.rows))
	for _, row := range l.rows {
		if matches(row, q.Q) {
			row.Selected = l.selectedLocked(row.ID)
			matched = append(matched, row)
		}
	}
	l.mu.RUnlock()

	sortRows(matched, q.Sort)

	total := len(matched)
	totalPages := (total + q.PerPage - 1) / q.PerPage
	start, end := pageBounds(total, q.Page, q.PerPage)

	return Page{
		Rows: matched[start:end],
		Meta: httputil.Meta{
			Page:       q.Page,
			PerPage:    q.PerPage,
			Total:      int64(total),
			TotalPages: totalPages,
		},
	}, nil
}

// SetSelected updates the per-row selection of id
func (l *List) SetSelected(id string, selected bool) (Row, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, row := range l.rows {
		if row.ID != id {
			continue
		}
		st, ok := l.state[id]
		if !ok {
			st = &RowState{}
			l.state[id] = st
		}
		st.Selected = selected
		row.Selected = selected
		return row, nil
	}
	return Row{}, errors.NotFound("call")
}

// State returns the per-row state of id
func (l *List) State(id string) (RowState, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	st, ok := l.state[id]
	if !ok {
		return RowState{}, false
	}
	return *st, true
}

func (l *List) selectedLocked(id string) bool {
	st, ok := l.state[id]
	return ok && st.Selected
}

func rowFrom(c *report.Canonical) Row {
	row := Row{
		ID:               c.ID,
		AgentName:        c.Participants.AgentName,
		CounterpartyName: c.Participants.CounterpartyName,
		AgentPhone:       c.Participants.AgentPhone,
		Sentiment:        c.Sentiment.Overall,
		TotalScore:       c.TotalScore,
	}
	if c.HasTimestamp() {
		ts := c.Timestamp
		row.CreatedAt = &ts
	}
	return row
}

func matches(row Row, q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	for _, field := range []string{row.AgentName, row.CounterpartyName, row.AgentPhone} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// sortRows orders by creation time. Rows without a timestamp go last; an
// empty order keeps the backend's order.
func sortRows(rows []Row, order string) {
	if order == "" {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].CreatedAt, rows[j].CreatedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		case order == SortOldest:
			return a.Before(*b)
		default:
			return a.After(*b)
		}
	})
}

// pageBounds returns the slice bounds of page within total rows. Pages past
// the end are empty.
func pageBounds(total, page, perPage int) (int, int) {
	if page-1 > total/perPage {
		return total, total
	}
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return start, end
}

func validPerPage(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}
