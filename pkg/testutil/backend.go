package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// RecordedRequest is what FakeBackend saw for one call
type RecordedRequest struct {
	Method    string
	Path      string
	Query     url.Values
	Header    http.Header
	Form      map[string]string
	FileField string
	FileName  string
	FileType  string
	FileData  []byte
}

// Reply is a canned backend answer
type Reply struct {
	Status int
	Body   string
}

// FakeBackend is an httptest server standing in for the analysis backend.
// Routes answer with canned replies; every request is recorded.
type FakeBackend struct {
	Server *httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
	replies  map[string][]Reply
	hooks    map[string]func()
}

// NewFakeBackend starts a fake backend that is closed when the test ends
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	f := &FakeBackend{
		replies: make(map[string][]Reply),
		hooks:   make(map[string]func()),
	}

	r := chi.NewRouter()
	r.Get("/calls", f.serve)
	r.Get("/agents", f.serve)
	r.Post("/transcribe", f.serve)
	r.Get("/docs", f.serve)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake backend
func (f *FakeBackend) URL() string {
	return f.Server.URL
}

// On queues replies for method+path. The last reply repeats once the queue is drained.
func (f *FakeBackend) On(method, path string, replies ...Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[method+" "+path] = append(f.replies[method+" "+path], replies...)
}

// Before registers a hook run before method+path replies, e.g. to block a request
func (f *FakeBackend) Before(method, path string, hook func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks[method+" "+path] = hook
}

// Requests returns a copy of the recorded requests
func (f *FakeBackend) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// Count returns how many requests hit method+path
func (f *FakeBackend) Count(method, path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (f *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	rec := RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Form:   map[string]string{},
	}

	if r.Method == http.MethodPost {
		if err := r.ParseMultipartForm(32 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				if len(v) > 0 {
					rec.Form[k] = v[0]
				}
			}
			for field, headers := range r.MultipartForm.File {
				if len(headers) == 0 {
					continue
				}
				rec.FileField = field
				rec.FileName = headers[0].Filename
				rec.FileType = headers[0].Header.Get("Content-Type")
				if file, err := headers[0].Open(); err == nil {
					rec.FileData, _ = io.ReadAll(file)
					file.Close()
				}
			}
		}
	}

	key := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	hook := f.hooks[key]
	reply := Reply{Status: http.StatusNotFound}
	if queue := f.replies[key]; len(queue) > 0 {
		reply = queue[0]
		if len(queue) > 1 {
			f.replies[key] = queue[1:]
		}
	}
	f.mu.Unlock()

	if hook != nil {
		hook()
	}

	if reply.Body != "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(reply.Status)
	io.WriteString(w, reply.Body)
}

// OK builds a 200 reply carrying {"success": true, field: value}
func OK(field string, value any) Reply {
	return Reply{Status: http.StatusOK, Body: MustJSON(map[string]any{"success": true, field: value})}
}

// Refused builds a 200 reply carrying {"success": false, "response": message}
func Refused(message string) Reply {
	return Reply{Status: http.StatusOK, Body: MustJSON(map[string]any{"success": false, "response": message})}
}

// Raw builds a reply with a literal body
func Raw(status int, body string) Reply {
	return Reply{Status: status, Body: body}
}

// RawDocument decodes a fixture into the untyped shape the backend client returns
func RawDocument(fixture string) any {
	var v any
	if err := json.Unmarshal([]byte(fixture), &v); err != nil {
		panic(err)
	}
	return v
}
