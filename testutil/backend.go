package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// RecordedRequest is one call received by the fake backend
type RecordedRequest struct {
	Method    string
	Path      string
	RequestID string
	Body      map[string]interface{}
}

// Reply is a scripted response for one endpoint
type Reply struct {
	Status int
	Body   string
}

// FakeBackend is an httptest server speaking the matching backend's JSON API
type FakeBackend struct {
	Server *httptest.Server

	mu       sync.Mutex
	replies  map[string]Reply
	requests []RecordedRequest
}

// NewFakeBackend starts a fake backend with healthy defaults. It is closed
// when the test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{
		replies: map[string]Reply{
			"/health":  {Status: http.StatusOK, Body: `{"status":"healthy","service":"AI Mentorship System"}`},
			"/session": {Status: http.StatusOK, Body: `{"message":"Session processed successfully","session_id":"s-1"}`},
			"/match":   {Status: http.StatusOK, Body: `[]`},
			"/graph":   {Status: http.StatusOK, Body: GraphFixture},
		},
	}

	r := chi.NewRouter()
	r.Get("/health", fb.handle)
	r.Post("/session", fb.handle)
	r.Post("/match", fb.handle)
	r.Get("/graph", fb.handle)

	fb.Server = httptest.NewServer(r)
	t.Cleanup(fb.Server.Close)
	return fb
}

// URL returns the server origin
func (fb *FakeBackend) URL() string {
	return fb.Server.URL
}

// SetReply scripts the response for path
func (fb *FakeBackend) SetReply(path string, status int, body string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.replies[path] = Reply{Status: status, Body: body}
}

// Requests returns every request received so far
func (fb *FakeBackend) Requests() []RecordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]RecordedRequest(nil), fb.requests...)
}

// RequestsTo returns the requests received for path
func (fb *FakeBackend) RequestsTo(path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range fb.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (fb *FakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	rec := RecordedRequest{
		Method:    r.Method,
		Path:      r.URL.Path,
		RequestID: r.Header.Get("X-Request-ID"),
	}
	if data, err := io.ReadAll(r.Body); err == nil && len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Body)
	}

	fb.mu.Lock()
	fb.requests = append(fb.requests, rec)
	reply := fb.replies[r.URL.Path]
	fb.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Status)
	_, _ = io.WriteString(w, reply.Body)
}
