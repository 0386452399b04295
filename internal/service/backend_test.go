package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/session"
)

// fakeBackend records every request it serves and answers from the registered routes.
type fakeBackend struct {
	t   *testing.T
	mux *http.ServeMux

	mu    sync.Mutex
	calls []recordedCall
}

type recordedCall struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
	Body          map[string]any
	FormFields    map[string]string
	FileName      string
	FileSize      int
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	return &fakeBackend{t: t, mux: http.NewServeMux()}
}

// handle registers pattern (a ServeMux pattern without the /api prefix) answering with status and payload.
func (b *fakeBackend) handle(pattern string, status int, payload any) {
	b.handleFunc(pattern, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, payload)
	})
}

func (b *fakeBackend) handleFunc(pattern string, fn http.HandlerFunc) {
	full := "/api" + pattern
	if method, path, ok := strings.Cut(pattern, " "); ok {
		full = method + " /api" + path
	}
	b.mux.HandleFunc(full, func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		fn(w, r)
	})
}

func (b *fakeBackend) record(r *http.Request) {
	call := recordedCall{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
	}

	if strings.HasPrefix(call.ContentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(64 << 20); err != nil {
			b.t.Errorf("parse multipart: %v", err)
			return
		}
		call.FormFields = map[string]string{}
		for key, values := range r.MultipartForm.Value {
			call.FormFields[key] = values[0]
		}
		if files := r.MultipartForm.File["file"]; len(files) > 0 {
			call.FileName = files[0].Filename
			call.FileSize = int(files[0].Size)
		}
	} else if r.Body != nil && r.ContentLength != 0 {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			call.Body = body
		}
	}

	b.mu.Lock()
	b.calls = append(b.calls, call)
	b.mu.Unlock()
}

func (b *fakeBackend) recorded() []recordedCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedCall(nil), b.calls...)
}

func (b *fakeBackend) last() recordedCall {
	calls := b.recorded()
	require.NotEmpty(b.t, calls)
	return calls[len(calls)-1]
}

// client starts the server and returns a client on a fresh in-memory session.
func (b *fakeBackend) client() *api.Client {
	b.t.Helper()
	server := httptest.NewServer(b.mux)
	b.t.Cleanup(server.Close)

	client, err := api.NewClient(api.Options{
		BaseURL: server.URL + "/api",
		Session: session.New(session.NewMemoryStore(), time.Hour),
		Logger:  zerolog.Nop(),
	})
	require.NoError(b.t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func envelope(data any) map[string]any {
	return map[string]any{"success": true, "data": data}
}

func failure(message string) map[string]any {
	return map[string]any{"success": false, "message": message}
}
