package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/leafspan/pkg/observability"
	"github.com/matzehuels/leafspan/pkg/pipeline"
)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, nil, logger)
	return New(runner, append([]Option{WithLogger(logger)}, opts...)...)
}

func do(t *testing.T, srv http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

const star = "5\n0 1\n0 2\n0 3\n0 4\n"

func TestServerHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["status"] != "ok" {
		t.Errorf("expected status %q, got %q", "ok", body["status"])
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a request ID header")
	}
}

func TestServerRequestIDEcho(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	newTestServer(t).ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request ID = %q, want abc-123", got)
	}
}

func TestServerSolve(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/solve", star)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode[solveResponse](t, rec)
	if body.Leaves != 4 || body.Root != 0 {
		t.Errorf("got root %d with %d leaves, want root 0 with 4", body.Root, body.Leaves)
	}
	if body.Vertices != 5 || body.Edges != 4 {
		t.Errorf("got %d vertices, %d edges", body.Vertices, body.Edges)
	}
	if len(body.Parent) != 5 || body.Strategy != "exhaustive" {
		t.Errorf("unexpected body %+v", body)
	}
	if body.GraphHash == "" || body.RequestID == "" {
		t.Error("missing graph hash or request ID")
	}
}

func TestServerSolveRandomized(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/solve?strategy=randomized&iterations=50&seed=3", star)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode[solveResponse](t, rec)
	if body.Strategy != "randomized" || body.Seed != 3 || body.Candidates != 50 {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestServerSolveDOT(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/solve?format=dot&title=star", star)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `label="star"`) {
		t.Errorf("expected title in DOT output:\n%s", rec.Body.String())
	}
}

func TestServerSolveErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   string
	}{
		{"malformed graph", "/v1/solve", "3\n0 x\n", http.StatusBadRequest, "INVALID_FORMAT"},
		{"disconnected", "/v1/solve", "4\n0 1\n2 3\n", http.StatusUnprocessableEntity, "PRECONDITION_VIOLATION"},
		{"unknown strategy", "/v1/solve?strategy=magic", star, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"bad iterations", "/v1/solve?iterations=many", star, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"unknown format", "/v1/solve?format=gif", star, http.StatusBadRequest, "UNSUPPORTED"},
	}
	srv := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			body := decode[errorResponse](t, rec)
			if body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
			if body.Error == "" || body.RequestID == "" {
				t.Errorf("incomplete error body %+v", body)
			}
		})
	}
}

func TestServerLimits(t *testing.T) {
	srv := newTestServer(t, WithMaxVertices(3), WithMaxBodyBytes(64))

	if rec := do(t, srv, http.MethodPost, "/v1/solve", star); rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("too many vertices: expected 413, got %d", rec.Code)
	}

	big := "3\n" + strings.Repeat("0 1\n", 40)
	if rec := do(t, srv, http.MethodPost, "/v1/solve", big); rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized body: expected 413, got %d", rec.Code)
	}

	if rec := do(t, srv, http.MethodGet, "/v1/generate?n=10", ""); rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("generate over limit: expected 413, got %d", rec.Code)
	}
}

func TestServerLeaves(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/v1/leaves", `{"parent": [-1, 0, 0, 2]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decode[leavesResponse](t, rec); body.Leaves != 2 || body.Vertices != 4 {
		t.Errorf("unexpected body %+v", body)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/leaves", strings.NewReader("0: -1\n1: 0\n"))
	req.Header.Set("Content-Type", "text/plain")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if body := decode[leavesResponse](t, rec); body.Leaves != 1 {
		t.Errorf("text body: leaves = %d, want 1", body.Leaves)
	}

	malformed := []struct {
		name string
		body string
		code string
	}{
		{"parent out of range", `{"parent": [-1, 7]}`, "INVALID_FORMAT"},
		{"two roots", `{"parent": [-1, -1, 0]}`, "INVALID_ARGUMENT"},
		{"no root", `{"parent": [1, 0, 0]}`, "INVALID_ARGUMENT"},
		{"cycle cut off from root", `{"parent": [-1, 2, 1]}`, "INVALID_ARGUMENT"},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/v1/leaves", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if body := decode[errorResponse](t, rec); body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
		})
	}
}

func TestServerGenerate(t *testing.T) {
	srv := newTestServer(t)

	a := do(t, srv, http.MethodGet, "/v1/generate?n=12&p=0.3&seed=5", "")
	if a.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", a.Code, a.Body.String())
	}
	if !strings.HasPrefix(a.Body.String(), "12\n") {
		t.Errorf("body should start with the vertex count:\n%s", a.Body.String())
	}
	b := do(t, srv, http.MethodGet, "/v1/generate?n=12&p=0.3&seed=5", "")
	if a.Body.String() != b.Body.String() {
		t.Error("same seed should generate the same graph")
	}
	if a.Header().Get("X-Graph-Hash") == "" {
		t.Error("missing X-Graph-Hash")
	}

	// The generated graph is connected, so it can be solved directly.
	if rec := do(t, srv, http.MethodPost, "/v1/solve", a.Body.String()); rec.Code != http.StatusOK {
		t.Errorf("solving generated graph: got %d", rec.Code)
	}

	for _, target := range []string{"/v1/generate", "/v1/generate?n=5&p=2", "/v1/generate?n=5&seed=-1"} {
		if rec := do(t, srv, http.MethodGet, target, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

type recordingHTTPHooks struct {
	mu        sync.Mutex
	requests  int
	responses []int
	errors    int
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests++
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, status)
}

func (h *recordingHTTPHooks) OnError(context.Context, string, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors++
}

func TestServerHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	srv := newTestServer(t)
	do(t, srv, http.MethodGet, "/healthz", "")
	do(t, srv, http.MethodPost, "/v1/solve", "oops")

	if hooks.requests != 2 || len(hooks.responses) != 2 {
		t.Fatalf("requests=%d responses=%v, want 2 each", hooks.requests, hooks.responses)
	}
	if hooks.responses[0] != http.StatusOK || hooks.responses[1] != http.StatusBadRequest {
		t.Errorf("responses = %v, want [200 400]", hooks.responses)
	}
	if hooks.errors != 1 {
		t.Errorf("errors = %d, want 1", hooks.errors)
	}
}

func TestServerListenAndServeShutdown(t *testing.T) {
	srv := newTestServer(t, WithAddr("127.0.0.1:0"))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe returned %v after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
