package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/leafspan/pkg/buildinfo"
	"github.com/matzehuels/leafspan/pkg/errors"
	"github.com/matzehuels/leafspan/pkg/graph"
	graphio "github.com/matzehuels/leafspan/pkg/io"
	"github.com/matzehuels/leafspan/pkg/observability"
	"github.com/matzehuels/leafspan/pkg/pipeline"
	"github.com/matzehuels/leafspan/pkg/render"
	"github.com/matzehuels/leafspan/pkg/solver"
)

const formatJSON = "json"

var contentTypes = map[render.Format]string{
	render.FormatDOT: "text/vnd.graphviz; charset=utf-8",
	render.FormatSVG: "image/svg+xml",
	render.FormatPNG: "image/png",
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type solveResponse struct {
	RequestID  string      `json:"request_id"`
	GraphHash  string      `json:"graph_hash"`
	Vertices   int         `json:"vertices"`
	Edges      int         `json:"edges"`
	Parent     solver.Tree `json:"parent"`
	Root       int         `json:"root"`
	Leaves     int         `json:"leaves"`
	Strategy   string      `json:"strategy"`
	Candidates int         `json:"candidates"`
	Seed       uint64      `json:"seed,omitempty"`
	Cached     bool        `json:"cached"`
}

type leavesResponse struct {
	Vertices int `json:"vertices"`
	Leaves   int `json:"leaves"`
}

type solveOutcome struct {
	res    *solver.Result
	cached bool
}

// handleHealth returns a JSON health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleSolve reads a graph in canonical text form and returns its spanning
// tree as JSON or as a rendered diagram.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts, err := s.solveOptions(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = formatJSON
	}
	var renderFormat render.Format
	if format != formatJSON {
		if renderFormat, err = render.ParseFormat(format); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	g, err := s.readGraph(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	hash := pipeline.GraphHash(g)
	out, err := s.solve(r.Context(), g, hash, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if format != formatJSON {
		opts.Formats = []string{string(renderFormat)}
		opts.HideNonTree = q.Get("hide_non_tree") == "true"
		opts.Title = q.Get("title")
		artifacts, err := s.runner.Render(r.Context(), g, out.res.Tree, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", contentTypes[renderFormat])
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(artifacts[string(renderFormat)])
		return
	}

	writeJSON(w, http.StatusOK, solveResponse{
		RequestID:  requestIDFrom(r.Context()),
		GraphHash:  hash,
		Vertices:   g.VertexCount(),
		Edges:      g.EdgeCount(),
		Parent:     out.res.Tree,
		Root:       out.res.Root,
		Leaves:     out.res.Leaves,
		Strategy:   string(out.res.Strategy),
		Candidates: out.res.Candidates,
		Seed:       out.res.Seed,
		Cached:     out.cached,
	})
}

// solve collapses identical concurrent deterministic solves into one call.
func (s *Server) solve(ctx context.Context, g *graph.Graph, hash string, opts pipeline.Options) (solveOutcome, error) {
	if !opts.Cacheable() {
		res, cached, err := s.runner.SolveWithCacheInfo(ctx, g, opts)
		return solveOutcome{res: res, cached: cached}, err
	}

	key := s.runner.Keyer.TreeKey(hash, opts.TreeKeyOpts())
	if opts.Refresh {
		key = "refresh:" + key
	}
	v, err, _ := s.solves.Do(key, func() (any, error) {
		res, cached, err := s.runner.SolveWithCacheInfo(ctx, g, opts)
		return solveOutcome{res: res, cached: cached}, err
	})
	if err != nil {
		return solveOutcome{}, err
	}
	return v.(solveOutcome), nil
}

// handleLeaves counts the leaves of a tree sent as JSON ({"parent": [...]})
// or, with a text/plain body, in "i: parent" lines.
func (s *Server) handleLeaves(w http.ResponseWriter, r *http.Request) {
	body := s.limitBody(w, r)

	var (
		t   solver.Tree
		err error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/plain") {
		t, err = graphio.ReadTree(body)
	} else {
		t, err = graphio.ReadTreeJSON(body)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.maxVertices > 0 && len(t) > s.maxVertices {
		s.writeError(w, r, errTooLarge(len(t), s.maxVertices))
		return
	}
	if err := solver.ValidateShape(t); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, leavesResponse{
		Vertices: len(t),
		Leaves:   solver.CountLeaves(t),
	})
}

// handleGenerate returns a connected random graph in canonical text form.
// Query parameters: n (vertices), p (edge probability), seed (optional).
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, err := intParam(q, "n", -1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if n < 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidArgument, "query parameter n is required"))
		return
	}
	if s.maxVertices > 0 && n > s.maxVertices {
		s.writeError(w, r, errTooLarge(n, s.maxVertices))
		return
	}
	p := 0.5
	if raw := q.Get("p"); raw != "" {
		if p, err = strconv.ParseFloat(raw, 64); err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidArgument, "p %q is not a number", raw))
			return
		}
	}

	var opts []graph.RandomOption
	if raw := q.Get("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidArgument, "seed %q is not an unsigned integer", raw))
			return
		}
		opts = append(opts, graph.WithSeed(seed))
	}

	g, err := graph.GenerateRandom(n, p, opts...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := graphio.WriteGraph(g, &buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Graph-Hash", pipeline.GraphHash(g))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// solveOptions overlays query parameters on the server defaults.
func (s *Server) solveOptions(q url.Values) (pipeline.Options, error) {
	opts := s.defaults
	opts.Formats = nil

	if v := q.Get("strategy"); v != "" {
		opts.Strategy = v
	}
	var err error
	if opts.Iterations, err = intParam(q, "iterations", opts.Iterations); err != nil {
		return opts, err
	}
	if opts.Workers, err = intParam(q, "workers", opts.Workers); err != nil {
		return opts, err
	}
	if raw := q.Get("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidArgument, "seed %q is not an unsigned integer", raw)
		}
		opts.FixedSeed, opts.Seed = true, seed
	}
	opts.Refresh = q.Get("refresh") == "true"

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (s *Server) readGraph(w http.ResponseWriter, r *http.Request) (*graph.Graph, error) {
	g, err := s.runner.LoadReader(r.Context(), "request", s.limitBody(w, r))
	if err != nil {
		return nil, err
	}
	if s.maxVertices > 0 && g.VertexCount() > s.maxVertices {
		return nil, errTooLarge(g.VertexCount(), s.maxVertices)
	}
	return g, nil
}

func (s *Server) limitBody(w http.ResponseWriter, r *http.Request) io.Reader {
	if s.maxBodyBytes > 0 {
		return http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	}
	return r.Body
}

var errRequestTooLarge = stderrors.New("request too large")

func errTooLarge(got, limit int) error {
	return fmt.Errorf("%w: %d vertices exceeds the limit of %d", errRequestTooLarge, got, limit)
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case stderrors.As(err, &maxErr), stderrors.Is(err, errRequestTooLarge), stderrors.Is(err, bufio.ErrTooLong):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errors.ErrCodePrecondition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errors.ErrCodeUnsupported),
		errors.Is(err, errors.ErrCodeInvalidFormat),
		errors.Is(err, errors.ErrCodeInvalidArgument),
		errors.Is(err, errors.ErrCodeOutOfRange):
		return http.StatusBadRequest
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case stderrors.Is(err, context.Canceled):
		return 499 // client closed request
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err, "request_id", requestIDFrom(r.Context()))
	}

	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Code:      string(errors.GetCode(err)),
		RequestID: requestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidArgument, "%s %q is not an integer", name, raw)
	}
	return v, nil
}
