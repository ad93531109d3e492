package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/weave"
	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/internal/presentation/graph"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/nodes"
	"github.com/aretw0/weave/pkg/ports"
	"github.com/aretw0/weave/pkg/schema"
	"github.com/aretw0/weave/pkg/session"
)

// Engine defines what the API needs from the Weave engine.
// *weave.Engine implements it.
type Engine interface {
	Classes() []string
	Class(name string) (ports.NodeClass, error)
	ResolveNode(class string, observed schema.Observation, entangled ...schema.Observation) (schema.Schema, error)
	Resolve(p *domain.Prompt) (weave.Schemas, error)
	Validate(p *domain.Prompt) error
	Run(ctx context.Context, p *domain.Prompt) (*domain.RunReport, error)
	Watch(ctx context.Context) (<-chan string, error)
}

// Server holds the API's dependencies.
type Server struct {
	Engine   Engine
	Sessions *session.Manager
	Streams  *StreamManager
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithSessions enables the /prompts endpoints over a session manager.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.Sessions = m
	}
}

// WithStreams shares a StreamManager whose hooks feed the engine.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithGatherer exposes the gatherer's metrics on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{Engine: engine}
	for _, opt := range opts {
		opt(server)
	}
	if server.logger == nil {
		server.logger = logging.NewNop()
	}
	if server.Streams == nil {
		server.Streams = NewStreamManager(server.logger)
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/classes", server.ListClasses)
	r.Get("/classes/{name}", server.GetClass)
	r.Post("/resolve", server.ResolveNode)
	r.Post("/prompt/resolve", server.ResolvePrompt)
	r.Post("/validate", server.Validate)
	r.Post("/run", server.Run)
	r.Get("/events", server.SubscribeReload)

	if server.Sessions != nil {
		r.Route("/prompts", func(r chi.Router) {
			r.Get("/", server.ListPrompts)
			r.Put("/{id}", server.SavePrompt)
			r.Get("/{id}", server.GetPrompt)
			r.Delete("/{id}", server.DeletePrompt)
			r.Post("/{id}/run", server.RunStored)
			r.Get("/{id}/graph", server.GetGraph)
			r.Get("/{id}/events", server.SubscribeRun)
		})
	}

	if server.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "weave-http",
		"version": strings.TrimSpace(weave.Version),
	})
}

// ListClasses handles the GET /classes request.
func (s *Server) ListClasses(w http.ResponseWriter, r *http.Request) {
	names := s.Engine.Classes()
	out := make([]ClassInfo, 0, len(names))
	for _, name := range names {
		c, err := s.Engine.Class(name)
		if err != nil {
			continue
		}
		out = append(out, ClassInfo{Name: name, Schema: c.DeclaredSchema()})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GetClass handles the GET /classes/{name} request.
func (s *Server) GetClass(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	c, err := s.Engine.Class(name)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ClassInfo{Name: name, Schema: c.DeclaredSchema()})
}

// ResolveNode handles the POST /resolve request.
func (s *Server) ResolveNode(w http.ResponseWriter, r *http.Request) {
	var body ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("ResolveNode: Invalid request body", "err", err)
		return
	}

	observed, entangled := body.Observation()
	resolved, err := s.Engine.ResolveNode(body.Class, observed, entangled...)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resolved)
}

// ResolvePrompt handles the POST /prompt/resolve request.
func (s *Server) ResolvePrompt(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodePrompt(w, r)
	if !ok {
		return
	}
	schemas, err := s.Engine.Resolve(p)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, schemas)
}

// Validate handles the POST /validate request. Rejected prompts answer 422
// with one message per failure.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodePrompt(w, r)
	if !ok {
		return
	}
	resp, status := verdict(s.Engine.Validate(p))
	s.writeJSON(w, status, resp)
}

func verdict(err error) (ValidateResponse, int) {
	if err == nil {
		return ValidateResponse{Valid: true}, http.StatusOK
	}
	failures := schema.ValidationErrors(err)
	if len(failures) == 0 {
		failures = []error{err}
	}
	resp := ValidateResponse{Errors: make([]string, 0, len(failures))}
	for _, f := range failures {
		resp.Errors = append(resp.Errors, f.Error())
	}
	return resp, http.StatusUnprocessableEntity
}

// Run handles the POST /run request.
func (s *Server) Run(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodePrompt(w, r)
	if !ok {
		return
	}
	s.run(r.Context(), w, p)
}

func (s *Server) run(ctx context.Context, w http.ResponseWriter, p *domain.Prompt) {
	report, err := s.Engine.Run(ctx, p)
	if err != nil {
		s.logger.Error("Run failed", "prompt_id", p.ID, "err", err)
		s.writeJSON(w, statusOf(err), RunResponse{Report: report, Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, RunResponse{Report: report})
}

// ListPrompts handles the GET /prompts request.
func (s *Server) ListPrompts(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// SavePrompt handles the PUT /prompts/{id} request. The path id wins over
// any id in the body.
func (s *Server) SavePrompt(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodePrompt(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	p.ID = id
	if err := s.Sessions.Save(r.Context(), id, p); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPrompt handles the GET /prompts/{id} request.
func (s *Server) GetPrompt(w http.ResponseWriter, r *http.Request) {
	p, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

// DeletePrompt handles the DELETE /prompts/{id} request.
func (s *Server) DeletePrompt(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunStored handles the POST /prompts/{id}/run request. The prompt stays
// locked for the whole run so replicas never run it twice at once.
func (s *Server) RunStored(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.Sessions.WithLock(r.Context(), id, func(ctx context.Context) error {
		p, err := s.Sessions.Store().Load(ctx, id)
		if err != nil {
			return err
		}
		s.run(ctx, w, p)
		return nil
	})
	if err != nil {
		s.fail(w, err)
	}
}

// GetGraph handles the GET /prompts/{id}/graph request with a Mermaid flowchart.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	p, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(p, nil))
}

// SubscribeRun handles the GET /prompts/{id}/events request (SSE). Every
// lifecycle event of runs of that prompt is sent as one data line.
func (s *Server) SubscribeRun(w http.ResponseWriter, r *http.Request) {
	flusher, ok := s.startStream(w)
	if !ok {
		return
	}

	promptID := chi.URLParam(r, "id")
	s.logger.Info("SSE: Subscribing to run events", "prompt_id", promptID)

	ch, cancel := s.Streams.Subscribe(promptID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// SubscribeReload handles the GET /events request (SSE): one data line per
// node changed in the engine's prompt source.
func (s *Server) SubscribeReload(w http.ResponseWriter, r *http.Request) {
	events, err := s.Engine.Watch(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Watch error: %v", err), http.StatusNotImplemented)
		return
	}
	flusher, ok := s.startStream(w)
	if !ok {
		return
	}
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}
}

func (s *Server) startStream(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SSE: Streaming not supported")
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return flusher, true
}

// -- Helpers --

func (s *Server) decodePrompt(w http.ResponseWriter, r *http.Request) (*domain.Prompt, bool) {
	var p domain.Prompt
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "Invalid prompt body", http.StatusBadRequest)
		s.logger.Warn("Invalid prompt body", "path", r.URL.Path, "err", err)
		return nil, false
	}
	return &p, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "err", err)
	}
	http.Error(w, err.Error(), status)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownClass),
		errors.Is(err, domain.ErrPromptNotFound),
		errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMissingFlowHandle),
		errors.Is(err, domain.ErrStalled),
		errors.Is(err, domain.ErrExpansionLimit),
		errors.Is(err, nodes.ErrInvalidInput),
		errors.Is(err, nodes.ErrDivisionByZero),
		errors.Is(err, nodes.ErrUnknownOperation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	}
	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
