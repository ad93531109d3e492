package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/weave"
	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
	"github.com/aretw0/weave/pkg/promptfile"
	"github.com/aretw0/weave/pkg/schema"
	"github.com/aretw0/weave/pkg/session"
)

// Engine defines what the MCP server needs from the Weave engine.
// *weave.Engine implements it.
type Engine interface {
	Classes() []string
	Class(name string) (ports.NodeClass, error)
	ResolveNode(class string, observed schema.Observation, entangled ...schema.Observation) (schema.Schema, error)
	Validate(p *domain.Prompt) error
	Run(ctx context.Context, p *domain.Prompt) (*domain.RunReport, error)
}

// PromptArgs selects the prompt a tool works on: an inline document or the
// id of a stored prompt.
type PromptArgs struct {
	Prompt   string `json:"prompt,omitempty"`
	PromptID string `json:"prompt_id,omitempty"`
}

// ResolveArgs are the arguments of resolve_node.
type ResolveArgs struct {
	Class     string `json:"class"`
	Inputs    string `json:"inputs,omitempty"`
	Outputs   string `json:"outputs,omitempty"`
	Entangled string `json:"entangled,omitempty"`
}

// ValidateResult is the structured output of validate_prompt.
type ValidateResult struct {
	Valid  bool     `json:"valid" jsonschema_description:"True when every node's wiring fits its schema"`
	Errors []string `json:"errors,omitempty" jsonschema_description:"One message per rejected socket"`
}

// RunResult is the structured output of run_prompt.
type RunResult struct {
	RunID      string           `json:"run_id"`
	Status     string           `json:"status" jsonschema_description:"completed, stalled or aborted"`
	Expansions int              `json:"expansions" jsonschema_description:"Subgraphs spliced by loop close nodes"`
	Executions map[string]int   `json:"executions" jsonschema_description:"Runs per display id"`
	Outputs    map[string][]any `json:"outputs" jsonschema_description:"Resolved output values per node id"`
	Error      string           `json:"error,omitempty"`
}

// Server wraps the Weave Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithSessions lets tools address stored prompts by id.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("weave-mcp", strings.TrimSpace(weave.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx ends.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Baggage, Sentry-Trace")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_classes
	s.mcpServer.AddTool(mcp.NewTool("list_classes",
		mcp.WithDescription("List every registered node class with its declared schema."),
	), s.handleListClasses)

	// TOOL: resolve_node
	s.mcpServer.AddTool(mcp.NewTool("resolve_node",
		mcp.WithDescription("Resolve the schema of one node class against the socket types observed on its wiring."),
		mcp.WithString("class", mcp.Required(), mcp.Description("Node class name, e.g. MakeList")),
		mcp.WithString("inputs", mcp.Description(`JSON object of input name to observed type, e.g. {"value1":"INT"}`)),
		mcp.WithString("outputs", mcp.Description(`JSON object of output name to the types its consumers accept, e.g. {"list":["LIST<INT>"]}`)),
		mcp.WithString("entangled", mcp.Description("JSON array of partner observations, each with inputs and outputs")),
	), mcp.NewTypedToolHandler(s.handleResolveNode))

	promptOpts := []mcp.ToolOption{
		mcp.WithString("prompt", mcp.Description("Prompt document in YAML or JSON, with a nodes list")),
		mcp.WithString("prompt_id", mcp.Description("ID of a stored prompt, used when prompt is empty")),
	}

	// TOOL: validate_prompt
	s.mcpServer.AddTool(mcp.NewTool("validate_prompt", append([]mcp.ToolOption{
		mcp.WithDescription("Check every node's wiring against its declared schema."),
		mcp.WithOutputSchema[ValidateResult](),
	}, promptOpts...)...), mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: run_prompt
	s.mcpServer.AddTool(mcp.NewTool("run_prompt", append([]mcp.ToolOption{
		mcp.WithDescription("Run a prompt to completion, expanding loops as they iterate."),
		mcp.WithOutputSchema[RunResult](),
	}, promptOpts...)...), mcp.NewStructuredToolHandler(s.handleRun))
}

func (s *Server) handleListClasses(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(s.classes())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

type classInfo struct {
	Name   string        `json:"name"`
	Schema schema.Schema `json:"schema"`
}

func (s *Server) classes() []classInfo {
	names := s.engine.Classes()
	out := make([]classInfo, 0, len(names))
	for _, name := range names {
		if c, err := s.engine.Class(name); err == nil {
			out = append(out, classInfo{Name: name, Schema: c.DeclaredSchema()})
		}
	}
	return out
}

type observationArgs struct {
	Inputs  map[string]string   `json:"inputs"`
	Outputs map[string][]string `json:"outputs"`
}

func (s *Server) handleResolveNode(ctx context.Context, request mcp.CallToolRequest, args ResolveArgs) (*mcp.CallToolResult, error) {
	var obs observationArgs
	if args.Inputs != "" {
		if err := json.Unmarshal([]byte(args.Inputs), &obs.Inputs); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid inputs: %v", err)), nil
		}
	}
	if args.Outputs != "" {
		if err := json.Unmarshal([]byte(args.Outputs), &obs.Outputs); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid outputs: %v", err)), nil
		}
	}
	var partners []observationArgs
	if args.Entangled != "" {
		if err := json.Unmarshal([]byte(args.Entangled), &partners); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid entangled: %v", err)), nil
		}
	}

	entangled := make([]schema.Observation, 0, len(partners))
	for _, p := range partners {
		entangled = append(entangled, schema.ObservationFromStrings(p.Inputs, p.Outputs))
	}

	resolved, err := s.engine.ResolveNode(args.Class, schema.ObservationFromStrings(obs.Inputs, obs.Outputs), entangled...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	jsonBytes, err := json.Marshal(resolved)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args PromptArgs) (ValidateResult, error) {
	p, err := s.prompt(ctx, args)
	if err != nil {
		return ValidateResult{}, err
	}

	err = s.engine.Validate(p)
	if err == nil {
		return ValidateResult{Valid: true}, nil
	}
	failures := schema.ValidationErrors(err)
	if len(failures) == 0 {
		failures = []error{err}
	}
	res := ValidateResult{Errors: make([]string, 0, len(failures))}
	for _, f := range failures {
		res.Errors = append(res.Errors, f.Error())
	}
	return res, nil
}

func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest, args PromptArgs) (RunResult, error) {
	p, err := s.prompt(ctx, args)
	if err != nil {
		return RunResult{}, err
	}

	report, err := s.engine.Run(ctx, p)
	if report == nil {
		return RunResult{}, fmt.Errorf("run failed: %w", err)
	}
	res := RunResult{
		RunID:      report.RunID,
		Status:     string(report.Status),
		Expansions: report.Expansions,
		Executions: report.Executions,
		Outputs:    report.Outputs,
	}
	if err != nil {
		s.logger.Error("MCP Run failed", "prompt_id", p.ID, "err", err)
		res.Error = err.Error()
	}
	return res, nil
}

// prompt decodes the inline document, or loads the stored prompt. YAML is
// a superset of JSON so one decoder serves both.
func (s *Server) prompt(ctx context.Context, args PromptArgs) (*domain.Prompt, error) {
	if strings.TrimSpace(args.Prompt) != "" {
		p, err := promptfile.Decode([]byte(args.Prompt), promptfile.FormatYAML)
		if err != nil {
			return nil, err
		}
		if p.ID == "" {
			p.ID = "mcp"
		}
		return p, nil
	}
	if args.PromptID == "" {
		return nil, errors.New("either prompt or prompt_id is required")
	}
	if s.sessions == nil {
		return nil, errors.New("no prompt store configured")
	}
	return s.sessions.Load(ctx, args.PromptID)
}

func (s *Server) registerResources() {
	// EXPOSE: weave://classes
	s.mcpServer.AddResource(mcp.NewResource("weave://classes", "Node Class Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.classes())
		if err != nil {
			return nil, fmt.Errorf("failed to encode classes: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "weave://classes",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
