// Package mcp exposes log checking to MCP clients (editors, agents) over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/vigil"
	"github.com/aretw0/vigil/internal/presentation/graph"
	"github.com/aretw0/vigil/pkg/adapters/file"
	"github.com/aretw0/vigil/pkg/adapters/memory"
	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/logsource"
	"github.com/aretw0/vigil/pkg/ports"
	"github.com/aretw0/vigil/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// VerdictsURI is the resource listing stored verdicts.
const VerdictsURI = "vigil://verdicts"

// CheckArgs are the arguments of the check_log tool.
type CheckArgs struct {
	Name       string            `json:"name,omitempty"`
	Definition string            `json:"definition"`
	Log        string            `json:"log"`
	Params     map[string]string `json:"params,omitempty"`
	Source     logsource.Config  `json:"source,omitempty"`
}

// VerdictResult is a verdict with its result label.
type VerdictResult struct {
	domain.Verdict
	Result string `json:"result" jsonschema_description:"pass, fail or defect"`
}

// VerdictList is the output of list_verdicts.
type VerdictList struct {
	Verdicts []VerdictResult `json:"verdicts"`
}

// GraphResult is the output of graph_definition.
type GraphResult struct {
	Mermaid string `json:"mermaid" jsonschema_description:"Mermaid flowchart of the automaton"`
}

// Server wraps a verdict store and exposes checks as MCP tools.
type Server struct {
	store     ports.VerdictStore
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server saving verdicts to store.
func NewServer(store ports.VerdictStore, logger *slog.Logger) *Server {
	if store == nil {
		store = memory.NewStore()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		store:  store,
		logger: logger,
		mcpServer: server.NewMCPServer("vigil-mcp", strings.TrimSpace(vigil.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// Serve handles one client on in/out until ctx is cancelled or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}

func (s *Server) registerTools() {
	checkTool := mcp.NewTool("check_log",
		mcp.WithDescription("Check a log against an automaton definition and return the verdict."),
		mcp.WithString("definition", mcp.Required(), mcp.Description("Automaton definition, YAML or JSON")),
		mcp.WithString("log", mcp.Required(), mcp.Description("Raw log text")),
		mcp.WithString("name", mcp.Description("Name used in the verdict (defaults to the definition name)")),
		mcp.WithObject("params", mcp.Description("Parameters substituted into the definition"),
			mcp.AdditionalProperties(map[string]any{"type": "string"})),
		mcp.WithObject("source", mcp.Description("Log source settings: timestamp_pattern, timestamp_format, channel_pattern, encoding, multiline, normalize")),
		mcp.WithOutputSchema[VerdictResult](),
	)
	s.mcpServer.AddTool(checkTool, mcp.NewStructuredToolHandler(s.Check))

	s.mcpServer.AddTool(mcp.NewTool("list_verdicts",
		mcp.WithDescription("List stored verdicts, newest first."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOutputSchema[VerdictList](),
	), mcp.NewStructuredToolHandler(s.ListVerdicts))

	s.mcpServer.AddTool(mcp.NewTool("get_verdict",
		mcp.WithDescription("Get a stored verdict by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Verdict id")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOutputSchema[VerdictResult](),
	), mcp.NewStructuredToolHandler(s.GetVerdict))

	s.mcpServer.AddTool(mcp.NewTool("graph_definition",
		mcp.WithDescription("Render an automaton definition as a Mermaid flowchart."),
		mcp.WithString("definition", mcp.Required(), mcp.Description("Automaton definition, YAML or JSON")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOutputSchema[GraphResult](),
	), mcp.NewStructuredToolHandler(s.Graph))
}

// Check handles check_log. A definition that parses but is invalid yields a
// defective verdict, not an error.
func (s *Server) Check(ctx context.Context, _ mcp.CallToolRequest, args CheckArgs) (VerdictResult, error) {
	def, err := file.Parse([]byte(args.Definition))
	if err != nil {
		return VerdictResult{}, err
	}
	src, err := logsource.New(strings.NewReader(args.Log), args.Source)
	if err != nil {
		return VerdictResult{}, err
	}
	name := args.Name
	if name == "" {
		name = def.Name
	}

	run := runner.New(
		runner.WithStore(s.store),
		runner.WithLogger(s.logger),
		runner.WithWorkers(1),
	)
	verdicts, err := run.Run(ctx, []runner.Job{{
		Name:   name,
		Loader: memory.NewLoader(def),
		Params: args.Params,
		Source: "mcp",
		Open: func(context.Context) (ports.EntrySource, error) {
			return src, nil
		},
	}})
	if err != nil {
		return VerdictResult{}, err
	}
	return result(verdicts[0]), nil
}

// ListVerdicts handles list_verdicts.
func (s *Server) ListVerdicts(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (VerdictList, error) {
	verdicts, err := s.store.List(ctx)
	if err != nil {
		return VerdictList{}, err
	}
	out := VerdictList{Verdicts: make([]VerdictResult, len(verdicts))}
	for i, v := range verdicts {
		out.Verdicts[i] = result(v)
	}
	return out, nil
}

// GetVerdict handles get_verdict.
func (s *Server) GetVerdict(ctx context.Context, _ mcp.CallToolRequest, args struct {
	ID string `json:"id"`
}) (VerdictResult, error) {
	v, err := s.store.Load(ctx, args.ID)
	if err != nil {
		return VerdictResult{}, err
	}
	return result(v), nil
}

// Graph handles graph_definition.
func (s *Server) Graph(_ context.Context, _ mcp.CallToolRequest, args struct {
	Definition string `json:"definition"`
}) (GraphResult, error) {
	def, err := file.Parse([]byte(args.Definition))
	if err != nil {
		return GraphResult{}, err
	}
	return GraphResult{Mermaid: graph.GenerateMermaid(def, nil)}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(VerdictsURI, "Stored verdicts",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := s.ListVerdicts(ctx, mcp.CallToolRequest{}, struct{}{})
		if err != nil {
			return nil, fmt.Errorf("failed to list verdicts: %w", err)
		}
		data, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      VerdictsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func result(v domain.Verdict) VerdictResult {
	return VerdictResult{Verdict: v, Result: v.Result()}
}
