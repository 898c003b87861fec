// Package mcp provides an MCP (Model Context Protocol) server for stepgraph.
// It lets AI agents query the entity graph of one STEP file through MCP
// tools instead of CLI commands.
package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hargabyte/stepgraph/internal/graph"
	"github.com/hargabyte/stepgraph/internal/metrics"
	"github.com/hargabyte/stepgraph/internal/output"
	"github.com/hargabyte/stepgraph/internal/present"
	"github.com/hargabyte/stepgraph/internal/render"
	"github.com/hargabyte/stepgraph/internal/step"
)

// Server wraps the MCP server around one parsed file.
type Server struct {
	mcpServer    *server.MCPServer
	name         string
	file         *step.File
	graph        *graph.Graph
	palette      present.Palette
	rankConfig   metrics.PageRankConfig
	logger       *slog.Logger
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex

	rankOnce sync.Once
	ranked   []metrics.Metrics
}

// Config holds server configuration
type Config struct {
	Name     string        // file name shown in results
	Version  string        // reported to clients
	Tools    []string      // which tools to expose (empty = all)
	Timeout  time.Duration // inactivity timeout (0 = no timeout)
	Palette  present.Palette
	PageRank metrics.PageRankConfig
	Logger   *slog.Logger
}

// AllTools lists all available tools
var AllTools = []string{"step_summary", "step_show", "step_neighborhood", "step_find", "step_path", "step_rank"}

// New creates a server for a parsed file and its graph.
func New(f *step.File, g *graph.Graph, cfg Config) (*Server, error) {
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.PageRank.MaxIterations == 0 {
		cfg.PageRank = metrics.DefaultPageRankConfig()
	}

	s := &Server{
		mcpServer:    server.NewMCPServer("stepgraph", cfg.Version, server.WithToolCapabilities(false)),
		name:         cfg.Name,
		file:         f,
		graph:        g,
		palette:      cfg.Palette,
		rankConfig:   cfg.PageRank,
		logger:       cfg.Logger,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = AllTools
	}
	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

func (s *Server) registerTool(name string) error {
	schema, ok := toolSchemaRegistry[name]
	if !ok {
		return fmt.Errorf("unknown tool: %s", name)
	}
	s.mcpServer.AddTool(schema.Tool(), s.handler(name))
	return nil
}

// ServeStdio serves requests on stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads JSON-RPC messages from in and writes responses to out until
// ctx is done, in closes or the inactivity timeout expires.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.timeout > 0 {
		go s.timeoutChecker(ctx, cancel)
	}

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	return stdio.Listen(ctx, in, out)
}

// timeoutChecker cancels the server after the inactivity timeout.
func (s *Server) timeoutChecker(ctx context.Context, cancel context.CancelFunc) {
	interval := min(30*time.Second, s.timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			elapsed := time.Since(s.lastActivity)
			s.mu.RUnlock()

			if elapsed > s.timeout {
				s.logger.Info("stopping after inactivity", "timeout", s.timeout)
				cancel()
				return
			}
		}
	}
}

func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the registered tool names, sorted.
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	slices.Sort(tools)
	return tools
}

// GetToolSchemas returns schemas for all registered tools, sorted by name.
func (s *Server) GetToolSchemas() []ToolSchema {
	schemas := make([]ToolSchema, 0, len(s.tools))
	for _, name := range s.ListTools() {
		schemas = append(schemas, toolSchemaRegistry[name])
	}
	return schemas
}

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.updateActivity()
		s.logger.Debug("tool call", "tool", name)

		result, err := s.CallTool(name, req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}

// CallTool dispatches a tool call by name with the given arguments and
// returns the JSON (or diagram) text of the result.
func (s *Server) CallTool(name string, args map[string]any) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	switch name {
	case "step_summary":
		return toJSON(output.Stats(s.name, s.file, s.graph))

	case "step_show":
		id, err := idArg(args, "id")
		if err != nil {
			return "", err
		}
		density, err := output.ParseDensity(stringArg(args, "density"))
		if err != nil {
			return "", err
		}
		out, err := output.Entity(s.graph, id, density)
		if err != nil {
			return "", err
		}
		return toJSON(out)

	case "step_neighborhood":
		id, err := idArg(args, "id")
		if err != nil {
			return "", err
		}
		dir, err := graph.ParseDirection(stringArg(args, "direction"))
		if err != nil {
			return "", err
		}
		return s.executeNeighborhood(id, intArg(args, "radius", 1), dir, stringArg(args, "format"))

	case "step_find":
		pattern := stringArg(args, "type")
		if pattern == "" {
			return "", fmt.Errorf("type parameter is required")
		}
		return s.executeFind(pattern, intArg(args, "limit", 20))

	case "step_path":
		from, err := idArg(args, "from")
		if err != nil {
			return "", err
		}
		to, err := idArg(args, "to")
		if err != nil {
			return "", err
		}
		dir := graph.Out
		if d := stringArg(args, "direction"); d != "" {
			if dir, err = graph.ParseDirection(d); err != nil {
				return "", err
			}
		}
		out, err := output.Path(s.graph, from, to, dir)
		if err != nil {
			return "", err
		}
		return toJSON(out)

	case "step_rank":
		s.rankOnce.Do(func() {
			s.ranked = metrics.Compute(s.graph, s.rankConfig)
		})
		t := metrics.DefaultThresholds()
		classes := metrics.Classify(s.ranked, t)
		ms := metrics.Filter(s.ranked, boolArg(args, "keystones"), boolArg(args, "bottlenecks"), t)
		return toJSON(output.Rank(s.name, ms, classes, intArg(args, "top", 20), false))

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func (s *Server) executeNeighborhood(id, radius int, dir graph.Direction, format string) (string, error) {
	sub, err := graph.Extract(s.graph, id, graph.ExtractOptions{Radius: radius, Direction: dir})
	if err != nil {
		return "", err
	}

	opts := present.DefaultOptions()
	if len(s.palette.Colors) > 0 || len(s.palette.Types) > 0 {
		opts.Palette = s.palette
	}
	opts.Title = fmt.Sprintf("%s #%d", s.name, id)
	m := present.FromView(sub, opts)

	switch strings.ToLower(format) {
	case "", "json":
		return toJSON(m)
	case "mermaid", "mmd":
		return render.Mermaid(m, render.DefaultOptions()), nil
	case "d2":
		return render.D2(m, render.DefaultOptions()), nil
	default:
		return "", fmt.Errorf("invalid format %q: expected json, mermaid, or d2", format)
	}
}

// findResult is one match of step_find.
type findResult struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Line int    `json:"line"`
}

func (s *Server) executeFind(pattern string, limit int) (string, error) {
	ids := s.graph.FindByType(pattern)
	total := len(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	results := make([]findResult, 0, len(ids))
	for _, id := range ids {
		rec, _ := s.graph.Get(id)
		results = append(results, findResult{ID: output.FormatID(id), Type: rec.TypeName(), Line: rec.Pos.Line})
	}

	return toJSON(map[string]any{
		"type":    pattern,
		"total":   total,
		"count":   len(results),
		"results": results,
	})
}

func toJSON(v any) (string, error) {
	return output.NewJSONFormatter().Format(v)
}

// idArg reads an entity id given as a number or as "42" / "#42".
func idArg(args map[string]any, key string) (int, error) {
	switch v := args[key].(type) {
	case float64:
		return graph.ParseID(strconv.Itoa(int(v)))
	case string:
		if v == "" {
			break
		}
		return graph.ParseID(v)
	}
	return 0, fmt.Errorf("%s parameter is required", key)
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]any, key string, def int) int {
	if n, ok := args[key].(float64); ok {
		return int(n)
	}
	return def
}

func boolArg(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}
