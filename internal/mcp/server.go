package mcp

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/choplin/dbhelpers/internal/database"
	"github.com/choplin/dbhelpers/internal/filesystem"
	"github.com/choplin/dbhelpers/internal/truncate"
	"github.com/choplin/dbhelpers/internal/usecase"
)

// Server wraps the MCP server with the SQL helper tools
type Server struct {
	server *mcp.Server
	dbCtx  *database.Context
}

// NewServer creates a new MCP server instance
func NewServer(version string) (*Server, error) {
	dbCtx, err := database.CreateDatabase("")
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "dbhelpers",
		Version: version,
	}, nil)

	s := &Server{
		server: mcpServer,
		dbCtx:  dbCtx,
	}

	s.registerTools()

	return s, nil
}

// Run starts the MCP server with stdio transport
func (s *Server) Run(ctx context.Context) error {
	defer database.CloseDatabase(s.dbCtx)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_sql",
		Description: "Extract the SQL statements typed at the mysql prompt from a console transcript file",
	}, s.handleExtract)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "truncate_statements",
		Description: "Generate a script that truncates the exercise tables with foreign key checks disabled",
	}, s.handleTruncate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_runs",
		Description: "List recorded extract and truncate runs",
	}, s.handleListRuns)
}

// Input/Output types for each tool

type ExtractInput struct {
	Path         string  `json:"path" jsonschema:"Path of the console transcript"`
	Output       *string `json:"output,omitempty" jsonschema:"Output path (defaults to the transcript path plus .sql)"`
	Prompt       *string `json:"prompt,omitempty" jsonschema:"Prompt token that marks typed commands (default mysql>)"`
	Continuation *bool   `json:"continuation,omitempty" jsonschema:"Also capture -> continuation lines of multi-line statements"`
	Record       *bool   `json:"record,omitempty" jsonschema:"Record the run in the history index"`
}

type ExtractOutput struct {
	OutputPath string `json:"outputPath"`
	Statements int    `json:"statements"`
	Script     string `json:"script"`
	RunID      int64  `json:"runId,omitempty"`
}

type TruncateInput struct {
	Tables []string `json:"tables,omitempty" jsonschema:"Tables to truncate in order (defaults to the exercise tables)"`
	Record *bool    `json:"record,omitempty" jsonschema:"Record the run in the history index"`
}

type TruncateOutput struct {
	Script string `json:"script"`
	RunID  int64  `json:"runId,omitempty"`
}

type ListRunsInput struct {
	Kind  *string `json:"kind,omitempty" jsonschema:"Only list runs of this kind: extract or truncate"`
	Limit *int    `json:"limit,omitempty" jsonschema:"Maximum number of runs to return"`
}

type ListRunsOutput struct {
	Runs []RunEntry `json:"runs"`
}

type RunEntry struct {
	ID         int64  `json:"id"`
	Kind       string `json:"kind"`
	Source     string `json:"source"`
	OutputPath string `json:"outputPath,omitempty"`
	Statements int64  `json:"statements"`
	Hash       string `json:"hash"`
	Repository string `json:"repository,omitempty"`
	Executed   bool   `json:"executed,omitempty"`
	CreatedAt  string `json:"createdAt"`
}

// Tool handlers

func (s *Server) handleExtract(ctx context.Context, _ *mcp.CallToolRequest, input ExtractInput) (*mcp.CallToolResult, ExtractOutput, error) {
	if input.Path == "" {
		return nil, ExtractOutput{}, fmt.Errorf("path is required")
	}

	in := usecase.ExtractInput{InputPath: input.Path}
	if input.Output != nil {
		in.OutputPath = *input.Output
	}
	if input.Prompt != nil {
		in.Prompt = *input.Prompt
	}
	if input.Continuation != nil {
		in.Continuation = *input.Continuation
	}

	res, err := usecase.Extract(in)
	if err != nil {
		return nil, ExtractOutput{}, fmt.Errorf("failed to extract statements: %w", err)
	}

	script, err := filesystem.ReadFile(res.OutputPath)
	if err != nil {
		return nil, ExtractOutput{}, fmt.Errorf("failed to read output: %w", err)
	}

	out := ExtractOutput{
		OutputPath: res.OutputPath,
		Statements: res.Statements,
		Script:     script,
	}

	if input.Record != nil && *input.Record {
		id, err := usecase.NewHistory(s.dbCtx).RecordExtract(ctx, res)
		if err != nil {
			return nil, ExtractOutput{}, err
		}
		out.RunID = id
	}

	return nil, out, nil
}

func (s *Server) handleTruncate(ctx context.Context, _ *mcp.CallToolRequest, input TruncateInput) (*mcp.CallToolResult, TruncateOutput, error) {
	tables := truncate.DefaultTables()
	source := usecase.BuiltinSource
	if len(input.Tables) > 0 {
		tables = input.Tables
		source = usecase.MCPSource
	}

	var buf bytes.Buffer
	if err := truncate.Write(&buf, tables); err != nil {
		return nil, TruncateOutput{}, err
	}
	out := TruncateOutput{Script: buf.String()}

	if input.Record != nil && *input.Record {
		id, err := usecase.NewHistory(s.dbCtx).RecordTruncate(ctx, source, tables, false)
		if err != nil {
			return nil, TruncateOutput{}, err
		}
		out.RunID = id
	}

	return nil, out, nil
}

func (s *Server) handleListRuns(ctx context.Context, _ *mcp.CallToolRequest, input ListRunsInput) (*mcp.CallToolResult, ListRunsOutput, error) {
	var kind database.RunKind
	if input.Kind != nil {
		kind = database.RunKind(*input.Kind)
	}
	limit := 0
	if input.Limit != nil {
		limit = *input.Limit
	}

	runs, err := usecase.NewHistory(s.dbCtx).List(ctx, kind, limit)
	if err != nil {
		return nil, ListRunsOutput{}, fmt.Errorf("failed to list runs: %w", err)
	}

	entries := make([]RunEntry, 0, len(runs))
	for _, r := range runs {
		entries = append(entries, RunEntry{
			ID:         r.ID,
			Kind:       string(r.Kind),
			Source:     r.Source,
			OutputPath: r.OutputPath,
			Statements: r.StatementCount,
			Hash:       r.Hash,
			Repository: r.Repository,
			Executed:   r.Executed,
			CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		})
	}

	return nil, ListRunsOutput{Runs: entries}, nil
}
