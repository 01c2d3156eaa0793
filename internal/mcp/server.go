package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dshist/dshist/internal/dataset"
	"github.com/dshist/dshist/internal/logger"
	"github.com/dshist/dshist/internal/usecase"
)

// Server exposes the explore flow as MCP tools.
type Server struct {
	server  *mcp.Server
	explore *usecase.Explore
	log     *logger.Logger
}

// NewServer creates a new MCP server instance
func NewServer(explore *usecase.Explore, version string, log *logger.Logger) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "dshist",
		Version: version,
	}, nil)

	s := &Server{
		server:  mcpServer,
		explore: explore,
		log:     logger.OrNop(log),
	}

	s.registerTools()

	return s
}

// Run serves over stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "dataset_new",
		Description: "Create a new untitled dataset from SQL, a table or a sub-query",
	}, s.handleNew)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "dataset_transform",
		Description: "Apply a transform to a dataset version, creating a new version",
	}, s.handleTransform)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "dataset_history",
		Description: "Show the version history of a dataset",
	}, s.handleHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "dataset_save",
		Description: "Save a dataset version under a new path",
	}, s.handleSave)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "dataset_show",
		Description: "Show one dataset version, or the saved version of a path",
	}, s.handleShow)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "dataset_list",
		Description: "List saved datasets",
	}, s.handleList)
}

type NewInput struct {
	SQL      string   `json:"sql,omitempty" jsonschema:"SQL text of the new dataset"`
	Table    string   `json:"table,omitempty" jsonschema:"Dotted path of a table to start from"`
	SubQuery string   `json:"subQuery,omitempty" jsonschema:"SQL of a sub-query to start from"`
	Alias    string   `json:"alias,omitempty" jsonschema:"Alias of the sub-query"`
	Context  string   `json:"context,omitempty" jsonschema:"Dotted SQL context the query runs in"`
	Columns  []string `json:"columns,omitempty" jsonschema:"Columns the query produces"`
	Parents  []string `json:"parents,omitempty" jsonschema:"Dotted paths of datasets the query reads"`
}

type VersionOutput struct {
	Version usecase.VersionView `json:"version"`
	JobID   string              `json:"jobId,omitempty"`
	History usecase.HistoryView `json:"history"`
}

type TransformInput struct {
	Path       string   `json:"path" jsonschema:"Dotted path of the base version"`
	Version    string   `json:"version" jsonschema:"Base version"`
	Type       string   `json:"type" jsonschema:"Transform type: update_sql, sort, drop, rename, filter or calculated_field"`
	SQL        string   `json:"sql,omitempty" jsonschema:"New SQL for update_sql"`
	Column     string   `json:"column,omitempty" jsonschema:"Column the transform applies to"`
	NewColumn  string   `json:"newColumn,omitempty" jsonschema:"New column name for rename and calculated_field"`
	Descending bool     `json:"descending,omitempty" jsonschema:"Sort descending"`
	Expression string   `json:"expression,omitempty" jsonschema:"Expression for filter and calculated_field"`
	Columns    []string `json:"columns,omitempty" jsonschema:"Columns of the result, when known"`
}

type HistoryInput struct {
	Path     string `json:"path" jsonschema:"Dotted dataset path"`
	Selected string `json:"selected" jsonschema:"Version currently shown"`
	Tip      string `json:"tip,omitempty" jsonschema:"Newest known version when it differs from selected"`
}

type HistoryOutput struct {
	History usecase.HistoryView `json:"history"`
}

type SaveInput struct {
	Path    string `json:"path" jsonschema:"Dotted path of the version to save"`
	Version string `json:"version" jsonschema:"Version to save"`
	NewPath string `json:"newPath" jsonschema:"Dotted path to save the dataset under"`
}

type ShowInput struct {
	Path    string `json:"path" jsonschema:"Dotted dataset path"`
	Version string `json:"version,omitempty" jsonschema:"Version to show; the saved version when empty"`
}

type ShowOutput struct {
	Version usecase.VersionView `json:"version"`
}

type ListInput struct{}

type ListOutput struct {
	Datasets []usecase.VersionView `json:"datasets"`
}

func (s *Server) handleNew(ctx context.Context, req *mcp.CallToolRequest, input NewInput) (*mcp.CallToolResult, VersionOutput, error) {
	from, err := sourceFromInput(input)
	if err != nil {
		return nil, VersionOutput{}, err
	}

	var sqlContext []string
	if input.Context != "" {
		ctxPath, err := dataset.ParsePath(input.Context)
		if err != nil {
			return nil, VersionOutput{}, fmt.Errorf("invalid context: %w", err)
		}
		sqlContext = ctxPath
	}

	parents, err := parentsFromInput(input.Parents)
	if err != nil {
		return nil, VersionOutput{}, err
	}

	res, err := s.explore.NewUntitled(ctx, usecase.NewUntitledInput{
		From:    from,
		Context: sqlContext,
		Columns: input.Columns,
		Parents: parents,
	})
	if err != nil {
		return nil, VersionOutput{}, fmt.Errorf("failed to create dataset: %w", err)
	}

	return nil, versionOutput(res), nil
}

func (s *Server) handleTransform(ctx context.Context, req *mcp.CallToolRequest, input TransformInput) (*mcp.CallToolResult, VersionOutput, error) {
	ref, err := refFromInput(input.Path, input.Version)
	if err != nil {
		return nil, VersionOutput{}, err
	}

	res, err := s.explore.Transform(ctx, usecase.TransformInput{
		Base: ref,
		Transform: dataset.Transform{
			Type:       dataset.TransformType(input.Type),
			SQL:        input.SQL,
			Column:     input.Column,
			NewColumn:  input.NewColumn,
			Descending: input.Descending,
			Expression: input.Expression,
		},
		Columns: input.Columns,
	})
	if err != nil {
		return nil, VersionOutput{}, fmt.Errorf("failed to transform %s: %w", ref, err)
	}

	return nil, versionOutput(res), nil
}

func (s *Server) handleHistory(ctx context.Context, req *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
	ref, err := refFromInput(input.Path, input.Selected)
	if err != nil {
		return nil, HistoryOutput{}, err
	}

	h, err := s.explore.History(ctx, ref.Path, ref.Version, dataset.Version(input.Tip))
	if err != nil {
		return nil, HistoryOutput{}, fmt.Errorf("failed to build history: %w", err)
	}

	return nil, HistoryOutput{History: usecase.NewHistoryView(h)}, nil
}

func (s *Server) handleSave(ctx context.Context, req *mcp.CallToolRequest, input SaveInput) (*mcp.CallToolResult, ShowOutput, error) {
	ref, err := refFromInput(input.Path, input.Version)
	if err != nil {
		return nil, ShowOutput{}, err
	}
	target, err := dataset.ParsePath(input.NewPath)
	if err != nil {
		return nil, ShowOutput{}, fmt.Errorf("invalid new path: %w", err)
	}

	saved, err := s.explore.Save(ctx, usecase.SaveInput{Ref: ref, NewPath: target})
	if err != nil {
		return nil, ShowOutput{}, fmt.Errorf("failed to save: %w", err)
	}
	s.log.Info("saved through mcp", "path", target.String(), "version", saved.Version.String())

	return nil, ShowOutput{Version: usecase.NewVersionView(saved)}, nil
}

func (s *Server) handleShow(ctx context.Context, req *mcp.CallToolRequest, input ShowInput) (*mcp.CallToolResult, ShowOutput, error) {
	path, err := dataset.ParsePath(input.Path)
	if err != nil {
		return nil, ShowOutput{}, fmt.Errorf("invalid path: %w", err)
	}

	var rec *dataset.Record
	if input.Version == "" {
		rec, err = s.explore.Saved(ctx, path)
	} else {
		rec, err = s.explore.Get(ctx, dataset.NewRef(path, dataset.Version(input.Version)))
	}
	if err != nil {
		return nil, ShowOutput{}, err
	}

	return nil, ShowOutput{Version: usecase.NewVersionView(rec)}, nil
}

func (s *Server) handleList(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
	records, err := s.explore.ListSaved(ctx)
	if err != nil {
		return nil, ListOutput{}, fmt.Errorf("failed to list datasets: %w", err)
	}

	views := make([]usecase.VersionView, 0, len(records))
	for _, r := range records {
		views = append(views, usecase.NewVersionView(r))
	}
	return nil, ListOutput{Datasets: views}, nil
}

func sourceFromInput(input NewInput) (dataset.From, error) {
	given := 0
	for _, v := range []string{input.SQL, input.Table, input.SubQuery} {
		if strings.TrimSpace(v) != "" {
			given++
		}
	}
	if given != 1 {
		return dataset.From{}, fmt.Errorf("exactly one of sql, table or subQuery is required")
	}

	switch {
	case input.Table != "":
		table, err := dataset.ParsePath(input.Table)
		if err != nil {
			return dataset.From{}, fmt.Errorf("invalid table: %w", err)
		}
		return dataset.FromDataset(table), nil
	case input.SubQuery != "":
		return dataset.FromSubQueryText(input.SubQuery, input.Alias), nil
	default:
		return dataset.FromSQLText(input.SQL), nil
	}
}

func parentsFromInput(paths []string) ([]dataset.Parent, error) {
	parents := make([]dataset.Parent, 0, len(paths))
	for _, raw := range paths {
		p, err := dataset.ParsePath(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid parent %q: %w", raw, err)
		}
		parents = append(parents, dataset.Parent{Path: p, Type: dataset.ParentUnknown})
	}
	return parents, nil
}

func refFromInput(path, version string) (dataset.VersionRef, error) {
	p, err := dataset.ParsePath(path)
	if err != nil {
		return dataset.VersionRef{}, fmt.Errorf("invalid path: %w", err)
	}
	if version == "" {
		return dataset.VersionRef{}, fmt.Errorf("version is required")
	}
	return dataset.NewRef(p, dataset.Version(version)), nil
}

func versionOutput(res *usecase.Result) VersionOutput {
	return VersionOutput{
		Version: usecase.NewVersionView(res.Record),
		JobID:   string(res.JobID),
		History: usecase.NewHistoryView(res.History),
	}
}
