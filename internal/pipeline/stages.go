package pipeline

import (
	"context"
	"log/slog"

	"bikereport/internal/analytics"
	"bikereport/internal/progress"
)

// Fetcher downloads the dataset into dir and returns the saved file
type Fetcher interface {
	Fetch(ctx context.Context, url, dir string) (string, error)
}

// LoadFunc reads a dataset file into a table
type LoadFunc func(path string) (*analytics.Table, error)

// Analyzer computes the report artifacts
type Analyzer interface {
	Analyze(ctx context.Context, table *analytics.Table) (*analytics.Result, error)
}

// Renderer writes the report document
type Renderer interface {
	Render(ctx context.Context, result *analytics.Result, username, path string) error
}

// Exporter writes the result tables as files
type Exporter interface {
	Export(result *analytics.Result) ([]string, error)
}

// FetchStage downloads the dataset unless an input file was supplied
type FetchStage struct {
	baseStage
	fetcher Fetcher
	url     string
	dir     string
}

// NewFetchStage creates the download stage
func NewFetchStage(f Fetcher, url, dir string) *FetchStage {
	return &FetchStage{
		baseStage: baseStage{id: StageFetch, name: "Download dataset"},
		fetcher:   f,
		url:       url,
		dir:       dir,
	}
}

// Execute implements Stage
func (s *FetchStage) Execute(ctx context.Context, state *RunState) error {
	if state.InputPath != "" {
		return Skip("input file supplied: " + state.InputPath)
	}
	path, err := s.fetcher.Fetch(ctx, s.url, s.dir)
	if err != nil {
		return err
	}
	state.InputPath = path
	return nil
}

// LoadStage reads the dataset file into memory
type LoadStage struct {
	baseStage
	load LoadFunc
}

// NewLoadStage creates the load stage
func NewLoadStage(load LoadFunc) *LoadStage {
	return &LoadStage{
		baseStage: baseStage{id: StageLoad, name: "Load dataset"},
		load:      load,
	}
}

// Execute implements Stage
func (s *LoadStage) Execute(ctx context.Context, state *RunState) error {
	if state.InputPath == "" {
		return NewInvalidStateError(s.id, "no dataset file")
	}
	table, err := s.load(state.InputPath)
	if err != nil {
		return err
	}
	state.Table = table
	return nil
}

// AnalyzeStage runs the analytics engine
type AnalyzeStage struct {
	baseStage
	analyzer Analyzer
}

// NewAnalyzeStage creates the analysis stage
func NewAnalyzeStage(a Analyzer) *AnalyzeStage {
	return &AnalyzeStage{
		baseStage: baseStage{id: StageAnalyze, name: "Analyze trips"},
		analyzer:  a,
	}
}

// Execute implements Stage
func (s *AnalyzeStage) Execute(ctx context.Context, state *RunState) error {
	if state.Table == nil {
		return NewInvalidStateError(s.id, "no dataset loaded")
	}
	result, err := s.analyzer.Analyze(ctx, state.Table)
	if err != nil {
		return err
	}
	state.Result = result
	return nil
}

// RenderStage writes the PDF while the spinner runs
type RenderStage struct {
	baseStage
	renderer Renderer
	path     string
	spinner  *progress.Spinner
}

// NewRenderStage creates the render stage writing to path. A nil spinner
// renders silently.
func NewRenderStage(r Renderer, path string, spinner *progress.Spinner) *RenderStage {
	return &RenderStage{
		baseStage: baseStage{id: StageRender, name: "Render report"},
		renderer:  r,
		path:      path,
		spinner:   spinner,
	}
}

// Execute implements Stage
func (s *RenderStage) Execute(ctx context.Context, state *RunState) error {
	if state.Result == nil {
		return NewInvalidStateError(s.id, "no analysis result")
	}
	err := progress.Track(ctx, s.spinner, func(ctx context.Context) error {
		return s.renderer.Render(ctx, state.Result, state.Session.Username, s.path)
	})
	if err != nil {
		return err
	}
	state.ReportPath = s.path
	return nil
}

// ExportStage writes the result tables as CSV files
type ExportStage struct {
	baseStage
	exporter Exporter
	logger   *slog.Logger
}

// NewExportStage creates the export stage. A nil exporter skips it.
func NewExportStage(e Exporter, logger *slog.Logger) *ExportStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportStage{
		baseStage: baseStage{id: StageExport, name: "Export tables"},
		exporter:  e,
		logger:    logger,
	}
}

// Execute implements Stage
func (s *ExportStage) Execute(ctx context.Context, state *RunState) error {
	if s.exporter == nil {
		return Skip("CSV export disabled")
	}
	if state.Result == nil {
		return NewInvalidStateError(s.id, "no analysis result")
	}
	files, err := s.exporter.Export(state.Result)
	state.Exported = files
	if err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "Tables exported", slog.Any("files", files))
	return nil
}
