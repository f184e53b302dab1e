package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"bikereport/internal/analytics"
	"bikereport/internal/auth"
	"bikereport/internal/config"
	"bikereport/internal/dataset"
	"bikereport/internal/exporter"
	"bikereport/internal/infrastructure"
	"bikereport/internal/pipeline"
	"bikereport/internal/progress"
	"bikereport/internal/report"
	"bikereport/internal/validation"
)

var (
	// BuildTime is when the process started
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	// Deterministic per version and day
	h := sha256.New()
	h.Write([]byte(config.AppVersion))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application wires configuration, credential store, telemetry and the
// report pipeline together
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	Store         *auth.SQLStore
	Authenticator *auth.Authenticator
	Runner        *pipeline.Runner
	OTelProviders *infrastructure.OTelProviders
	Validator     *validation.FileValidator
}

type options struct {
	baseDir    string
	console    io.Writer
	httpClient *http.Client
	opener     report.Opener
	openerSet  bool
	hashCost   int
}

// Option customises NewApplication
type Option func(*options)

// WithBaseDir resolves relative configured paths against dir instead of the
// working directory
func WithBaseDir(dir string) Option {
	return func(o *options) { o.baseDir = dir }
}

// WithConsole sets where the rendering spinner is drawn; nil disables it
func WithConsole(w io.Writer) Option {
	return func(o *options) { o.console = w }
}

// WithHTTPClient replaces the dataset download client
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithOpener replaces the report viewer; nil disables it
func WithOpener(op report.Opener) Option {
	return func(o *options) {
		o.opener = op
		o.openerSet = true
	}
}

// WithHashCost sets the bcrypt cost for users added through the application
func WithHashCost(cost int) Option {
	return func(o *options) { o.hashCost = cost }
}

// NewApplication creates the application from a loaded configuration.
// The credential store is opened, migrated and seeded before it returns.
func NewApplication(ctx context.Context, cfg *config.Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	o := &options{console: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("build_id", BuildID))

	var paths *config.Paths
	if o.baseDir != "" {
		paths = config.NewPathsFrom(o.baseDir, cfg.Paths)
	} else if paths, err = config.NewPaths(cfg.Paths); err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}

	logger.Info("Ensuring required directories exist")
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution()

	validator := validation.NewFileValidator(infrastructure.WithComponent(logger, "validation"))
	if err := validator.ValidateOutputDirectory(paths.OutputDir); err != nil {
		return nil, err
	}

	logoPath := paths.GetAssetPath(cfg.Report.LogoFile)
	if !config.FileExists(logoPath) {
		logger.Warn("Report logo not found, rendering will fail",
			slog.String("path", logoPath))
	}

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Validator:     validator,
	}

	if err := a.initializeStore(ctx, o); err != nil {
		_ = otelProviders.Shutdown(ctx)
		return nil, err
	}

	if err := a.initializeRunner(o, logoPath); err != nil {
		a.Store.Close()
		_ = otelProviders.Shutdown(ctx)
		return nil, err
	}

	return a, nil
}

// initializeStore opens the credential store and creates the authenticator
func (a *Application) initializeStore(ctx context.Context, o *options) error {
	store, err := auth.OpenStore(ctx, a.Config.Auth.Driver, a.Config.Auth.DSN,
		infrastructure.WithComponent(a.Logger, "auth"))
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	if o.hashCost != 0 {
		store.SetHashCost(o.hashCost)
	}

	if len(a.Config.Auth.SeedUsers) > 0 {
		if err := store.Seed(ctx, a.Config.Auth.SeedUsers); err != nil {
			store.Close()
			return err
		}
	}

	authenticator, err := auth.NewAuthenticator(store, a.Config.Auth,
		infrastructure.WithComponent(a.Logger, "auth"))
	if err != nil {
		store.Close()
		return fmt.Errorf("failed to initialize authenticator: %w", err)
	}

	a.Store = store
	a.Authenticator = authenticator
	return nil
}

// initializeRunner builds the report stages
func (a *Application) initializeRunner(o *options, logoPath string) error {
	cfg := a.Config

	metrics, err := infrastructure.CreateRunMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create run metrics: %w", err)
	}

	fetcher := dataset.NewFetcher(cfg.Dataset, infrastructure.WithComponent(a.Logger, "dataset"))
	if o.httpClient != nil {
		fetcher.WithClient(o.httpClient)
	}

	loadLogger := infrastructure.WithComponent(a.Logger, "dataset")
	load := func(path string) (*analytics.Table, error) {
		return dataset.LoadWithLogger(path, loadLogger)
	}

	var rendererOpts []report.Option
	if o.openerSet {
		rendererOpts = append(rendererOpts, report.WithOpener(o.opener))
	}
	renderer := report.NewRenderer(cfg.Report, logoPath,
		infrastructure.WithComponent(a.Logger, "report"), rendererOpts...)

	var spinner *progress.Spinner
	if o.console != nil {
		spinner = progress.NewSpinner(o.console)
	}

	// nil interface, not a typed nil, so the stage skips
	var csv pipeline.Exporter
	if cfg.Report.ExportCSV {
		csv = exporter.NewArtifactExporter(exporter.NewCSVWriter(a.Paths),
			infrastructure.WithComponent(a.Logger, "exporter"))
	}

	stages := []pipeline.Stage{
		pipeline.NewFetchStage(fetcher, cfg.Dataset.URL, a.Paths.InputDir),
		pipeline.NewLoadStage(load),
		pipeline.NewAnalyzeStage(analytics.NewEngine(infrastructure.WithComponent(a.Logger, "analytics"))),
		pipeline.NewRenderStage(renderer, a.Paths.GetOutputPath(cfg.Report.FileName), spinner),
		pipeline.NewExportStage(csv, infrastructure.WithComponent(a.Logger, "exporter")),
	}

	a.Runner = pipeline.NewRunner(stages,
		pipeline.WithMetrics(metrics),
		pipeline.WithFlush(a.OTelProviders.FlushMetrics),
		pipeline.WithLogger(infrastructure.WithComponent(a.Logger, "pipeline")))
	return nil
}

// Login asks p for credentials until they are accepted or the configured
// number of attempts is used up
func (a *Application) Login(ctx context.Context, p auth.Prompter) (auth.Session, error) {
	return a.Authenticator.LoginWithRetry(ctx, p, a.Config.Auth.MaxAttempts)
}

// GenerateReport runs the report pipeline for session. A non-empty inputPath
// is loaded instead of downloading the dataset.
func (a *Application) GenerateReport(ctx context.Context, session auth.Session, inputPath string) (*pipeline.RunState, error) {
	if _, err := a.Authenticator.Verify(session.Token); err != nil {
		return nil, err
	}
	if inputPath != "" {
		if err := a.Validator.ValidateWorkbook(inputPath); err != nil {
			return nil, err
		}
	}
	return a.Runner.Run(ctx, session, inputPath)
}

// AddUser stores a new user in the credential store
func (a *Application) AddUser(ctx context.Context, username, password string) error {
	return a.Store.AddUser(ctx, username, password)
}

// Stop releases the store and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	var errs []error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
	}

	if a.OTelProviders != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("log file close: %w", err))
	}
	return errors.Join(errs...)
}
