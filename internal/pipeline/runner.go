package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bikereport/internal/auth"
	"bikereport/internal/infrastructure"
)

// TracerName is the instrumentation scope of pipeline spans
const TracerName = "bikereport/pipeline"

// Runner executes the stages of a report run in order
type Runner struct {
	stages  []Stage
	metrics *infrastructure.RunMetrics
	flush   func() error
	tracer  trace.Tracer
	logger  *slog.Logger
}

// Option configures a Runner
type Option func(*Runner)

// WithMetrics records stage durations and run outcomes on m
func WithMetrics(m *infrastructure.RunMetrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithFlush is called once per run after the outcome was recorded
func WithFlush(flush func() error) Option {
	return func(r *Runner) { r.flush = flush }
}

// WithTracer replaces the global tracer
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a runner for the given stages
func NewRunner(stages []Stage, opts ...Option) *Runner {
	r := &Runner{
		stages: stages,
		tracer: otel.Tracer(TracerName),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every stage for session. inputPath, when set, is used as the
// dataset instead of downloading it. The first failing stage aborts the run;
// the returned state is never nil and records how far the run got.
func (r *Runner) Run(ctx context.Context, session auth.Session, inputPath string) (*RunState, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	state := NewRunState(infrastructure.GetTraceID(ctx), session, inputPath)
	for _, stage := range r.stages {
		state.track(stage)
	}

	ctx, span := r.tracer.Start(ctx, "pipeline.Run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", state.ID),
			attribute.String("run.username", session.Username),
			attribute.Int("run.stages", len(r.stages)),
		),
	)
	defer span.End()

	logger := r.logger.With(slog.String("run_id", state.ID))
	logger.InfoContext(ctx, "Report run started",
		slog.String("username", session.Username),
		slog.String("otel_trace_id", infrastructure.TraceIDFromContext(ctx)))
	start := time.Now()

	err := r.execute(ctx, state, logger)

	r.metrics.RecordRun(ctx, err)
	if state.Table != nil {
		dropped := 0
		if state.Result != nil {
			dropped = state.Table.Len() - len(state.Result.Data)
		}
		r.metrics.RecordDataset(ctx, state.Table.Len(), dropped)
	}
	if r.flush != nil {
		if ferr := r.flush(); ferr != nil {
			logger.WarnContext(ctx, "Failed to flush metrics", slog.String("error", ferr.Error()))
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "Report run failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return state, err
	}

	span.SetStatus(codes.Ok, "")
	logger.InfoContext(ctx, "Report run completed",
		slog.String("report", state.ReportPath),
		slog.Duration("duration", time.Since(start)))
	return state, nil
}

func (r *Runner) execute(ctx context.Context, state *RunState, logger *slog.Logger) error {
	for _, stage := range r.stages {
		record := state.Stage(stage.ID())

		if err := ctx.Err(); err != nil {
			return NewCancellationError(stage.ID(), err)
		}

		if err := r.runStage(ctx, stage, state, record, logger); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runStage(ctx context.Context, stage Stage, state *RunState, record *StageState, logger *slog.Logger) error {
	ctx, span := r.tracer.Start(ctx, "pipeline.stage."+stage.ID(),
		trace.WithAttributes(
			attribute.String("stage.id", stage.ID()),
			attribute.String("stage.name", stage.Name()),
		),
	)
	defer span.End()

	record.Start()
	logger.DebugContext(ctx, "Stage started", slog.String("stage", stage.ID()))

	err := stage.Execute(ctx, state)

	var skip *SkipError
	switch {
	case errors.As(err, &skip):
		record.Skip(skip.Reason)
		span.SetAttributes(attribute.Bool("stage.skipped", true))
		logger.InfoContext(ctx, "Stage skipped",
			slog.String("stage", stage.ID()),
			slog.String("reason", skip.Reason))
		return nil

	case err != nil:
		var se *StageError
		if !errors.As(err, &se) {
			err = NewExecutionError(stage.ID(), err)
		}
		record.Fail(err)
		r.metrics.RecordStage(ctx, stage.ID(), record.Duration(), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "Stage failed",
			slog.String("stage", stage.ID()),
			slog.String("error", err.Error()))
		return err
	}

	record.Complete()
	r.metrics.RecordStage(ctx, stage.ID(), record.Duration(), nil)
	logger.InfoContext(ctx, "Stage completed",
		slog.String("stage", stage.ID()),
		slog.Duration("duration", record.Duration()))
	return nil
}
