package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/go-pdf/fpdf"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"bikereport/internal/analytics"
	"bikereport/internal/config"
)

const (
	dateLayout = "2006-01-02"

	description = "This report presents the most popular bicycle routes of the public bike " +
		"sharing system, the longest distances between stations and the routes with the " +
		"longest average duration, based on the supplied trip data."
	footerText = "(c) Confidential content, all rights reserved"
)

// Renderer lays the analysis results out as a PDF document
type Renderer struct {
	logoPath   string
	headerText string
	opener     Opener
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Renderer
type Option func(*Renderer)

// WithOpener sets the viewer used after the file is written; nil disables it
func WithOpener(o Opener) Option {
	return func(r *Renderer) { r.opener = o }
}

// WithClock replaces time.Now for the report dates
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// NewRenderer creates a renderer drawing logoPath in the page header.
// The system viewer is used when cfg.OpenViewer is set.
func NewRenderer(cfg config.ReportConfig, logoPath string, logger *slog.Logger, opts ...Option) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	header := cfg.HeaderText
	if header == "" {
		header = config.AppName
	}
	r := &Renderer{
		logoPath:   logoPath,
		headerText: header,
		logger:     logger,
		now:        time.Now,
	}
	if cfg.OpenViewer {
		r.opener = SystemOpener{}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render builds the report for username and writes it to path, then asks
// the opener to show it. Nothing is written unless the whole document was
// built; viewer failures are logged only.
func (r *Renderer) Render(ctx context.Context, result *analytics.Result, username, path string) error {
	ctx, span := otel.Tracer("bikereport/report").Start(ctx, "report.Render")
	defer span.End()
	span.SetAttributes(attribute.String("report.path", path))

	data, err := r.Build(result, username)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		err = fmt.Errorf("%w: %v", ErrOutputNotWritable, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Int("report.bytes", len(data)))

	r.logger.InfoContext(ctx, "Report generated",
		slog.String("path", path),
		slog.String("username", username),
		slog.Int("bytes", len(data)))

	if r.opener != nil {
		if err := r.opener.Open(ctx, path); err != nil {
			r.logger.WarnContext(ctx, "Could not open report viewer",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// Build renders the report into memory
func (r *Renderer) Build(result *analytics.Result, username string) ([]byte, error) {
	if result == nil {
		return nil, errors.New("no analysis result to render")
	}
	if err := checkAsset(r.logoPath); err != nil {
		return nil, err
	}

	today := r.now().Format(dateLayout)
	doc := newDocument(config.AppName, username)
	doc.pdf.SetCreationDate(r.now())
	doc.pdf.RegisterImageOptions(r.logoPath, fpdf.ImageOptions{ReadDpi: true})
	if err := doc.pdf.Error(); err != nil {
		return nil, &AssetError{Path: r.logoPath, Err: err}
	}
	doc.setHeaderFooter(r.logoPath, fmt.Sprintf("%s | Created %s", r.headerText, today), footerText)
	doc.pdf.AddPage()

	doc.paragraph(description)
	doc.paragraph(fmt.Sprintf("Created by %s on %s.", username, today))

	doc.stationMap(Stations(result.Data))

	r.popularSection(doc, result.PopularRoutes)
	r.distanceSection(doc, result.LongestDistances)
	r.durationSection(doc, result.LongestDurations)
	r.distributionSection(doc, result)
	r.summarySection(doc, result.Summary)

	var buf bytes.Buffer
	if err := doc.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

func checkAsset(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &AssetError{Path: path, Err: fs.ErrNotExist}
		}
		return &AssetError{Path: path, Err: err}
	}
	if info.IsDir() {
		return &AssetError{Path: path, Err: errors.New("is a directory")}
	}
	return nil
}

func (r *Renderer) popularSection(doc *document, rows []analytics.RouteCount) {
	doc.heading("Most Popular Routes")
	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	cells := make([][]string, len(rows))
	for i, row := range rows {
		labels[i] = row.Route
		values[i] = float64(row.Count)
		cells[i] = []string{row.Route, FormatCount(row.Count)}
	}
	doc.table([]string{"Route", "Trips"}, cells, []float64{0.8, 0.2}, []string{"L", "R"})
	doc.barChart("Most Popular Routes", labels, values, func(v float64) string {
		return FormatNumber(v, 0)
	})
}

func (r *Renderer) distanceSection(doc *document, rows []analytics.RouteDistance) {
	doc.heading("Routes with the Largest Distances")
	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	cells := make([][]string, len(rows))
	for i, row := range rows {
		labels[i] = row.Route
		values[i] = row.DistanceKm
		cells[i] = []string{row.Route, FormatNumber(row.DistanceKm, 3)}
	}
	doc.table([]string{"Route", "Distance (km)"}, cells, []float64{0.75, 0.25}, []string{"L", "R"})
	doc.barChart("Longest Distances Between Stations", labels, values, func(v float64) string {
		return FormatNumber(v, 2) + " km"
	})
}

func (r *Renderer) durationSection(doc *document, rows []analytics.RouteDuration) {
	doc.heading("Routes with the Longest Average Duration")
	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	cells := make([][]string, len(rows))
	for i, row := range rows {
		labels[i] = row.Route
		values[i] = row.AvgDuration
		cells[i] = []string{row.Route, FormatNumber(row.AvgDuration, 1), FormatCount(row.TripCount)}
	}
	doc.table([]string{"Route", "Avg Duration (s)", "Trips"}, cells,
		[]float64{0.6, 0.25, 0.15}, []string{"L", "R", "R"})
	doc.barChart("Longest Average Durations", labels, values, func(v float64) string {
		return FormatNumber(v, 0) + " s"
	})
}

func (r *Renderer) distributionSection(doc *document, result *analytics.Result) {
	doc.heading("Trip Distributions")
	durations := make([]float64, len(result.Data))
	distances := make([]float64, len(result.Data))
	for i, t := range result.Data {
		durations[i] = t.Duration
		distances[i] = t.DistanceKm
	}
	doc.histogram("Trip Duration", "Duration (s)", durations)
	doc.histogram("Trip Distance", "Distance (km)", distances)
	doc.scatter("Distance vs Duration", "Distance (km)", "Duration (s)", distances, durations)
	doc.boxPlots("Duration and Distance Spread", []boxPanel{
		{label: "Duration (s)", stats: result.Summary.Duration},
		{label: "Distance (km)", stats: result.Summary.Distance},
	})
}

func (r *Renderer) summarySection(doc *document, summary analytics.Summary) {
	doc.heading("Summary Statistics")
	rows := summary.Rows()
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = []string{row.Statistic, FormatNumber(row.Duration, 2), FormatNumber(row.DistanceKm, 3)}
	}
	doc.table([]string{"Statistic", "Duration (s)", "Distance (km)"}, cells,
		[]float64{0.4, 0.3, 0.3}, []string{"L", "R", "R"})
}
