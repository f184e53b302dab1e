package exporter

import (
	"fmt"
	"log/slog"

	"bikereport/internal/analytics"
)

// Artifact file names
const (
	PopularRoutesFile    = "popular_routes.csv"
	LongestDistancesFile = "longest_distances.csv"
	LongestDurationsFile = "longest_durations.csv"
	SummaryFile          = "summary_statistics.csv"
	TripsFile            = "trips.csv"
)

// ArtifactExporter writes the analysis tables as CSV files
type ArtifactExporter struct {
	writer *CSVWriter
	logger *slog.Logger
}

// NewArtifactExporter creates an exporter writing through w
func NewArtifactExporter(w *CSVWriter, logger *slog.Logger) *ArtifactExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtifactExporter{writer: w, logger: logger}
}

// Export writes every table of result and returns the files written
func (e *ArtifactExporter) Export(result *analytics.Result) ([]string, error) {
	if result == nil {
		return nil, fmt.Errorf("no analysis result to export")
	}

	steps := []struct {
		file  string
		write func(string) error
	}{
		{PopularRoutesFile, func(f string) error { return e.writePopular(f, result.PopularRoutes) }},
		{LongestDistancesFile, func(f string) error { return e.writeDistances(f, result.LongestDistances) }},
		{LongestDurationsFile, func(f string) error { return e.writeDurations(f, result.LongestDurations) }},
		{SummaryFile, func(f string) error { return e.writeSummary(f, result.Summary) }},
		{TripsFile, func(f string) error { return e.writeTrips(f, result.Data) }},
	}

	files := make([]string, 0, len(steps))
	for _, step := range steps {
		if err := step.write(step.file); err != nil {
			return files, fmt.Errorf("failed to export %s: %w", step.file, err)
		}
		files = append(files, e.writer.resolvePath(step.file))
	}

	e.logger.Info("Analysis tables exported", slog.Int("files", len(files)))
	return files, nil
}

func (e *ArtifactExporter) writePopular(file string, rows []analytics.RouteCount) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{r.Route, formatInt(r.Count)}
	}
	return e.writer.WriteSimpleCSV(file, []string{"route", "count"}, records)
}

func (e *ArtifactExporter) writeDistances(file string, rows []analytics.RouteDistance) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{r.Route, formatFloat(r.DistanceKm, 6)}
	}
	return e.writer.WriteSimpleCSV(file, []string{"route", "distance_km"}, records)
}

func (e *ArtifactExporter) writeDurations(file string, rows []analytics.RouteDuration) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{r.Route, formatFloat(r.AvgDuration, 2), formatInt(r.TripCount)}
	}
	return e.writer.WriteSimpleCSV(file, []string{"route", "avg_duration", "trip_count"}, records)
}

func (e *ArtifactExporter) writeSummary(file string, s analytics.Summary) error {
	rows := s.Rows()
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{r.Statistic, formatFloat(r.Duration, 4), formatFloat(r.DistanceKm, 6)}
	}
	return e.writer.WriteSimpleCSV(file, []string{"statistic", "duration", "distance_km"}, records)
}

// writeTrips streams the cleaned trip table
func (e *ArtifactExporter) writeTrips(file string, trips []analytics.Trip) error {
	headers := append(append([]string{}, analytics.RequiredColumns...), "route", "distance_km")
	sw, err := e.writer.CreateStreamWriter(file, headers)
	if err != nil {
		return err
	}

	for _, t := range trips {
		record := []string{
			t.StartStation,
			t.EndStation,
			formatFloat(t.StartLat, 6),
			formatFloat(t.StartLon, 6),
			formatFloat(t.EndLat, 6),
			formatFloat(t.EndLon, 6),
			formatFloat(t.Duration, 3),
			t.Route,
			formatFloat(t.DistanceKm, 6),
		}
		if err := sw.WriteRecord(record); err != nil {
			sw.Close()
			return err
		}
	}
	return sw.Close()
}
