package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "bikereport/analytics"

// Engine turns a trip table into the report artifacts.
// It holds no state between runs; Analyze never modifies its input.
type Engine struct {
	logger   *slog.Logger
	topN     int
	distance DistanceFunc
}

// Option configures an Engine
type Option func(*Engine)

// WithTopN sets the number of rows kept in each ranking
func WithTopN(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.topN = n
		}
	}
}

// WithDistanceFunc replaces the geodesic distance calculation
func WithDistanceFunc(fn DistanceFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.distance = fn
		}
	}
}

// NewEngine creates an analytics engine
func NewEngine(logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		logger:   logger,
		topN:     DefaultTopN,
		distance: GeodesicKm,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze runs the full pipeline: self-loop removal, route labelling,
// popularity, distance, duration and summary statistics.
func (e *Engine) Analyze(ctx context.Context, table *Table) (*Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "analytics.Analyze",
		trace.WithAttributes(attribute.Int("trips.input", table.Len())))
	defer span.End()

	result, err := e.analyze(ctx, table)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("trips.cleaned", len(result.Data)),
		attribute.Int("routes.popular", len(result.PopularRoutes)),
	)
	return result, nil
}

func (e *Engine) analyze(ctx context.Context, table *Table) (*Result, error) {
	var columns []string
	if table != nil {
		columns = table.Columns
	}
	if err := RequireColumns(columns); err != nil {
		return nil, err
	}

	data := RemoveSelfLoops(table.Trips)
	removed := len(table.Trips) - len(data)
	LabelRoutes(data)

	popular := PopularRoutes(data, e.topN)

	if err := e.computeDistances(data); err != nil {
		return nil, err
	}
	distances := LongestDistances(data, e.topN)
	durations := RankDurations(AverageDurations(data), e.topN)
	summary := Summarize(data)

	e.logger.InfoContext(ctx, "Trip data analyzed",
		slog.Int("input_trips", len(table.Trips)),
		slog.Int("self_loops_removed", removed),
		slog.Int("trips", len(data)),
		slog.Int("popular_routes", len(popular)),
		slog.Int("distance_routes", len(distances)),
		slog.Int("duration_routes", len(durations)))

	return &Result{
		Data:             data,
		PopularRoutes:    popular,
		LongestDistances: distances,
		LongestDurations: durations,
		Summary:          summary,
	}, nil
}

// RequireColumns fails with a *MissingFieldError for the first required
// column absent from columns.
func RequireColumns(columns []string) error {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[c] = struct{}{}
	}
	for _, want := range RequiredColumns {
		if _, ok := present[want]; !ok {
			return &MissingFieldError{Column: want}
		}
	}
	return nil
}

// RemoveSelfLoops returns a copy of trips without the ones whose start and
// end station names are equal.
func RemoveSelfLoops(trips []Trip) []Trip {
	out := make([]Trip, 0, len(trips))
	for _, t := range trips {
		if !t.IsSelfLoop() {
			out = append(out, t)
		}
	}
	return out
}

// RouteLabel formats the route of a trip
func RouteLabel(start, end string) string {
	return start + RouteSeparator + end
}

// LabelRoutes sets Route on every trip in place
func LabelRoutes(trips []Trip) {
	for i := range trips {
		trips[i].Route = RouteLabel(trips[i].StartStation, trips[i].EndStation)
	}
}

// PopularRoutes counts trips per route and returns the n most frequent.
// Ties are ordered by route name.
func PopularRoutes(trips []Trip, n int) []RouteCount {
	counts := make(map[string]int)
	for _, t := range trips {
		counts[t.Route]++
	}

	out := make([]RouteCount, 0, len(counts))
	for route, c := range counts {
		out = append(out, RouteCount{Route: route, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Route < out[j].Route
	})

	return head(out, n)
}

// computeDistances sets DistanceKm on every trip. A null coordinate is an
// error; no default is substituted.
func (e *Engine) computeDistances(trips []Trip) error {
	for i := range trips {
		t := &trips[i]
		if err := checkCoordinates(*t); err != nil {
			return err
		}

		km, err := e.distance(t.StartLat, t.StartLon, t.EndLat, t.EndLon)
		if err != nil {
			var ce *CoordinateError
			if errors.As(err, &ce) {
				ce.Row = t.Row
				return ce
			}
			return fmt.Errorf("row %d: distance: %w", t.Row, err)
		}
		t.DistanceKm = km
	}
	return nil
}

func checkCoordinates(t Trip) error {
	coords := [...]struct {
		field string
		value float64
	}{
		{ColStartLatitude, t.StartLat},
		{ColStartLongitude, t.StartLon},
		{ColEndLatitude, t.EndLat},
		{ColEndLongitude, t.EndLon},
	}
	for _, c := range coords {
		if math.IsNaN(c.value) {
			return &CoordinateError{Row: t.Row, Field: c.field, Value: c.value}
		}
	}
	return nil
}

// LongestDistances returns the n longest distinct (route, distance) pairs.
// Ties are ordered by route name.
func LongestDistances(trips []Trip, n int) []RouteDistance {
	pairs := make([]RouteDistance, len(trips))
	for i, t := range trips {
		pairs[i] = RouteDistance{Route: t.Route, DistanceKm: t.DistanceKm}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].DistanceKm != pairs[j].DistanceKm {
			return pairs[i].DistanceKm > pairs[j].DistanceKm
		}
		return pairs[i].Route < pairs[j].Route
	})

	seen := make(map[RouteDistance]struct{}, len(pairs))
	out := make([]RouteDistance, 0, n)
	for _, p := range pairs {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
		if len(out) == n {
			break
		}
	}
	return out
}

// AverageDurations groups trips by route and computes the mean duration
// (null durations skipped) and the trip count of each group.
func AverageDurations(trips []Trip) []RouteDuration {
	type acc struct {
		sum   float64
		valid int
		trips int
	}
	groups := make(map[string]*acc)
	order := make([]string, 0)
	for _, t := range trips {
		g, ok := groups[t.Route]
		if !ok {
			g = &acc{}
			groups[t.Route] = g
			order = append(order, t.Route)
		}
		g.trips++
		if !math.IsNaN(t.Duration) {
			g.sum += t.Duration
			g.valid++
		}
	}

	sort.Strings(order)
	out := make([]RouteDuration, 0, len(order))
	for _, route := range order {
		g := groups[route]
		avg := math.NaN()
		if g.valid > 0 {
			avg = g.sum / float64(g.valid)
		}
		out = append(out, RouteDuration{Route: route, AvgDuration: avg, TripCount: g.trips})
	}
	return out
}

// RankDurations sorts the groups by mean duration, longest first, and keeps n.
// Groups without a mean sort last; ties are ordered by route name.
func RankDurations(groups []RouteDuration, n int) []RouteDuration {
	out := make([]RouteDuration, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].AvgDuration, out[j].AvgDuration
		switch {
		case math.IsNaN(a) && math.IsNaN(b):
			return out[i].Route < out[j].Route
		case math.IsNaN(a):
			return false
		case math.IsNaN(b):
			return true
		case a != b:
			return a > b
		default:
			return out[i].Route < out[j].Route
		}
	})
	return head(out, n)
}

func head[T any](rows []T, n int) []T {
	if n >= 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}
