package analytics

import "math"

// Column names of the trip dataset
const (
	ColStartStationName = "start_station_name"
	ColEndStationName   = "end_station_name"
	ColStartLatitude    = "start_station_latitude"
	ColStartLongitude   = "start_station_longitude"
	ColEndLatitude      = "end_station_latitude"
	ColEndLongitude     = "end_station_longitude"
	ColDuration         = "duration"
)

// RequiredColumns lists the columns the engine reads, in canonical order
var RequiredColumns = []string{
	ColStartStationName,
	ColEndStationName,
	ColStartLatitude,
	ColStartLongitude,
	ColEndLatitude,
	ColEndLongitude,
	ColDuration,
}

// DefaultTopN is the number of rows kept in every ranking
const DefaultTopN = 10

// RouteSeparator joins start and end station names into a route label
const RouteSeparator = " to "

// Trip is one row of the dataset. Null numeric cells are NaN.
type Trip struct {
	Row          int // position in the source dataset, 0-based
	StartStation string
	EndStation   string
	StartLat     float64
	StartLon     float64
	EndLat       float64
	EndLon       float64
	Duration     float64 // seconds

	// Derived during analysis
	Route      string
	DistanceKm float64
}

// IsSelfLoop reports whether the trip starts and ends at the same station
func (t Trip) IsSelfLoop() bool {
	return t.StartStation == t.EndStation
}

// Table is the in-memory trip dataset together with the header it was read with
type Table struct {
	Columns []string
	Trips   []Trip
}

// NewTable builds a table carrying every required column
func NewTable(trips []Trip) *Table {
	cols := make([]string, len(RequiredColumns))
	copy(cols, RequiredColumns)
	return &Table{Columns: cols, Trips: trips}
}

// Len returns the number of trips
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Trips)
}

// RouteCount is a row of the popular routes table
type RouteCount struct {
	Route string `json:"route"`
	Count int    `json:"count"`
}

// RouteDistance is a row of the distance ranking
type RouteDistance struct {
	Route      string  `json:"route"`
	DistanceKm float64 `json:"distance_km"`
}

// RouteDuration is a row of the duration ranking
type RouteDuration struct {
	Route       string  `json:"route"`
	AvgDuration float64 `json:"avg_duration"`
	TripCount   int     `json:"trip_count"`
}

// Stats are the descriptive statistics of one numeric column.
// Undefined values are NaN.
type Stats struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
	Max      float64 `json:"max"`
	Min      float64 `json:"min"`
	P25      float64 `json:"p25"`
	P50      float64 `json:"p50"`
	P75      float64 `json:"p75"`
}

// undefinedStats returns Stats with every field NaN
func undefinedStats() Stats {
	nan := math.NaN()
	return Stats{Mean: nan, Variance: nan, StdDev: nan, Max: nan, Min: nan, P25: nan, P50: nan, P75: nan}
}

// StatisticNames is the row order of the summary table
var StatisticNames = []string{
	"Mean",
	"Variance",
	"Standard Deviation",
	"Max",
	"Min",
	"25th Percentile",
	"50th Percentile",
	"75th Percentile",
}

// values returns the statistics in StatisticNames order
func (s Stats) values() []float64 {
	return []float64{s.Mean, s.Variance, s.StdDev, s.Max, s.Min, s.P25, s.P50, s.P75}
}

// SummaryRow is one line of the summary statistics table
type SummaryRow struct {
	Statistic  string  `json:"statistic"`
	Duration   float64 `json:"duration"`
	DistanceKm float64 `json:"distance_km"`
}

// Summary holds the statistics for trip duration and distance
type Summary struct {
	Duration Stats `json:"duration"`
	Distance Stats `json:"distance_km"`
}

// Rows lays the summary out as a table, one row per statistic
func (s Summary) Rows() []SummaryRow {
	dur := s.Duration.values()
	dist := s.Distance.values()
	rows := make([]SummaryRow, len(StatisticNames))
	for i, name := range StatisticNames {
		rows[i] = SummaryRow{Statistic: name, Duration: dur[i], DistanceKm: dist[i]}
	}
	return rows
}

// Result holds the five artifacts of one analysis run
type Result struct {
	Data             []Trip          // cleaned trips with Route and DistanceKm set
	PopularRoutes    []RouteCount    // top routes by trip count
	LongestDistances []RouteDistance // top distinct (route, distance) pairs
	LongestDurations []RouteDuration // top routes by mean duration
	Summary          Summary
}
