package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"bikereport/internal/analytics"
)

// numericColumns are typed as floats; anything unparsable becomes NaN
var numericColumns = map[string]series.Type{
	analytics.ColStartLatitude:  series.Float,
	analytics.ColStartLongitude: series.Float,
	analytics.ColEndLatitude:    series.Float,
	analytics.ColEndLongitude:   series.Float,
	analytics.ColDuration:       series.Float,
}

// Load reads the trip workbook at path into a table. The first sheet is used
// and its first row is the header.
func Load(path string) (*analytics.Table, error) {
	return LoadWithLogger(path, slog.Default())
}

// LoadWithLogger is Load with an explicit logger
func LoadWithLogger(path string, logger *slog.Logger) (*analytics.Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat dataset: %w", err)
	}

	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	if err := analytics.RequireColumns(header); err != nil {
		return nil, err
	}

	columns := make([]string, len(header))
	copy(columns, header)

	// gota refuses a frame without data rows
	if len(rows) == 1 {
		logger.Info("Dataset loaded", slog.String("path", path), slog.Int("trips", 0))
		return &analytics.Table{Columns: columns, Trips: []analytics.Trip{}}, nil
	}

	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = fitRow(row, len(header))
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
		dataframe.WithTypes(numericColumns),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to build trip frame: %w", df.Err)
	}

	trips, err := tripsFromFrame(df)
	if err != nil {
		return nil, err
	}

	for name := range numericColumns {
		if missing := countNaN(df.Col(name)); missing > 0 {
			logger.Warn("Dataset column has empty values",
				slog.String("column", name),
				slog.Int("count", missing))
		}
	}
	logger.Info("Dataset loaded",
		slog.String("path", path),
		slog.Int("trips", len(trips)),
		slog.Int("columns", len(columns)))

	return &analytics.Table{Columns: columns, Trips: trips}, nil
}

func readRows(path string) ([][]string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// fitRow pads or truncates row to width. excelize drops trailing empty cells.
func fitRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

func tripsFromFrame(df dataframe.DataFrame) ([]analytics.Trip, error) {
	cols := make(map[string]series.Series, len(analytics.RequiredColumns))
	for _, name := range analytics.RequiredColumns {
		col := df.Col(name)
		if col.Err != nil {
			return nil, fmt.Errorf("column %q: %w", name, col.Err)
		}
		cols[name] = col
	}

	startNames := cols[analytics.ColStartStationName].Records()
	endNames := cols[analytics.ColEndStationName].Records()
	startLat := cols[analytics.ColStartLatitude].Float()
	startLon := cols[analytics.ColStartLongitude].Float()
	endLat := cols[analytics.ColEndLatitude].Float()
	endLon := cols[analytics.ColEndLongitude].Float()
	duration := cols[analytics.ColDuration].Float()

	trips := make([]analytics.Trip, df.Nrow())
	for i := range trips {
		trips[i] = analytics.Trip{
			Row:          i,
			StartStation: startNames[i],
			EndStation:   endNames[i],
			StartLat:     startLat[i],
			StartLon:     startLon[i],
			EndLat:       endLat[i],
			EndLon:       endLon[i],
			Duration:     duration[i],
		}
	}
	return trips, nil
}

func countNaN(s series.Series) int {
	n := 0
	for _, na := range s.IsNaN() {
		if na {
			n++
		}
	}
	return n
}
