package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"

	"bikereport/internal/analytics"
	"bikereport/internal/config"
)

// SheetName is the worksheet the trip rows are written to
const SheetName = "trips"

// Fetcher downloads the trip dataset and stores it as a workbook
type Fetcher struct {
	client   *http.Client
	rowLimit int
	fileName string
	logger   *slog.Logger
}

// NewFetcher creates a fetcher from the dataset configuration
func NewFetcher(cfg config.DatasetConfig, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = config.DefaultHTTPTimeout
	}
	rowLimit := cfg.RowLimit
	if rowLimit <= 0 {
		rowLimit = config.DefaultRowLimit
	}
	fileName := cfg.FileName
	if fileName == "" {
		fileName = config.DatasetFileName
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		rowLimit: rowLimit,
		fileName: fileName,
		logger:   logger,
	}
}

// WithClient replaces the HTTP client
func (f *Fetcher) WithClient(client *http.Client) *Fetcher {
	f.client = client
	return f
}

// Fetch downloads url, keeps the first rows up to the row limit and writes
// them to dir as a workbook. It returns the path of the written file.
// Nothing is written when any step fails.
func (f *Fetcher) Fetch(ctx context.Context, url, dir string) (string, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: url, Code: resp.StatusCode}
	}

	records, err := decodeRecords(resp.Body)
	if err != nil {
		return "", err
	}
	total := len(records)
	if len(records) > f.rowLimit {
		records = records[:f.rowLimit]
	}

	path := filepath.Join(dir, f.fileName)
	if err := writeWorkbook(path, records); err != nil {
		return "", err
	}

	f.logger.InfoContext(ctx, "Dataset saved",
		slog.String("url", url),
		slog.String("path", path),
		slog.Int("records_received", total),
		slog.Int("records_saved", len(records)),
		slog.Duration("duration", time.Since(start)))

	return path, nil
}

func decodeRecords(body io.Reader) ([]map[string]any, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	for i, r := range records {
		if r == nil {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrInvalidPayload, i)
		}
	}
	return records, nil
}

// Columns returns the header for records: the trip columns first in their
// canonical order, then every other key sorted.
func Columns(records []map[string]any) []string {
	columns := make([]string, 0, len(analytics.RequiredColumns))
	seen := make(map[string]struct{})
	for _, c := range analytics.RequiredColumns {
		columns = append(columns, c)
		seen[c] = struct{}{}
	}

	var extra []string
	for _, r := range records {
		for k := range r {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	return append(columns, extra...)
}

func writeWorkbook(path string, records []map[string]any) error {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName(wb.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	sw, err := wb.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet writer: %w", err)
	}

	columns := Columns(records)
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]any, len(columns))
	for i, r := range records {
		for j, c := range columns {
			row[j] = cellValue(r[c])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush workbook: %w", err)
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		return fmt.Errorf("failed to encode workbook: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create dataset directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	return nil
}

// cellValue converts a decoded JSON value to something excelize can store.
// Nested values are kept as their JSON text.
func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case string, bool:
		return val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
