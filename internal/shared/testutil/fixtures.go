package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"
)

// TripHeader is the column order of the public trip export
var TripHeader = []string{
	"started_at", "ended_at", "duration",
	"start_station_id", "start_station_name",
	"start_station_latitude", "start_station_longitude",
	"end_station_id", "end_station_name",
	"end_station_latitude", "end_station_longitude",
}

// TripRecord is one trip as served by the dataset endpoint
type TripRecord struct {
	StartedAt string   `json:"started_at"`
	EndedAt   string   `json:"ended_at"`
	Duration  float64  `json:"duration"`
	StartID   string   `json:"start_station_id"`
	StartName string   `json:"start_station_name"`
	StartLat  *float64 `json:"start_station_latitude"`
	StartLon  *float64 `json:"start_station_longitude"`
	EndID     string   `json:"end_station_id"`
	EndName   string   `json:"end_station_name"`
	EndLat    *float64 `json:"end_station_latitude"`
	EndLon    *float64 `json:"end_station_longitude"`
}

// Coord returns a pointer for the coordinate fields of TripRecord
func Coord(v float64) *float64 {
	return &v
}

// BergenTrips returns a small dataset of Bergen city bike trips: two
// trips on one route, one self-loop and one trip on the reverse route
func BergenTrips() []TripRecord {
	return []TripRecord{
		{
			StartedAt: "2024-09-01 06:12:03", EndedAt: "2024-09-01 06:19:03", Duration: 420,
			StartID: "368", StartName: "Møhlenpris", StartLat: Coord(60.3837), StartLon: Coord(5.3175),
			EndID: "217", EndName: "Festplassen", EndLat: Coord(60.3918), EndLon: Coord(5.3259),
		},
		{
			StartedAt: "2024-09-01 07:40:11", EndedAt: "2024-09-01 07:46:31", Duration: 380,
			StartID: "368", StartName: "Møhlenpris", StartLat: Coord(60.3837), StartLon: Coord(5.3175),
			EndID: "217", EndName: "Festplassen", EndLat: Coord(60.3918), EndLon: Coord(5.3259),
		},
		{
			StartedAt: "2024-09-01 08:02:45", EndedAt: "2024-09-01 08:17:45", Duration: 900,
			StartID: "33", StartName: "Nygårdsparken", StartLat: Coord(60.3847), StartLon: Coord(5.3336),
			EndID: "33", EndName: "Nygårdsparken", EndLat: Coord(60.3847), EndLon: Coord(5.3336),
		},
		{
			StartedAt: "2024-09-01 09:30:00", EndedAt: "2024-09-01 09:40:10", Duration: 610,
			StartID: "217", StartName: "Festplassen", StartLat: Coord(60.3918), StartLon: Coord(5.3259),
			EndID: "33", EndName: "Nygårdsparken", EndLat: Coord(60.3847), EndLon: Coord(5.3336),
		},
	}
}

// TripsJSON encodes records the way the dataset endpoint serves them
func TripsJSON(t *testing.T, records []TripRecord) []byte {
	t.Helper()
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("encode trips: %v", err)
	}
	return data
}

// WriteWorkbook writes header and rows to the first sheet of a new
// workbook at path. A nil cell is left empty.
func WriteWorkbook(t *testing.T, path string, header []string, rows [][]any) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		t.Fatalf("write header: %v", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("write row %d: %v", i, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create workbook directory: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

// WriteLogo writes a small PNG to dir/name and returns its path
func WriteLogo(t *testing.T, dir, name string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for x := 0; x < 16; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 0xd0, G: 0x21, B: 0x2c, A: 0xff})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode logo: %v", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("create logo directory: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write logo: %v", err)
	}
	return path
}
