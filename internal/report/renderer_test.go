package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikereport/internal/analytics"
	"bikereport/internal/config"
)

func writeLogo(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x * 16), B: uint8(y * 16), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	path := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func sampleResult(t *testing.T, n int) *analytics.Result {
	t.Helper()
	names := []string{"Nøstet", "Møhlenpris", "Festplassen", "Torgallmenningen", "Bryggen",
		"Damsgårdsveien 71 ved Det Akademiske Kvarter og Studentsenteret"}
	var trips []analytics.Trip
	for i := 0; i < n; i++ {
		s, e := i%len(names), (i*7+1)%len(names)
		trips = append(trips, analytics.Trip{
			Row:          i,
			StartStation: names[s],
			EndStation:   names[e],
			StartLat:     60.38 + float64(s)*0.004,
			StartLon:     5.32 + float64(s)*0.003,
			EndLat:       60.38 + float64(e)*0.004,
			EndLon:       5.32 + float64(e)*0.003,
			Duration:     float64(300 + (i*37)%900),
		})
	}
	result, err := analytics.NewEngine(nil).Analyze(context.Background(), analytics.NewTable(trips))
	require.NoError(t, err)
	return result
}

func fixedClock() time.Time {
	return time.Date(2024, 9, 30, 10, 0, 0, 0, time.UTC)
}

func newTestRenderer(logo string, opts ...Option) *Renderer {
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	return NewRenderer(config.Default().Report, logo, nil, append(opts, WithOpener(nil))...)
}

func TestRenderWritesPDF(t *testing.T) {
	logo := writeLogo(t)
	out := filepath.Join(t.TempDir(), "report.pdf")

	var opened []string
	r := NewRenderer(config.Default().Report, logo, nil,
		WithClock(fixedClock),
		WithOpener(OpenerFunc(func(_ context.Context, path string) error {
			opened = append(opened, path)
			return nil
		})))

	require.NoError(t, r.Render(context.Background(), sampleResult(t, 200), "user1", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.True(t, bytes.Contains(data, []byte("%%EOF")))
	assert.Equal(t, []string{out}, opened)
}

func TestBuildIsStableForSameInput(t *testing.T) {
	logo := writeLogo(t)
	result := sampleResult(t, 50)
	r := newTestRenderer(logo)

	first, err := r.Build(result, "user1")
	require.NoError(t, err)
	second, err := r.Build(result, "user1")
	require.NoError(t, err)
	assert.Equal(t, len(first), len(second))
}

func TestRenderEmptyResult(t *testing.T) {
	logo := writeLogo(t)
	result, err := analytics.NewEngine(nil).Analyze(context.Background(), analytics.NewTable(nil))
	require.NoError(t, err)

	data, err := newTestRenderer(logo).Build(result, "user1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRenderMissingLogo(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "report.pdf")
	logo := filepath.Join(dir, "missing.jpg")

	err := newTestRenderer(logo).Render(context.Background(), sampleResult(t, 10), "user1", out)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAssetMissing))
	var ae *AssetError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, logo, ae.Path)
	assert.NoFileExists(t, out, "no partial report is written")
}

func TestRenderUnreadableLogo(t *testing.T) {
	dir := t.TempDir()
	logo := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(logo, []byte("not an image"), 0644))

	_, err := newTestRenderer(logo).Build(sampleResult(t, 10), "user1")
	assert.ErrorIs(t, err, ErrAssetMissing)
}

func TestRenderUnwritableOutput(t *testing.T) {
	logo := writeLogo(t)
	out := filepath.Join(t.TempDir(), "missing-dir", "report.pdf")

	err := newTestRenderer(logo).Render(context.Background(), sampleResult(t, 10), "user1", out)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutputNotWritable))
}

func TestRenderViewerFailureIsNotFatal(t *testing.T) {
	logo := writeLogo(t)
	out := filepath.Join(t.TempDir(), "report.pdf")
	r := NewRenderer(config.Default().Report, logo, nil,
		WithOpener(OpenerFunc(func(context.Context, string) error {
			return fmt.Errorf("no display")
		})))

	require.NoError(t, r.Render(context.Background(), sampleResult(t, 10), "user1", out))
	assert.FileExists(t, out)
}

func TestRenderNilResult(t *testing.T) {
	_, err := newTestRenderer(writeLogo(t)).Build(nil, "user1")
	assert.Error(t, err)
}

func TestStations(t *testing.T) {
	stations := Stations([]analytics.Trip{
		{StartStation: "B", EndStation: "A", StartLat: 60.1, StartLon: 5.1, EndLat: 60.2, EndLon: 5.2},
		{StartStation: "A", EndStation: "B", StartLat: 60.2, StartLon: 5.2, EndLat: 60.1, EndLon: 5.1},
		{StartStation: "C", EndStation: "A", StartLat: math.NaN(), StartLon: 5.3, EndLat: 60.2, EndLon: 5.2},
	})

	assert.Equal(t, []Station{
		{Name: "A", Lat: 60.2, Lon: 5.2},
		{Name: "B", Lat: 60.1, Lon: 5.1},
	}, stations)

	bounds := Bounds(stations)
	assert.InDelta(t, 60.1, bounds.Lo().Lat.Degrees(), 1e-9)
	assert.InDelta(t, 5.2, bounds.Hi().Lng.Degrees(), 1e-9)
	assert.True(t, Bounds(nil).IsEmpty())
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "54.972", FormatNumber(54.97227, 3))
	assert.Equal(t, "600", FormatNumber(600, 0))
	assert.Equal(t, "1.50", FormatNumber(1.5, 2))
	assert.Equal(t, "NaN", FormatNumber(math.NaN(), 2))
	assert.Equal(t, "12", FormatCount(12))
}

func TestViewerCommand(t *testing.T) {
	name, args := viewerCommand("linux", "/tmp/r.pdf")
	assert.Equal(t, "xdg-open", name)
	assert.Equal(t, []string{"/tmp/r.pdf"}, args)

	name, _ = viewerCommand("darwin", "/tmp/r.pdf")
	assert.Equal(t, "open", name)

	name, args = viewerCommand("windows", `C:\r.pdf`)
	assert.Equal(t, "rundll32", name)
	assert.Equal(t, `C:\r.pdf`, args[1])
}
