package report

import (
	"math"
	"sort"

	"github.com/golang/geo/s2"

	"bikereport/internal/analytics"
)

const mapHeight = 120

// Station is a named location plotted on the station map
type Station struct {
	Name string
	Lat  float64
	Lon  float64
}

// Stations collects the distinct start and end stations of trips, sorted by name
func Stations(trips []analytics.Trip) []Station {
	seen := make(map[Station]struct{})
	var out []Station
	add := func(s Station) {
		if !isFinite(s.Lat) || !isFinite(s.Lon) {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, t := range trips {
		add(Station{Name: t.StartStation, Lat: t.StartLat, Lon: t.StartLon})
		add(Station{Name: t.EndStation, Lat: t.EndLat, Lon: t.EndLon})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		if out[i].Lat != out[j].Lat {
			return out[i].Lat < out[j].Lat
		}
		return out[i].Lon < out[j].Lon
	})
	return out
}

// Bounds returns the lat/lng rectangle enclosing every station
func Bounds(stations []Station) s2.Rect {
	rect := s2.EmptyRect()
	for _, s := range stations {
		rect = rect.AddPoint(s2.LatLngFromDegrees(s.Lat, s.Lon))
	}
	return rect
}

// stationMap plots stations on an equirectangular grid with equal scale on
// both axes at the center latitude
func (d *document) stationMap(stations []Station) {
	d.ensureSpace(mapHeight + 20)
	top := d.chartTitle("Station Locations")

	bounds := Bounds(stations)
	if bounds.IsEmpty() {
		d.noData(top)
		return
	}

	lo, hi := bounds.Lo(), bounds.Hi()
	center := bounds.Center()
	latMin, latMax := padRange(lo.Lat.Degrees(), hi.Lat.Degrees())
	lonMin, lonMax := padRange(lo.Lng.Degrees(), hi.Lng.Degrees())

	area := plotArea{
		x: marginSide + 18,
		y: top + 2,
		w: d.contentWidth() - 24,
		h: mapHeight - 20,
	}

	// Grow the shorter span so one degree of arc has the same length on both axes
	kx := math.Cos(center.Lat.Radians())
	if kx < 0.01 {
		kx = 0.01
	}
	latSpan := latMax - latMin
	lonSpan := (lonMax - lonMin) * kx
	if lonSpan/latSpan > area.w/area.h {
		grow := (lonSpan*area.h/area.w - latSpan) / 2
		latMin, latMax = latMin-grow, latMax+grow
	} else {
		grow := (latSpan*area.w/area.h/kx - (lonMax - lonMin)) / 2
		lonMin, lonMax = lonMin-grow, lonMax+grow
	}
	area.xMin, area.xMax = lonMin, lonMax
	area.yMin, area.yMax = latMin, latMax

	d.axes(area, "Longitude", "Latitude")

	d.pdf.SetFillColor(colorStation[0], colorStation[1], colorStation[2])
	for _, s := range stations {
		d.pdf.Circle(area.px(s.Lon), area.py(s.Lat), 0.8, "F")
	}
	d.pdf.SetY(area.y + area.h + 14)
}
