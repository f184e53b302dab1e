package analytics

import (
	"math"

	"github.com/tidwall/geodesic"
)

// DistanceFunc returns the distance in kilometers between two points
type DistanceFunc func(lat1, lon1, lat2, lon2 float64) (float64, error)

// GeodesicKm returns the geodesic distance in kilometers between two points
// on the WGS-84 ellipsoid (Karney's algorithm, accurate for antipodal points
// too). Null (NaN) or out-of-range latitudes return ErrInvalidCoordinate.
func GeodesicKm(lat1, lon1, lat2, lon2 float64) (float64, error) {
	fields := [...]struct {
		name  string
		value float64
		limit float64
	}{
		{ColStartLatitude, lat1, 90},
		{ColStartLongitude, lon1, math.MaxFloat64},
		{ColEndLatitude, lat2, 90},
		{ColEndLongitude, lon2, math.MaxFloat64},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || math.Abs(f.value) > f.limit {
			return 0, &CoordinateError{Row: -1, Field: f.name, Value: f.value}
		}
	}

	if lat1 == lat2 && lon1 == lon2 {
		return 0, nil
	}

	var meters float64
	geodesic.WGS84.Inverse(lat1, lon1, lat2, lon2, &meters, nil, nil)
	return meters / 1000, nil
}
