// Package analytics computes the trip report artifacts from a table of
// bicycle trips.
//
// The Engine removes self-loop trips, labels each trip with its route,
// counts trips per route, computes the WGS-84 geodesic distance of every
// trip, ranks routes by distance and mean duration, and summarizes duration
// and distance. Rankings are sorted by value and then by route name, so the
// same input always yields the same output.
//
// Null numbers are carried as NaN. A null coordinate is an error
// (ErrInvalidCoordinate); a null duration is skipped by the means and
// statistics.
package analytics
