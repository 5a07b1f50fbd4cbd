// Package geo computes great-circle distances and applies radius
// filtering to session candidates.
package geo

import (
	"math"

	"github.com/courtside/courtside/internal/domain/filter"
	"github.com/courtside/courtside/internal/domain/model"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometers between
// two coordinates given in degrees. Coordinate range validation is a
// caller responsibility; out-of-range inputs yield meaningless output.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// RecordDistanceKm returns the distance from the filter origin to the
// record. The second return is false when no geo filter is active or
// the record lacks coordinates.
func RecordDistanceKm(rec model.SessionRecord, f filter.Filter) (float64, bool) {
	if !f.HasGeo() || !rec.HasCoordinates() {
		return 0, false
	}
	return DistanceKm(*f.Latitude, *f.Longitude, *rec.Latitude, *rec.Longitude), true
}

// WithinRadius reports whether rec passes the filter's radius check.
// With no geo filter every record passes. With a geo filter active,
// records lacking coordinates are excluded.
func WithinRadius(rec model.SessionRecord, f filter.Filter) bool {
	if !f.HasGeo() {
		return true
	}
	d, ok := RecordDistanceKm(rec, f)
	return ok && d <= f.RadiusKm
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
