// Package geo provides great-circle helpers used by the route planner.
package geo

import (
	"math"

	"github.com/kilianp07/evroute/core/model"
)

// EarthRadiusKm is the mean Earth radius used by every distance computation.
const EarthRadiusKm = 6371.0

// DistanceKm returns the haversine distance between a and b in kilometres.
func DistanceKm(a, b model.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// Box is a lat/lon rectangle in degrees.
type Box struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// Min returns the lower corner as [lon, lat] for spatial indexes.
func (b Box) Min() [2]float64 { return [2]float64{b.MinLon, b.MinLat} }

// Max returns the upper corner as [lon, lat] for spatial indexes.
func (b Box) Max() [2]float64 { return [2]float64{b.MaxLon, b.MaxLat} }

// BoundingBox returns a box containing every point within radiusKm of center.
// Near the poles, or when the box would cross the antimeridian, the longitude
// span is widened to the whole globe.
func BoundingBox(center model.Coordinate, radiusKm float64) Box {
	if radiusKm < 0 {
		radiusKm = 0
	}
	dLat := radiusKm / EarthRadiusKm * 180 / math.Pi
	box := Box{
		MinLat: math.Max(-90, center.Lat-dLat),
		MaxLat: math.Min(90, center.Lat+dLat),
		MinLon: -180,
		MaxLon: 180,
	}
	if box.MinLat == -90 || box.MaxLat == 90 {
		return box
	}
	// widest parallel inside the box bounds the longitude delta
	maxAbsLat := math.Max(math.Abs(box.MinLat), math.Abs(box.MaxLat))
	cos := math.Cos(maxAbsLat * math.Pi / 180)
	if cos <= 1e-9 {
		return box
	}
	dLon := dLat / cos
	if dLon >= 180 || center.Lon-dLon < -180 || center.Lon+dLon > 180 {
		return box
	}
	box.MinLon = center.Lon - dLon
	box.MaxLon = center.Lon + dLon
	return box
}
