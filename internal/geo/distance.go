// Package geo computes great-circle distances between WGS-84 coordinates.
package geo

import "math"

// Unit selects the radius used to scale the central angle.
type Unit int

const (
	Miles Unit = iota
	Kilometers
)

// Mean earth radii.
const (
	earthRadiusMiles = 3956.0
	earthRadiusKm    = 6371.0
)

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Distance returns the haversine distance between a and b. Out-of-range
// coordinates are not rejected, but the result always lies in [0, pi*R].
func Distance(a, b Point, unit Unit) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	h = math.Max(0, math.Min(h, 1))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return radius(unit) * c
}

func radius(unit Unit) float64 {
	if unit == Kilometers {
		return earthRadiusKm
	}
	return earthRadiusMiles
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
