// Package geo provides coordinate validation, rectangle helpers and
// great-circle distances.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for haversine distances.
const EarthRadiusKm = 6371.0

// ValidateCoordinate reports whether lat is in [-90,90] and lon in [-180,180].
func ValidateCoordinate(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Rectangle is an axis-aligned area described by its top-right and
// bottom-left corners.
type Rectangle struct {
	LatTopRight   float64 `json:"latTopRight"`
	LonTopRight   float64 `json:"lonTopRight"`
	LatBottomLeft float64 `json:"latBottomLeft"`
	LonBottomLeft float64 `json:"lonBottomLeft"`
}

// ValidateRectangle reports whether both corners are valid coordinates and
// the top-right corner is not below or left of the bottom-left one.
// Degenerate rectangles with equal corners are accepted.
func ValidateRectangle(r Rectangle) bool {
	if !ValidateCoordinate(r.LatTopRight, r.LonTopRight) {
		return false
	}
	if !ValidateCoordinate(r.LatBottomLeft, r.LonBottomLeft) {
		return false
	}
	return r.LatTopRight >= r.LatBottomLeft && r.LonTopRight >= r.LonBottomLeft
}

// Center returns the midpoint of both axes.
func (r Rectangle) Center() (lat, lon float64) {
	return (r.LatTopRight + r.LatBottomLeft) / 2, (r.LonTopRight + r.LonBottomLeft) / 2
}

// WidthKm is the distance along the bottom edge.
func (r Rectangle) WidthKm() float64 {
	return DistanceKm(r.LatBottomLeft, r.LonBottomLeft, r.LatBottomLeft, r.LonTopRight)
}

// HeightKm is the distance along the left edge.
func (r Rectangle) HeightKm() float64 {
	return DistanceKm(r.LatBottomLeft, r.LonBottomLeft, r.LatTopRight, r.LonBottomLeft)
}

// DistanceKm calculates the haversine distance between two points in kilometers.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Round1 rounds to one decimal place, halves to even.
func Round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
