package area

import (
	"fmt"
	"math"

	"github.com/areaforecast/areaforecast/internal/forecast"
	"github.com/areaforecast/areaforecast/internal/geo"
)

// Anchor point names.
const (
	PointNE     = "NE"
	PointNW     = "NW"
	PointSW     = "SW"
	PointSE     = "SE"
	PointCenter = "Center"
)

const anchorCount = 5

// GenerateSamplingPoints returns up to count named points inside r.
//
// With a budget of at least five, the four corners and the center come first
// (NE, NW, SW, SE, Center). The remaining budget is spread over an interior
// grid walked row-major. Budgets below five skip the anchors entirely.
// The caller clamps count.
func GenerateSamplingPoints(r geo.Rectangle, count int) []forecast.GeoPoint {
	if count <= 0 {
		return nil
	}

	points := make([]forecast.GeoPoint, 0, count)
	budget := count

	if count >= anchorCount {
		centerLat, centerLon := r.Center()
		points = append(points,
			forecast.GeoPoint{Latitude: r.LatTopRight, Longitude: r.LonTopRight, Name: PointNE},
			forecast.GeoPoint{Latitude: r.LatTopRight, Longitude: r.LonBottomLeft, Name: PointNW},
			forecast.GeoPoint{Latitude: r.LatBottomLeft, Longitude: r.LonBottomLeft, Name: PointSW},
			forecast.GeoPoint{Latitude: r.LatBottomLeft, Longitude: r.LonTopRight, Name: PointSE},
			forecast.GeoPoint{Latitude: centerLat, Longitude: centerLon, Name: PointCenter},
		)
		budget -= anchorCount
	}

	if budget <= 0 {
		return points
	}

	rows := int(math.Ceil(math.Sqrt(float64(budget))))
	cols := int(math.Ceil(float64(budget) / float64(rows)))

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if len(points) >= count {
				return points
			}

			latRatio := float64(row+1) / float64(rows+1)
			lonRatio := float64(col+1) / float64(cols+1)

			points = append(points, forecast.GeoPoint{
				Latitude:  r.LatBottomLeft + (r.LatTopRight-r.LatBottomLeft)*latRatio,
				Longitude: r.LonBottomLeft + (r.LonTopRight-r.LonBottomLeft)*lonRatio,
				Name:      fmt.Sprintf("Punto %d-%d", row+1, col+1),
			})
		}
	}

	return points
}
