package area_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/areaforecast/areaforecast/internal/area"
	"github.com/areaforecast/areaforecast/internal/geo"
)

var testRect = geo.Rectangle{LatTopRight: 10, LonTopRight: 10, LatBottomLeft: 0, LonBottomLeft: 0}

func TestGenerateSamplingPoints_AnchorsOnly(t *testing.T) {
	points := area.GenerateSamplingPoints(testRect, 5)
	require.Len(t, points, 5)

	expected := []struct {
		name string
		lat  float64
		lon  float64
	}{
		{area.PointNE, 10, 10},
		{area.PointNW, 10, 0},
		{area.PointSW, 0, 0},
		{area.PointSE, 0, 10},
		{area.PointCenter, 5, 5},
	}

	for i, e := range expected {
		assert.Equal(t, e.name, points[i].Name)
		assert.Equal(t, e.lat, points[i].Latitude)
		assert.Equal(t, e.lon, points[i].Longitude)
	}
}

func TestGenerateSamplingPoints_SmallBudgetSkipsAnchors(t *testing.T) {
	points := area.GenerateSamplingPoints(testRect, 3)
	require.Len(t, points, 3)

	assert.Equal(t, "Punto 1-1", points[0].Name)
	assert.Equal(t, "Punto 1-2", points[1].Name)
	assert.Equal(t, "Punto 2-1", points[2].Name)

	assert.InDelta(t, 10.0/3, points[0].Latitude, 1e-9)
	assert.InDelta(t, 10.0/3, points[0].Longitude, 1e-9)
	assert.InDelta(t, 20.0/3, points[1].Longitude, 1e-9)
	assert.InDelta(t, 20.0/3, points[2].Latitude, 1e-9)
}

func TestGenerateSamplingPoints_SinglePoint(t *testing.T) {
	points := area.GenerateSamplingPoints(testRect, 1)
	require.Len(t, points, 1)

	assert.Equal(t, "Punto 1-1", points[0].Name)
	assert.Equal(t, 5.0, points[0].Latitude)
	assert.Equal(t, 5.0, points[0].Longitude)
}

func TestGenerateSamplingPoints_AnchorsThenGrid(t *testing.T) {
	points := area.GenerateSamplingPoints(testRect, 7)
	require.Len(t, points, 7)

	assert.Equal(t, area.PointCenter, points[4].Name)
	// remaining budget 2: two rows, one column
	assert.Equal(t, "Punto 1-1", points[5].Name)
	assert.Equal(t, "Punto 2-1", points[6].Name)
	assert.Equal(t, 5.0, points[5].Longitude)
	assert.InDelta(t, 10.0/3, points[5].Latitude, 1e-9)
}

func TestGenerateSamplingPoints_NeverExceedsBudget(t *testing.T) {
	for n := 1; n <= area.MaxSamplingPoints; n++ {
		t.Run(fmt.Sprintf("count_%d", n), func(t *testing.T) {
			points := area.GenerateSamplingPoints(testRect, n)
			assert.LessOrEqual(t, len(points), n)
			assert.NotEmpty(t, points)

			for _, p := range points {
				assert.True(t, geo.ValidateCoordinate(p.Latitude, p.Longitude))
				assert.GreaterOrEqual(t, p.Latitude, testRect.LatBottomLeft)
				assert.LessOrEqual(t, p.Latitude, testRect.LatTopRight)
			}
		})
	}
}

func TestGenerateSamplingPoints_Deterministic(t *testing.T) {
	a := area.GenerateSamplingPoints(testRect, 17)
	b := area.GenerateSamplingPoints(testRect, 17)
	assert.Equal(t, a, b)
}

func TestGenerateSamplingPoints_ZeroCount(t *testing.T) {
	assert.Empty(t, area.GenerateSamplingPoints(testRect, 0))
}
