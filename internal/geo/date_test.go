package geo_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/areaforecast/areaforecast/internal/geo"
)

func TestDay_TruncatesToMidnight(t *testing.T) {
	in := time.Date(2026, 3, 14, 17, 45, 12, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), geo.Day(in))
}

func TestParseDate(t *testing.T) {
	d, err := geo.ParseDate("2026-02-28")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), d)

	_, err = geo.ParseDate("28/02/2026")
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	base := time.Date(2026, 5, 10, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, geo.DaysBetween(base, base.Add(30*time.Minute).Add(-time.Hour)))
	assert.Equal(t, 1, geo.DaysBetween(base, base.Add(2*time.Hour)))
	assert.Equal(t, -2, geo.DaysBetween(base, base.AddDate(0, 0, -2)))
	assert.Equal(t, 30, geo.DaysBetween(base, base.AddDate(0, 0, 30)))
}
