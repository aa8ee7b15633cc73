package area

import (
	"math"
	"time"

	"github.com/areaforecast/areaforecast/internal/forecast"
	"github.com/areaforecast/areaforecast/internal/geo"
)

// Reliability heuristic constants.
const (
	baseReliability       = 95.0
	reliabilityDecayByDay = 3.5
	minBaseReliability    = 30.0
	maxReliabilityPenalty = 30.0
)

// Aggregator folds per-point forecasts into area-level days.
type Aggregator struct {
	now func() time.Time
}

// NewAggregator creates an aggregator. now defaults to time.Now.
func NewAggregator(now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{now: now}
}

// Aggregate combines forecasts (aligned with points) into one forecast for r.
// Days are truncated to the shortest per-point series.
func (a *Aggregator) Aggregate(forecasts []*forecast.PointForecast, r geo.Rectangle, points []forecast.GeoPoint) *Forecast {
	now := a.now()

	result := &Forecast{
		Area:           NewArea(r),
		LastUpdated:    now,
		DailyForecasts: []DailyForecast{},
		SamplingPoints: points,
	}

	if len(forecasts) == 0 {
		return result
	}

	result.LastUpdated = latestUpdate(forecasts)

	if len(forecasts[0].DailyForecasts) == 0 {
		return result
	}

	days := len(forecasts[0].DailyForecasts)
	for _, f := range forecasts[1:] {
		if n := len(f.DailyForecasts); n < days {
			days = n
		}
	}

	today := geo.Day(now)
	for d := 0; d < days; d++ {
		records := make([]forecast.DailyForecast, len(forecasts))
		for i, f := range forecasts {
			records[i] = f.DailyForecasts[d]
		}
		result.DailyForecasts = append(result.DailyForecasts, aggregateDay(records, today))
	}

	return result
}

func latestUpdate(forecasts []*forecast.PointForecast) time.Time {
	latest := forecasts[0].LastUpdated
	for _, f := range forecasts[1:] {
		if f.LastUpdated.After(latest) {
			latest = f.LastUpdated
		}
	}
	return latest
}

func aggregateDay(records []forecast.DailyForecast, today time.Time) DailyForecast {
	n := float64(len(records))
	maxTemps := make([]float64, len(records))
	minTemps := make([]float64, len(records))
	conditions := make([]string, len(records))

	var sumMax, sumMin, sumAvg, sumRain float64
	for i, rec := range records {
		maxTemps[i] = rec.MaxTemp
		minTemps[i] = rec.MinTemp
		conditions[i] = rec.Condition

		sumMax += rec.MaxTemp
		sumMin += rec.MinTemp
		sumAvg += (rec.MaxTemp + rec.MinTemp) / 2
		sumRain += rec.ChanceOfRain
	}

	date := records[0].Date
	tempVar := TemperatureVariability(maxTemps, minTemps)
	condVar := ConditionVariability(conditions)

	return DailyForecast{
		Date:                 date,
		AvgMaxTemp:           sumMax / n,
		AvgMinTemp:           sumMin / n,
		AvgTemp:              sumAvg / n,
		AvgChanceOfRain:      sumRain / n,
		PredominantCondition: PredominantCondition(conditions),
		ReliabilityScore:     ReliabilityScore(geo.DaysBetween(today, date), tempVar, condVar),
		VariabilityScore:     VariabilityScore(tempVar, condVar),
		ConditionsInArea:     distinct(conditions),
	}
}

// PredominantCondition returns the most frequent label. Ties go to the label
// seen first.
func PredominantCondition(conditions []string) string {
	counts := make(map[string]int, len(conditions))
	best, bestCount := "", 0

	for _, c := range conditions {
		counts[c]++
	}
	for _, c := range distinct(conditions) {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}

	return best
}

// TemperatureVariability is the summed population variance of the max and
// min temperatures scaled by 5 and capped at 100.
func TemperatureVariability(maxTemps, minTemps []float64) float64 {
	return math.Min((variance(maxTemps)+variance(minTemps))*5, 100)
}

// ConditionVariability grows with the number of distinct labels per point,
// capped at 100.
func ConditionVariability(conditions []string) float64 {
	if len(conditions) == 0 {
		return 0
	}
	unique := len(distinct(conditions))
	return math.Min(float64(unique-1)*100/float64(len(conditions)), 100)
}

// VariabilityScore averages both variabilities, rounded to one decimal.
func VariabilityScore(tempVar, condVar float64) float64 {
	return geo.Round1((tempVar + condVar) / 2)
}

// ReliabilityScore decays with the forecast horizon and is reduced by up to
// 30 points of cross-point disagreement.
func ReliabilityScore(daysInFuture int, tempVar, condVar float64) float64 {
	base := math.Max(baseReliability-float64(daysInFuture)*reliabilityDecayByDay, minBaseReliability)
	reduction := math.Min(tempVar*0.5+condVar*0.5, maxReliabilityPenalty)
	return geo.Round1(base - reduction)
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return sq / float64(len(values))
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
