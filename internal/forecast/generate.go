package forecast

import (
	"math"
	"time"

	"github.com/i474232898/air-quality-dashboard/internal/common"
)

// DefaultForecast is used when there is too little history for a trend: each
// week is a bounded random variation around the current index.
func DefaultForecast(now time.Time, weeks, currentAQI int, rnd Rand) []Point {
	points := make([]Point, 0, weeks)
	base := float64(currentAQI)

	for i := 0; i < weeks; i++ {
		var variation float64
		if i == 0 {
			variation = rnd()*10 - 5
		} else {
			variation = rnd()*20 - 10
		}
		predicted := common.Clamp(base+variation, minAQI, maxDefaultAQI)

		var trend Trend
		confidence := 0.85
		if i == 0 {
			switch {
			case math.Abs(variation) < 3:
				trend = TrendStable
			case variation > 0:
				trend = TrendSlightlyIncreasing
			default:
				trend = TrendSlightlyDecreasing
			}
		} else {
			switch r := rnd(); {
			case r > 0.6:
				trend = TrendIncreasing
			case r > 0.3:
				trend = TrendDecreasing
			default:
				trend = TrendStable
			}
			confidence = math.Max(0.3, 0.8-float64(i)*0.06)
		}

		start, end := weekRange(now, i)
		points = append(points, Point{
			Week:       i + 1,
			AQI:        int(common.RoundHalfUp(predicted)),
			Confidence: confidence,
			StartDate:  start,
			EndDate:    end,
			Trend:      trend,
		})
	}
	return points
}

// StableForecast walks forward from the current index, adding a damped trend
// derived from the weekly averages, a seasonal offset and a small random
// variation each week. Both the trend and the variation are weaker in the
// first week so that it stays close to the current reading.
func StableForecast(now time.Time, weeks, currentAQI int, averages []float64, rnd Rand) []Point {
	points := make([]Point, 0, weeks)
	trend := WeeklyTrend(averages)
	last := float64(currentAQI)

	for i := 0; i < weeks; i++ {
		var variation, strength float64
		if i == 0 {
			variation = rnd()*4 - 2
			strength = 0.3
		} else {
			variation = rnd()*8 - 4
			strength = math.Max(0.1, 1-float64(i)*0.1)
		}

		predicted := common.Clamp(
			last+trend*strength+SeasonalFactor(now, i)+variation,
			minAQI, maxAQI,
		)

		label := TrendStable
		switch {
		case math.Abs(predicted-last) < 2:
		case predicted > last:
			label = TrendIncreasing
		default:
			label = TrendDecreasing
		}

		start, end := weekRange(now, i)
		points = append(points, Point{
			Week:       i + 1,
			AQI:        int(common.RoundHalfUp(predicted)),
			Confidence: math.Max(0.3, 0.9-float64(i)*0.08),
			StartDate:  start,
			EndDate:    end,
			Trend:      label,
		})

		last = predicted
	}
	return points
}
