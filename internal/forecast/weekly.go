package forecast

import (
	"math"
	"time"
)

const (
	bucketSize  = 7
	recentWeeks = 8
	trendWeeks  = 4

	// weeksPerMonth maps a week offset onto a calendar month offset.
	weeksPerMonth = 4.345
)

// WeeklyAverages groups values, oldest first, into consecutive buckets of
// seven and returns the mean of each bucket. The last bucket may be partial.
func WeeklyAverages(values []int) []float64 {
	out := make([]float64, 0, (len(values)+bucketSize-1)/bucketSize)
	for i := 0; i < len(values); i += bucketSize {
		end := min(i+bucketSize, len(values))

		sum := 0
		for _, v := range values[i:end] {
			sum += v
		}
		out = append(out, float64(sum)/float64(end-i))
	}
	return out
}

// WeeklyTrend returns a damped per-week slope for weekly averages given
// oldest first. Only the last eight weeks are considered and at least three
// are required; the slope itself is taken over the last four. Slopes of one
// AQI point per week or less count as no trend.
func WeeklyTrend(averages []float64) float64 {
	if len(averages) > recentWeeks {
		averages = averages[len(averages)-recentWeeks:]
	}
	if len(averages) < 3 {
		return 0
	}
	if len(averages) > trendWeeks {
		averages = averages[len(averages)-trendWeeks:]
	}

	n := float64(len(averages))
	simple := (averages[len(averages)-1] - averages[0]) / (n - 1)

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range averages {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	slope := (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)

	combined := (simple + slope) / 2
	if math.Abs(combined) > 1 {
		return combined * 0.2
	}
	return 0
}

// seasonalOffsets by zero-based month: winter raises the index, spring
// lowers it.
var seasonalOffsets = [12]float64{
	2, 2, -1, -1, -1, 1, 1, 1, 0, 0, 0, 2,
}

// SeasonalFactor returns the seasonal offset for the zero-based forecast week
// i counted from now.
func SeasonalFactor(now time.Time, i int) float64 {
	month := int(now.Month()) - 1
	offset := int(math.Floor(float64(i) / weeksPerMonth))
	return seasonalOffsets[(month+offset)%12]
}
