// Package forecast projects weekly AQI values from the current reading and
// the recent reading history.
package forecast

import "time"

// Trend describes the direction of a forecast week relative to the previous
// one.
type Trend string

const (
	TrendStable             Trend = "stable"
	TrendIncreasing         Trend = "increasing"
	TrendDecreasing         Trend = "decreasing"
	TrendSlightlyIncreasing Trend = "slightly increasing"
	TrendSlightlyDecreasing Trend = "slightly decreasing"
)

const (
	minAQI        = 10
	maxAQI        = 500
	maxDefaultAQI = 300

	// DefaultWeeks is the horizon used when the caller does not pick one.
	DefaultWeeks = 10
	// MaxWeeks bounds the horizon accepted from callers.
	MaxWeeks = 52
)

// Point is one forecast week.
type Point struct {
	Week       int       `json:"week"`
	AQI        int       `json:"aqi"`
	Confidence float64   `json:"confidence"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Trend      Trend     `json:"trend"`
}

const day = 24 * time.Hour

// weekRange returns the date range of the zero-based forecast week i. Ranges
// are contiguous: each starts the day after the previous one ends.
func weekRange(now time.Time, i int) (time.Time, time.Time) {
	start := now.Add(time.Duration(7*i+1) * day)
	end := now.Add(time.Duration(7*(i+1)) * day)
	return start, end
}
