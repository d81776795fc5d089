// Package aqi converts particulate concentrations (µg/m³) to US EPA style
// Air Quality Index values using fixed piecewise-linear breakpoint tables.
package aqi

import "math"

const (
	// MaxAQI is the upper end of the index scale.
	MaxAQI = 500
	// DefaultAQI is reported when no particulate measurement is available.
	DefaultAQI = 50
)

// breakpoint maps a concentration band onto an AQI band starting at aqiLow
// and spanning span index points. The fourth band of both tables spans 100
// points, so the index tops out at 251 before dropping to 201 at the start
// of the fifth band.
type breakpoint struct {
	low, high float64
	aqiLow    float64
	span      float64
}

var pm25Breakpoints = []breakpoint{
	{0, 12, 0, 50},
	{12.1, 35.4, 51, 50},
	{35.5, 55.4, 101, 50},
	{55.5, 150.4, 151, 100},
	{150.5, 250.4, 201, 100},
	{250.5, 350.4, 301, 100},
}

var pm10Breakpoints = []breakpoint{
	{0, 54, 0, 50},
	{55, 154, 51, 50},
	{155, 254, 101, 50},
	{255, 354, 151, 100},
	{355, 424, 201, 100},
	{425, 504, 301, 100},
}

// calculate finds the first band whose upper bound is >= concentration and
// floors the interpolated value. Anything above the table uses the last
// band's slope; the result is clamped to [0, MaxAQI].
func calculate(concentration float64, table []breakpoint) int {
	if concentration < 0 || math.IsNaN(concentration) {
		concentration = 0
	}

	b := table[len(table)-1]
	for _, candidate := range table {
		if concentration <= candidate.high {
			b = candidate
			break
		}
	}

	v := math.Floor((concentration-b.low)/(b.high-b.low)*b.span + b.aqiLow)
	if v < 0 {
		return 0
	}
	if v > MaxAQI {
		return MaxAQI
	}
	return int(v)
}

// FromPM25 returns the AQI for a PM2.5 concentration.
func FromPM25(pm25 float64) int {
	return calculate(pm25, pm25Breakpoints)
}

// FromPM10 returns the AQI for a PM10 concentration.
func FromPM10(pm10 float64) int {
	return calculate(pm10, pm10Breakpoints)
}

// Derive computes the index for a reading: PM2.5 wins over PM10, and
// DefaultAQI is used when neither is present.
func Derive(pm25, pm10 *float64) int {
	if pm25 != nil {
		return FromPM25(*pm25)
	}
	if pm10 != nil {
		return FromPM10(*pm10)
	}
	return DefaultAQI
}

// PM25ForAQI returns the smallest concentration on a 0.1 µg/m³ grid whose
// FromPM25 value is at least target. Within a band the index rises by less
// than one point per grid step (about 0.105 in the steepest band), so for any
// reachable target the returned concentration converts back to exactly
// target.
func PM25ForAQI(target int) float64 {
	if target <= 0 {
		return 0
	}

	// Start one band below the band the target falls in.
	start := 0.0
	for i, b := range pm25Breakpoints {
		if float64(target) >= b.aqiLow && i > 0 {
			start = pm25Breakpoints[i-1].low
		}
	}

	last := int(math.Round(pm25Breakpoints[len(pm25Breakpoints)-1].high * 10 * 2))
	for tenths := int(math.Round(start * 10)); tenths <= last; tenths++ {
		pm := float64(tenths) / 10
		if FromPM25(pm) >= target {
			return pm
		}
	}
	return float64(last) / 10
}
