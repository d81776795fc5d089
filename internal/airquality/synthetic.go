package airquality

import (
	"math"
	"time"

	"github.com/i474232898/air-quality-dashboard/internal/aqi"
	"github.com/i474232898/air-quality-dashboard/internal/common"
)

// SyntheticSource labels readings produced by Synthesize.
const SyntheticSource = "Consistent Mock Data (OpenAQ Unavailable)"

const (
	minSyntheticAQI = 20
	maxSyntheticAQI = 150
)

// locationSeed is a stable value in [0,100) derived from the coordinate.
func locationSeed(c Coordinate) float64 {
	return math.Mod(math.Abs(c.Latitude)*1000+math.Abs(c.Longitude)*1000, 100)
}

// hourAdjustment models rush hours and cleaner night air.
func hourAdjustment(hour int) float64 {
	switch {
	case hour >= 7 && hour <= 10:
		return 10
	case hour >= 17 && hour <= 20:
		return 8
	case hour >= 22 || hour <= 5:
		return -5
	default:
		return 0
	}
}

// seasonalAdjustment is a slow ±5 swing over the year.
func seasonalAdjustment(dayOfYear int) float64 {
	return math.Sin(float64(dayOfYear)/58) * 5
}

// SyntheticAQI returns the index a synthetic reading targets for c at now,
// always within [20,150].
func SyntheticAQI(c Coordinate, now time.Time) int {
	seed := locationSeed(c)
	base := 30 + math.Mod(seed, 70)

	v := base + hourAdjustment(now.Hour()) + seasonalAdjustment(now.YearDay())
	v = common.Clamp(v, minSyntheticAQI, maxSyntheticAQI)
	return int(common.RoundHalfUp(v))
}

// Synthesize builds a deterministic reading for c: the same coordinate and
// hour always give the same values. PM2.5 is chosen so that converting it
// back yields exactly the target index.
func Synthesize(c Coordinate, now time.Time, city string) Reading {
	seed := locationSeed(c)
	target := SyntheticAQI(c, now)

	pm25 := aqi.PM25ForAQI(target)
	pm10 := common.Round1(pm25 * 1.3)

	return Reading{
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		PM25:      common.Float(pm25),
		PM10:      common.Float(pm10),
		NO2:       common.Float(common.Round1(15 + math.Mod(seed, 25))),
		O3:        common.Float(common.Round1(20 + math.Mod(seed, 20))),
		SO2:       common.Float(common.Round1(2 + math.Mod(seed, 4))),
		CO:        common.Float(common.Round1(0.3 + math.Mod(seed, 7)/10)),
		AQI:       aqi.FromPM25(pm25),
		Location:  "Local Station",
		City:      city,
		Country:   "Local",
		Timestamp: now.UTC(),
		Source:    SyntheticSource,
		IsMock:    true,
	}
}
