package forecast

import (
	"math"

	"github.com/i474232898/air-quality-dashboard/internal/common"
)

const (
	reconcileThreshold = 15
	reconcileWeeks     = 3
)

// Reconcile pulls the first weeks back towards the live index when week one
// has drifted more than 15 points from it. Week one lands at the current
// index plus a fifth of the gap, weeks two and three move by a tenth of the
// gap. Confidence is left untouched. points is not modified.
func Reconcile(currentAQI int, points []Point) []Point {
	if len(points) == 0 {
		return points
	}

	adjustment := float64(currentAQI - points[0].AQI)
	if math.Abs(adjustment) <= reconcileThreshold {
		return points
	}

	out := make([]Point, len(points))
	copy(out, points)

	out[0].AQI = clampAQI(common.RoundHalfUp(float64(currentAQI) + adjustment*0.2))
	switch {
	case math.Abs(adjustment*0.2) < 2:
		out[0].Trend = TrendStable
	case adjustment > 0:
		out[0].Trend = TrendSlightlyIncreasing
	default:
		out[0].Trend = TrendSlightlyDecreasing
	}

	for i := 1; i < min(reconcileWeeks, len(out)); i++ {
		out[i].AQI = clampAQI(common.RoundHalfUp(float64(out[i].AQI) + adjustment*0.1))
	}
	return out
}

// clampAQI bounds an already rounded index to [minAQI, maxAQI].
func clampAQI(v float64) int {
	return common.ClampInt(int(v), minAQI, maxAQI)
}
