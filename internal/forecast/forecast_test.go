package forecast

import (
	"math"
	"testing"
	"time"
)

func constRand(v float64) Rand {
	return func() float64 { return v }
}

func TestSeedString(t *testing.T) {
	now := time.Date(2026, 10, 17, 15, 4, 0, 0, time.UTC)
	if got := SeedString(40.7128, -74.006, now); got != "40.7128--74.006-Sat Oct 17 2026" {
		t.Fatalf("unexpected seed %q", got)
	}
}

func TestHashSeed(t *testing.T) {
	if got := HashSeed(""); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := HashSeed("hello"); got != 99162322 {
		t.Fatalf("expected 99162322, got %d", got)
	}
	// Wraps around 32 bits and is folded to a non-negative value.
	if got := HashSeed("40.7128--74.006-Sat Oct 17 2026"); got < 0 || got > math.MaxInt32+1 {
		t.Fatalf("seed %d outside 32-bit range", got)
	}
}

func TestRandomSequence(t *testing.T) {
	r := NewRandom(0)
	if got := r.Float64(); got != 49297.0/233280 {
		t.Fatalf("unexpected first value %v", got)
	}
	if got := r.Float64(); got != float64((49297*9301+49297)%233280)/233280 {
		t.Fatalf("unexpected second value %v", got)
	}

	a := SeededRand("same")
	b := SeededRand("same")
	for i := 0; i < 50; i++ {
		x, y := a(), b()
		if x != y {
			t.Fatalf("draw %d differs: %v vs %v", i, x, y)
		}
		if x < 0 || x >= 1 {
			t.Fatalf("draw %d out of range: %v", i, x)
		}
	}
}

func TestWeeklyAverages(t *testing.T) {
	values := make([]int, 30)
	for i := range values {
		values[i] = 50 + 2*i
	}
	got := WeeklyAverages(values)
	want := []float64{56, 70, 84, 98, 107}
	if len(got) != len(want) {
		t.Fatalf("expected %d buckets, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bucket %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestWeeklyTrend(t *testing.T) {
	cases := []struct {
		name     string
		averages []float64
		want     float64
	}{
		{"too few weeks", []float64{50, 90}, 0},
		{"flat", []float64{60, 60, 60, 60}, 0},
		{"below threshold", []float64{50, 50.5, 51, 51.5}, 0},
		{"rising", []float64{56, 70, 84, 98, 107}, (37.0/3 + 12.5) / 2 * 0.2},
		{"falling", []float64{100, 90, 80, 70}, -10 * 0.2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WeeklyTrend(tc.averages); math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestSeasonalFactor(t *testing.T) {
	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	oct := time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)
	apr := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	if got := SeasonalFactor(jan, 0); got != 2 {
		t.Fatalf("january: expected 2, got %v", got)
	}
	if got := SeasonalFactor(apr, 0); got != -1 {
		t.Fatalf("april: expected -1, got %v", got)
	}
	if got := SeasonalFactor(oct, 4); got != 0 {
		t.Fatalf("october week 5: expected 0, got %v", got)
	}
	// Nine weeks out from October is December.
	if got := SeasonalFactor(oct, 9); got != 2 {
		t.Fatalf("october week 10: expected 2, got %v", got)
	}
}

func assertShape(t *testing.T, now time.Time, points []Point, weeks int) {
	t.Helper()
	if len(points) != weeks {
		t.Fatalf("expected %d points, got %d", weeks, len(points))
	}
	for i, p := range points {
		if p.Week != i+1 {
			t.Fatalf("point %d has week %d", i, p.Week)
		}
		if p.Confidence < 0.3 || p.Confidence > 0.9 {
			t.Fatalf("week %d confidence %v outside [0.3,0.9]", p.Week, p.Confidence)
		}
		if p.AQI < 10 || p.AQI > 500 {
			t.Fatalf("week %d AQI %d outside [10,500]", p.Week, p.AQI)
		}
		if !p.StartDate.Before(p.EndDate) {
			t.Fatalf("week %d has empty range", p.Week)
		}
		if i == 0 && !p.StartDate.Equal(now.Add(24*time.Hour)) {
			t.Fatalf("week 1 should start tomorrow, got %v", p.StartDate)
		}
		if i > 0 {
			if !points[i-1].EndDate.Add(24 * time.Hour).Equal(p.StartDate) {
				t.Fatalf("week %d does not follow week %d", p.Week, i)
			}
			if i > 1 && p.Confidence > points[i-1].Confidence {
				t.Fatalf("confidence rises at week %d", p.Week)
			}
		}
	}
}

func TestDefaultForecast(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	points := DefaultForecast(now, 10, 80, SeededRand(SeedString(1, 2, now)))
	assertShape(t, now, points, 10)

	if points[0].Confidence != 0.85 {
		t.Fatalf("expected week 1 confidence 0.85, got %v", points[0].Confidence)
	}
	if math.Abs(float64(points[0].AQI-80)) > 5 {
		t.Fatalf("week 1 AQI %d more than 5 from current", points[0].AQI)
	}
	for _, p := range points {
		if p.AQI > 300 {
			t.Fatalf("default forecast above 300: %d", p.AQI)
		}
		if math.Abs(float64(p.AQI-80)) > 10 {
			t.Fatalf("week %d AQI %d more than 10 from current", p.Week, p.AQI)
		}
	}
	if got := points[3].Confidence; math.Abs(got-(0.8-3*0.06)) > 1e-9 {
		t.Fatalf("unexpected week 4 confidence %v", got)
	}
	if got := points[9].Confidence; got != 0.3 {
		t.Fatalf("expected week 10 confidence floored at 0.3, got %v", got)
	}

	flat := DefaultForecast(now, 3, 295, constRand(0.5))
	if flat[0].Trend != TrendStable || flat[0].AQI != 295 {
		t.Fatalf("expected stable first week at 295, got %+v", flat[0])
	}
	if flat[1].Trend != TrendDecreasing {
		t.Fatalf("expected second draw 0.5 to read decreasing, got %s", flat[1].Trend)
	}

	high := DefaultForecast(now, 2, 400, constRand(0.99))
	if high[0].AQI != 300 || high[1].AQI != 300 {
		t.Fatalf("expected clamp at 300, got %d and %d", high[0].AQI, high[1].AQI)
	}
	if high[0].Trend != TrendSlightlyIncreasing || high[1].Trend != TrendIncreasing {
		t.Fatalf("unexpected trends %s, %s", high[0].Trend, high[1].Trend)
	}
}

func TestStableForecastFollowsRisingTrend(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	points := StableForecast(now, 10, 100, []float64{56, 70, 84, 98, 107}, constRand(0.5))
	assertShape(t, now, points, 10)

	for i := 1; i < len(points); i++ {
		if points[i].AQI < points[i-1].AQI {
			t.Fatalf("week %d decreases: %d < %d", points[i].Week, points[i].AQI, points[i-1].AQI)
		}
	}
	if points[9].AQI <= points[0].AQI {
		t.Fatalf("expected growth over the horizon, got %d -> %d", points[0].AQI, points[9].AQI)
	}
	if points[0].Trend != TrendStable {
		t.Fatalf("expected damped first week to be stable, got %s", points[0].Trend)
	}
	if points[1].Trend != TrendIncreasing {
		t.Fatalf("expected second week increasing, got %s", points[1].Trend)
	}
	if points[0].Confidence != 0.9 {
		t.Fatalf("expected week 1 confidence 0.9, got %v", points[0].Confidence)
	}
}

func TestStableForecastClamps(t *testing.T) {
	now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	points := StableForecast(now, 5, 499, []float64{100, 200, 300, 400}, constRand(0.99))
	for _, p := range points {
		if p.AQI != 500 {
			t.Fatalf("expected clamp at 500, got %d", p.AQI)
		}
	}
	if points[1].Trend != TrendStable {
		t.Fatalf("expected flat clamped weeks to be stable, got %s", points[1].Trend)
	}
}

func TestReconcile(t *testing.T) {
	base := []Point{
		{Week: 1, AQI: 100, Confidence: 0.9, Trend: TrendIncreasing},
		{Week: 2, AQI: 100, Confidence: 0.82},
		{Week: 3, AQI: 100, Confidence: 0.74},
		{Week: 4, AQI: 100, Confidence: 0.66},
	}

	got := Reconcile(50, base)
	if got[0].AQI != 40 || got[0].Trend != TrendSlightlyDecreasing {
		t.Fatalf("unexpected week 1: %+v", got[0])
	}
	if got[1].AQI != 95 || got[2].AQI != 95 || got[3].AQI != 100 {
		t.Fatalf("unexpected later weeks: %d %d %d", got[1].AQI, got[2].AQI, got[3].AQI)
	}
	for i := range got {
		if got[i].Confidence != base[i].Confidence {
			t.Fatalf("confidence changed at week %d", i+1)
		}
	}
	if base[0].AQI != 100 {
		t.Fatal("input was modified")
	}

	up := Reconcile(130, base)
	if up[0].AQI != 136 || up[0].Trend != TrendSlightlyIncreasing {
		t.Fatalf("unexpected week 1 above: %+v", up[0])
	}

	if same := Reconcile(110, base); same[0].AQI != 100 || same[0].Trend != TrendIncreasing {
		t.Fatalf("expected no change within 15 points, got %+v", same[0])
	}

	low := Reconcile(10, base)
	if low[0].AQI != 10 {
		t.Fatalf("expected clamp at 10, got %d", low[0].AQI)
	}

	high := Reconcile(490, []Point{{Week: 1, AQI: 400}, {Week: 2, AQI: 495}})
	if high[0].AQI != 500 || high[1].AQI != 500 {
		t.Fatalf("expected clamp at 500, got %d %d", high[0].AQI, high[1].AQI)
	}

	if got := Reconcile(50, nil); len(got) != 0 {
		t.Fatal("expected empty result")
	}
}
