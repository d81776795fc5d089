package airquality

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/i474232898/air-quality-dashboard/internal/aqi"
	"github.com/i474232898/air-quality-dashboard/internal/common"
	"github.com/i474232898/air-quality-dashboard/internal/store"
)

type fakeStrategy struct {
	name string
	r    Reading
	err  error

	mu    sync.Mutex
	calls int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Fetch(ctx context.Context, c Coordinate) (Reading, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return Reading{}, f.err
	}
	return f.r, nil
}

func (f *fakeStrategy) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

var nyc = Coordinate{Latitude: 40.7128, Longitude: -74.006}

func TestFetchCurrentFallsBackToSynthetic(t *testing.T) {
	failing := &fakeStrategy{name: "down", err: errors.New("connection refused")}
	clk := &clock{t: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)}
	svc := NewService(store.NewMemoryStore(), []Strategy{failing, failing}, WithClock(clk.Now))

	r := svc.FetchCurrent(context.Background(), nyc)

	if !r.IsMock || r.Source != SyntheticSource {
		t.Fatalf("expected synthetic reading, got %+v", r)
	}
	if r.AQI < 20 || r.AQI > 150 {
		t.Fatalf("AQI %d outside [20,150]", r.AQI)
	}
	if r.AQI != aqi.Derive(r.PM25, r.PM10) {
		t.Fatalf("AQI %d does not match pollutants", r.AQI)
	}
	if r.City != UnknownArea {
		t.Fatalf("expected %q, got %q", UnknownArea, r.City)
	}
	if r.ID == "" {
		t.Fatal("expected an id")
	}
	if failing.Calls() != 2 {
		t.Fatalf("expected both strategies tried, got %d calls", failing.Calls())
	}
}

func TestFetchCurrentStopsAtFirstSuccess(t *testing.T) {
	first := &fakeStrategy{name: "first", r: Reading{
		Latitude: nyc.Latitude, Longitude: nyc.Longitude,
		PM25: common.Float(40), Source: "first", AQI: 3,
	}}
	second := &fakeStrategy{name: "second", err: errors.New("unused")}
	svc := NewService(store.NewMemoryStore(), []Strategy{first, second})

	r := svc.FetchCurrent(context.Background(), nyc)

	if r.Source != "first" {
		t.Fatalf("expected first strategy, got %q", r.Source)
	}
	if r.AQI != aqi.FromPM25(40) {
		t.Fatalf("expected AQI recomputed from pm25, got %d", r.AQI)
	}
	if second.Calls() != 0 {
		t.Fatal("second strategy should not be called")
	}
}

func TestFetchCurrentServesCacheWithinTTL(t *testing.T) {
	up := &fakeStrategy{name: "up", r: Reading{PM10: common.Float(80)}}
	clk := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(store.NewMemoryStore(), []Strategy{up}, WithClock(clk.Now))
	ctx := context.Background()

	first := svc.FetchCurrent(ctx, nyc)
	clk.Advance(59 * time.Minute)
	second := svc.FetchCurrent(ctx, nyc)

	if up.Calls() != 1 {
		t.Fatalf("expected one upstream call within the hour, got %d", up.Calls())
	}
	if first.ID != second.ID {
		t.Fatal("expected the cached reading")
	}

	clk.Advance(2 * time.Minute)
	third := svc.FetchCurrent(ctx, nyc)
	if up.Calls() != 2 {
		t.Fatalf("expected refetch after expiry, got %d calls", up.Calls())
	}
	if third.ID == first.ID {
		t.Fatal("expected a new reading after expiry")
	}
}

func TestFetchCurrentKeysByRoundedCoordinate(t *testing.T) {
	up := &fakeStrategy{name: "up", r: Reading{PM25: common.Float(10)}}
	svc := NewService(store.NewMemoryStore(), []Strategy{up})
	ctx := context.Background()

	svc.FetchCurrent(ctx, Coordinate{Latitude: 40.71281, Longitude: -74.00601})
	svc.FetchCurrent(ctx, Coordinate{Latitude: 40.71279, Longitude: -74.00599})
	if up.Calls() != 1 {
		t.Fatalf("expected coordinates within 4 decimals to share a cache slot, got %d calls", up.Calls())
	}

	svc.FetchCurrent(ctx, Coordinate{Latitude: 51.5074, Longitude: -0.1278})
	if up.Calls() != 2 {
		t.Fatalf("expected a distinct slot for another city, got %d calls", up.Calls())
	}
}

func TestClearCacheForcesRefetch(t *testing.T) {
	up := &fakeStrategy{name: "up", r: Reading{PM25: common.Float(10)}}
	kv := store.NewMemoryStore()
	svc := NewService(kv, []Strategy{up})
	ctx := context.Background()

	svc.FetchCurrent(ctx, nyc)
	svc.ClearCache(ctx)

	if _, err := kv.Get(ctx, LocationCacheKey); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected persisted cache removed, got %v", err)
	}

	svc.FetchCurrent(ctx, nyc)
	if up.Calls() != 2 {
		t.Fatalf("expected refetch after clear, got %d calls", up.Calls())
	}
}

func TestRestoreReusesPersistedCache(t *testing.T) {
	up := &fakeStrategy{name: "up", r: Reading{PM25: common.Float(22)}}
	kv := store.NewMemoryStore()
	clk := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	ctx := context.Background()

	first := NewService(kv, []Strategy{up}, WithClock(clk.Now)).FetchCurrent(ctx, nyc)

	restarted := NewService(kv, []Strategy{up}, WithClock(clk.Now))
	if err := restarted.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got := restarted.FetchCurrent(ctx, nyc)

	if up.Calls() != 1 {
		t.Fatalf("expected restored cache to be used, got %d calls", up.Calls())
	}
	if got.ID != first.ID {
		t.Fatal("expected the persisted reading")
	}
}

func TestHistoryBoundedNewestFirst(t *testing.T) {
	kv := store.NewMemoryStore()
	h := NewHistory(kv, 0, nil)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 105; i++ {
		h.Append(ctx, Reading{AQI: i, Timestamp: base.Add(time.Duration(i) * time.Hour)})
	}

	all := h.All(ctx)
	if len(all) != DefaultHistoryLimit {
		t.Fatalf("expected %d readings, got %d", DefaultHistoryLimit, len(all))
	}
	if all[0].AQI != 104 || all[len(all)-1].AQI != 5 {
		t.Fatalf("expected newest first and oldest dropped, got first=%d last=%d", all[0].AQI, all[len(all)-1].AQI)
	}

	recent := h.Since(ctx, base.Add(100*time.Hour))
	if len(recent) != 5 {
		t.Fatalf("expected 5 readings since cutoff, got %d", len(recent))
	}
}

func TestHistoryCorruptDataReadsEmpty(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()
	_ = kv.Set(ctx, HistoryKey, "{not json")

	h := NewHistory(kv, 10, nil)
	if got := h.All(ctx); len(got) != 0 {
		t.Fatalf("expected empty history, got %d", len(got))
	}

	h.Append(ctx, Reading{AQI: 7})
	if got := h.All(ctx); len(got) != 1 || got[0].AQI != 7 {
		t.Fatalf("expected append to recover, got %+v", got)
	}
}

func TestHistoryConcurrentAppends(t *testing.T) {
	h := NewHistory(store.NewMemoryStore(), 100, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Append(ctx, Reading{AQI: i})
		}(i)
	}
	wg.Wait()

	if got := len(h.All(ctx)); got != 20 {
		t.Fatalf("expected 20 readings, got %d", got)
	}
}

func TestRecentUsesDayWindow(t *testing.T) {
	up := &fakeStrategy{name: "up", r: Reading{PM25: common.Float(10)}}
	clk := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(store.NewMemoryStore(), []Strategy{up}, WithClock(clk.Now), WithCacheTTL(time.Minute))
	ctx := context.Background()

	svc.FetchCurrent(ctx, nyc)
	clk.Advance(10 * 24 * time.Hour)
	svc.FetchCurrent(ctx, nyc)

	if got := len(svc.Recent(ctx, 7)); got != 1 {
		t.Fatalf("expected 1 reading in 7 days, got %d", got)
	}
	if got := len(svc.Recent(ctx, 30)); got != 2 {
		t.Fatalf("expected 2 readings in 30 days, got %d", got)
	}
}
