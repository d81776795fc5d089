package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/withmandala/go-log"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
	"github.com/i474232898/air-quality-dashboard/internal/aqi"
	"github.com/i474232898/air-quality-dashboard/internal/cache"
	"github.com/i474232898/air-quality-dashboard/internal/logging"
	"github.com/i474232898/air-quality-dashboard/internal/store"
)

const (
	// PredictionsKey is the store key of the last computed forecast.
	PredictionsKey = "predictions_data"

	DefaultCacheTTL    = 30 * time.Minute
	DefaultHistoryDays = 90

	// minHistory is the number of readings needed for a trend forecast.
	minHistory = 7
)

// CurrentSource provides the live reading for a coordinate.
type CurrentSource interface {
	FetchCurrent(ctx context.Context, c airquality.Coordinate) airquality.Reading
}

// HistorySource provides readings from the last days, newest first.
type HistorySource interface {
	Recent(ctx context.Context, days int) []airquality.Reading
}

// Engine computes and caches forecasts.
type Engine struct {
	current CurrentSource
	history HistorySource
	kv      store.KV
	cache   *cache.TTL[[]Point]

	cacheTTL    time.Duration
	historyDays int
	newRand     func(seed string) Rand
	now         func() time.Time
	logger      *log.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithCacheTTL sets how long a computed forecast is reused.
func WithCacheTTL(d time.Duration) Option {
	return func(e *Engine) { e.cacheTTL = d }
}

// WithHistoryDays sets the history window used for the trend.
func WithHistoryDays(days int) Option {
	return func(e *Engine) { e.historyDays = days }
}

// WithRand replaces the seeded generator.
func WithRand(f func(seed string) Rand) Option {
	return func(e *Engine) { e.newRand = f }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an Engine. The last forecast is persisted in kv.
func NewEngine(current CurrentSource, history HistorySource, kv store.KV, opts ...Option) *Engine {
	e := &Engine{
		current:     current,
		history:     history,
		kv:          kv,
		cacheTTL:    DefaultCacheTTL,
		historyDays: DefaultHistoryDays,
		newRand:     SeededRand,
		now:         time.Now,
		logger:      logging.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cache = cache.New[[]Point](cache.Config{TTL: e.cacheTTL, Now: e.now, Logger: e.logger})
	return e
}

// CacheKey identifies a forecast by raw coordinate and horizon.
func CacheKey(c airquality.Coordinate, weeks int) string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "-" +
		strconv.FormatFloat(c.Longitude, 'f', -1, 64) + "-" +
		strconv.Itoa(weeks)
}

// Predict returns a forecast of the given number of weeks for c. weeks < 1
// uses DefaultWeeks. It never fails: if computing breaks, the last cached or
// persisted forecast of the same shape is returned, else a default forecast.
func (e *Engine) Predict(ctx context.Context, c airquality.Coordinate, weeks int) []Point {
	if weeks < 1 {
		weeks = DefaultWeeks
	}
	key := CacheKey(c, weeks)

	if cached, ok := e.cache.Get(key); ok {
		e.logger.Debugf("forecast: using cached forecast for %s", key)
		return cached
	}

	points, err := e.compute(ctx, c, weeks)
	if err != nil {
		e.logger.Errorf("forecast: computing %s failed: %v", key, err)
		return e.fallback(ctx, c, weeks, key)
	}

	e.cache.Set(ctx, key, points)
	e.persist(ctx, points)
	return points
}

func (e *Engine) compute(ctx context.Context, c airquality.Coordinate, weeks int) (points []Point, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	currentAQI := e.current.FetchCurrent(ctx, c).AQI
	if currentAQI == 0 {
		currentAQI = aqi.DefaultAQI
	}

	history := e.history.Recent(ctx, e.historyDays)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := e.now()
	rnd := e.newRand(SeedString(c.Latitude, c.Longitude, now))

	if len(history) < minHistory {
		e.logger.Debugf("forecast: %d readings in history; using default forecast", len(history))
		return DefaultForecast(now, weeks, currentAQI, rnd), nil
	}

	// History is newest first; weekly buckets run oldest first.
	values := make([]int, len(history))
	for i, r := range history {
		values[len(history)-1-i] = r.AQI
	}

	points = StableForecast(now, weeks, currentAQI, WeeklyAverages(values), rnd)
	reconciled := Reconcile(currentAQI, points)
	if reconciled[0].AQI != points[0].AQI {
		e.logger.Infof("forecast: adjusting week 1 from %d to %d (current %d)", points[0].AQI, reconciled[0].AQI, currentAQI)
	}
	return reconciled, nil
}

func (e *Engine) fallback(ctx context.Context, c airquality.Coordinate, weeks int, key string) []Point {
	if stale, ok := e.cache.Peek(key); ok {
		e.logger.Warnf("forecast: serving stale forecast for %s", key)
		return stale
	}

	if stored, err := e.Stored(ctx); err == nil && len(stored) == weeks {
		e.logger.Warnf("forecast: serving persisted forecast for %s", key)
		return stored
	}

	currentAQI := e.bestEffortAQI(ctx, c)
	now := e.now()
	return DefaultForecast(now, weeks, currentAQI, e.newRand(SeedString(c.Latitude, c.Longitude, now)))
}

func (e *Engine) bestEffortAQI(ctx context.Context, c airquality.Coordinate) (v int) {
	v = aqi.DefaultAQI
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("forecast: current reading for fallback failed: %v", r)
			v = aqi.DefaultAQI
		}
	}()

	if got := e.current.FetchCurrent(ctx, c).AQI; got != 0 {
		v = got
	}
	return v
}

func (e *Engine) persist(ctx context.Context, points []Point) {
	if e.kv == nil {
		return
	}
	raw, err := json.Marshal(points)
	if err != nil {
		e.logger.Errorf("forecast: encoding forecast: %v", err)
		return
	}
	if err := e.kv.Set(ctx, PredictionsKey, string(raw)); err != nil {
		e.logger.Errorf("forecast: storing forecast: %v", err)
	}
}

// Stored returns the last persisted forecast. A missing forecast yields an
// empty list and no error.
func (e *Engine) Stored(ctx context.Context) ([]Point, error) {
	if e.kv == nil {
		return nil, nil
	}
	raw, err := e.kv.Get(ctx, PredictionsKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var points []Point
	if err := json.Unmarshal([]byte(raw), &points); err != nil {
		return nil, fmt.Errorf("decode stored forecast: %w", err)
	}
	return points, nil
}

// ClearCache drops every cached forecast. The persisted forecast is kept as
// a fallback.
func (e *Engine) ClearCache(ctx context.Context) {
	e.cache.Clear(ctx)
	e.logger.Info("forecast: cache cleared")
}
