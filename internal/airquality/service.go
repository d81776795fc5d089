package airquality

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/withmandala/go-log"

	"github.com/i474232898/air-quality-dashboard/internal/aqi"
	"github.com/i474232898/air-quality-dashboard/internal/cache"
	"github.com/i474232898/air-quality-dashboard/internal/logging"
	"github.com/i474232898/air-quality-dashboard/internal/store"
)

const (
	// LocationCacheKey is the store key of the persisted current-reading cache.
	LocationCacheKey = "location_aqi_cache"

	DefaultCacheTTL        = time.Hour
	DefaultStrategyTimeout = 10 * time.Second
)

// Service resolves the current air quality for a coordinate. It tries each
// strategy in order, falls back to a synthetic reading, and records the
// result in a per-coordinate cache and the reading history.
type Service struct {
	strategies []Strategy
	history    *History
	cache      *cache.TTL[Reading]
	cities     CityResolver

	timeout time.Duration
	now     func() time.Time
	logger  *log.Logger
}

// Option customizes a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	cacheTTL     time.Duration
	timeout      time.Duration
	historyLimit int
	cities       CityResolver
	now          func() time.Time
	logger       *log.Logger
}

// WithCacheTTL sets how long a current reading is served from cache.
func WithCacheTTL(d time.Duration) Option {
	return func(o *serviceOptions) { o.cacheTTL = d }
}

// WithStrategyTimeout bounds each upstream strategy attempt.
func WithStrategyTimeout(d time.Duration) Option {
	return func(o *serviceOptions) { o.timeout = d }
}

// WithHistoryLimit bounds the persisted history length.
func WithHistoryLimit(n int) Option {
	return func(o *serviceOptions) { o.historyLimit = n }
}

// WithCityResolver replaces the bounding-box city table.
func WithCityResolver(r CityResolver) Option {
	return func(o *serviceOptions) { o.cities = r }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *serviceOptions) { o.logger = l }
}

// NewService creates a Service persisting its history and cache in kv.
func NewService(kv store.KV, strategies []Strategy, opts ...Option) *Service {
	o := serviceOptions{
		cacheTTL:     DefaultCacheTTL,
		timeout:      DefaultStrategyTimeout,
		historyLimit: DefaultHistoryLimit,
		cities:       BoundingBoxes{},
		now:          time.Now,
		logger:       logging.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Service{
		strategies: strategies,
		history:    NewHistory(kv, o.historyLimit, o.logger),
		cache: cache.New[Reading](cache.Config{
			TTL:    o.cacheTTL,
			Store:  kv,
			Key:    LocationCacheKey,
			Now:    o.now,
			Logger: o.logger,
		}),
		cities:  o.cities,
		timeout: o.timeout,
		now:     o.now,
		logger:  o.logger,
	}
}

// Restore loads the persisted location cache. Call once at start-up.
func (s *Service) Restore(ctx context.Context) error {
	return s.cache.Restore(ctx)
}

// FetchCurrent returns the current reading for c. It never fails: upstream
// errors are logged and a synthetic reading is produced instead.
func (s *Service) FetchCurrent(ctx context.Context, c Coordinate) Reading {
	key := c.Key()

	if cached, ok := s.cache.Get(key); ok {
		s.logger.Debugf("airquality: using cached reading for %s", key)
		return cached
	}

	reading, ok := s.fetchUpstream(ctx, c)
	if !ok {
		s.logger.Infof("airquality: all strategies failed for %s; using synthetic reading", key)
		reading = Synthesize(c, s.now(), s.cities.ResolveCity(ctx, c))
	}

	reading.ID = uuid.NewString()
	reading.Timestamp = s.now().UTC()
	reading.AQI = aqi.Derive(reading.PM25, reading.PM10)

	s.cache.Set(ctx, key, reading)
	s.history.Append(ctx, reading)

	return reading
}

func (s *Service) fetchUpstream(ctx context.Context, c Coordinate) (Reading, bool) {
	for _, st := range s.strategies {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		r, err := st.Fetch(attemptCtx, c)
		cancel()

		if err != nil {
			s.logger.Warnf("airquality: strategy %s failed for %s: %v", st.Name(), c.Key(), err)
			continue
		}

		s.logger.Debugf("airquality: strategy %s succeeded for %s", st.Name(), c.Key())
		return r, true
	}
	return Reading{}, false
}

// ClearCache drops every cached reading, in memory and persisted.
func (s *Service) ClearCache(ctx context.Context) {
	s.cache.Clear(ctx)
	s.logger.Info("airquality: location cache cleared")
}

// Recent returns history readings no older than the given number of days,
// newest first.
func (s *Service) Recent(ctx context.Context, days int) []Reading {
	return s.history.Since(ctx, s.now().AddDate(0, 0, -days))
}

// History exposes the underlying reading history.
func (s *Service) History() *History {
	return s.history
}
