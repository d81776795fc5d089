package providers

import (
	"context"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/withmandala/go-log"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
	"github.com/i474232898/air-quality-dashboard/internal/logging"
)

// DefaultGeocoderTimeout bounds a single reverse lookup.
const DefaultGeocoderTimeout = 3 * time.Second

// GeocoderResolver names areas through Google reverse geocoding and falls
// back to another resolver when the lookup fails, times out or returns no
// city.
type GeocoderResolver struct {
	fallback airquality.CityResolver
	lookup   func(geocoder.Location) ([]geocoder.Address, error)
	timeout  time.Duration
	logger   *log.Logger
}

// NewGeocoderResolver configures the geocoder API key. The geocoder package
// keeps the key in a package variable, so one key serves the whole process.
// fallback is used for failed lookups; nil means the bounding-box table.
func NewGeocoderResolver(apiKey string, fallback airquality.CityResolver, logger *log.Logger) *GeocoderResolver {
	if apiKey != "" {
		geocoder.ApiKey = apiKey
	}
	if fallback == nil {
		fallback = airquality.BoundingBoxes{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &GeocoderResolver{
		fallback: fallback,
		lookup:   geocoder.GeocodingReverse,
		timeout:  DefaultGeocoderTimeout,
		logger:   logger,
	}
}

type lookupResult struct {
	addresses []geocoder.Address
	err       error
}

// ResolveCity returns the city of the first reverse-geocoded address. The
// geocoder client takes no context, so the lookup runs in its own goroutine
// and is abandoned when ctx ends or the timeout passes.
func (g *GeocoderResolver) ResolveCity(ctx context.Context, c airquality.Coordinate) string {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	done := make(chan lookupResult, 1)
	go func() {
		addresses, err := g.lookup(geocoder.Location{
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
		})
		done <- lookupResult{addresses: addresses, err: err}
	}()

	var res lookupResult
	select {
	case <-ctx.Done():
		g.logger.Warnf("geocoder: reverse lookup for %s abandoned: %v", c.Key(), ctx.Err())
		return g.fallback.ResolveCity(context.WithoutCancel(ctx), c)
	case res = <-done:
	}

	if res.err != nil {
		g.logger.Warnf("geocoder: reverse lookup failed for %s: %v", c.Key(), res.err)
		return g.fallback.ResolveCity(ctx, c)
	}
	for _, a := range res.addresses {
		if a.City != "" {
			return a.City
		}
	}
	return g.fallback.ResolveCity(ctx, c)
}
