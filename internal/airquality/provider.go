package airquality

import (
	"context"
	"errors"
)

// ErrNoResults is returned by a Strategy whose query succeeded but matched
// nothing.
var ErrNoResults = errors.New("no results for coordinate")

// Strategy is one way of querying the upstream air-quality service. Fetch
// returns the normalized first result; AQI is filled in by the Service.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, c Coordinate) (Reading, error)
}

// CityResolver names the area around a coordinate for synthetic readings.
type CityResolver interface {
	ResolveCity(ctx context.Context, c Coordinate) string
}
