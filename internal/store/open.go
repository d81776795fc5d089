package store

import (
	"context"
	"fmt"
)

// Drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Driver        string
	Path          string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
}

// Open builds the backend named by opts.Driver. The returned close function
// is never nil.
func Open(ctx context.Context, opts Options) (KV, func() error, error) {
	noop := func() error { return nil }

	switch opts.Driver {
	case DriverMemory:
		return NewMemoryStore(), noop, nil
	case DriverFile, "":
		fs, err := NewFileStore(opts.Path)
		if err != nil {
			return nil, noop, err
		}
		return fs, noop, nil
	case DriverPostgres:
		pg, err := NewPostgresStore(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return pg, pg.Close, nil
	case DriverMongo:
		m, err := NewMongoStore(ctx, opts.MongoURI, opts.MongoDatabase)
		if err != nil {
			return nil, noop, err
		}
		return m, func() error { return m.Close(context.Background()) }, nil
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
