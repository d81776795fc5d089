package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/withmandala/go-log"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
	"github.com/i474232898/air-quality-dashboard/internal/forecast"
	"github.com/i474232898/air-quality-dashboard/internal/logging"
)

const (
	maxParallel = 4
	jobTimeout  = 30 * time.Second
)

// Current fetches the live reading for a coordinate.
type Current interface {
	FetchCurrent(ctx context.Context, c airquality.Coordinate) airquality.Reading
}

// Forecaster computes a forecast for a coordinate.
type Forecaster interface {
	Predict(ctx context.Context, c airquality.Coordinate, weeks int) []forecast.Point
}

// Scheduler periodically warms the reading and forecast caches for the
// watched locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	current   Current
	forecast  Forecaster
	locations []airquality.Coordinate
	interval  time.Duration
	weeks     int
	logger    *log.Logger
}

// New creates a new Scheduler.
func New(locations []airquality.Coordinate, interval time.Duration, weeks int, current Current, forecaster Forecaster, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		current:   current,
		forecast:  forecaster,
		locations: locations,
		interval:  interval,
		weeks:     weeks,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.logger.Info("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every watched location, at most four at a time.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.logger.Debug("scheduler: running air quality refresh")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for _, loc := range s.locations {
		loc := loc
		g.Go(func() error {
			r := s.current.FetchCurrent(ctx, loc)
			points := s.forecast.Predict(ctx, loc, s.weeks)
			s.logger.Infof("scheduler: %s AQI %d (%s), %d forecast weeks", loc.Key(), r.AQI, r.Source, len(points))
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Debug("scheduler: completed air quality refresh")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
