package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
	"github.com/i474232898/air-quality-dashboard/internal/aqi"
	"github.com/i474232898/air-quality-dashboard/internal/dashboard"
	"github.com/i474232898/air-quality-dashboard/internal/forecast"
)

var validate = validator.New()

// AirQuality is the current-reading service.
type AirQuality interface {
	FetchCurrent(ctx context.Context, c airquality.Coordinate) airquality.Reading
	Recent(ctx context.Context, days int) []airquality.Reading
}

// Forecaster computes forecasts.
type Forecaster interface {
	Predict(ctx context.Context, c airquality.Coordinate, weeks int) []forecast.Point
}

// Dashboard renders and refreshes the dashboard view.
type Dashboard interface {
	Load(ctx context.Context, c airquality.Coordinate, weeks int) dashboard.View
	Refresh(ctx context.Context, c airquality.Coordinate, weeks int) dashboard.View
	ClearCache(ctx context.Context)
}

// Deps are the components behind the API.
type Deps struct {
	AirQuality AirQuality
	Forecaster Forecaster
	Dashboard  Dashboard

	// DefaultLocation is used when a request has no lat/lng.
	DefaultLocation airquality.Coordinate
	Weeks           int
	HistoryDays     int
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Weeks <= 0 {
		deps.Weeks = forecast.DefaultWeeks
	}
	if deps.HistoryDays <= 0 {
		deps.HistoryDays = forecast.DefaultHistoryDays
	}

	v1 := app.Group("/api/v1")

	v1.Get("/air-quality/current", func(c *fiber.Ctx) error {
		loc, err := parseLocationQuery(c, deps.DefaultLocation)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reading := deps.AirQuality.FetchCurrent(c.UserContext(), loc.toCoordinate())
		return c.JSON(fiber.Map{
			"reading":  reading,
			"category": aqi.CategoryFor(reading.AQI),
		})
	})

	v1.Get("/air-quality/forecast", func(c *fiber.Ctx) error {
		var req forecastQuery
		if err := req.bind(c, deps); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		coord := req.Location.toCoordinate()
		return c.JSON(fiber.Map{
			"location": coord,
			"weeks":    req.Weeks,
			"forecast": deps.Forecaster.Predict(c.UserContext(), coord, req.Weeks),
		})
	})

	v1.Get("/air-quality/history", func(c *fiber.Ctx) error {
		req := historyQuery{Days: deps.HistoryDays}
		if s := c.Query("days"); s != "" {
			days, err := strconv.Atoi(s)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "days must be an integer")
			}
			req.Days = days
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		readings := deps.AirQuality.Recent(c.UserContext(), req.Days)
		return c.JSON(fiber.Map{
			"days":     req.Days,
			"count":    len(readings),
			"readings": readings,
		})
	})

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		var req forecastQuery
		if err := req.bind(c, deps); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(deps.Dashboard.Load(c.UserContext(), req.Location.toCoordinate(), req.Weeks))
	})

	v1.Post("/dashboard/refresh", func(c *fiber.Ctx) error {
		var req forecastQuery
		if err := req.bind(c, deps); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(deps.Dashboard.Refresh(c.UserContext(), req.Location.toCoordinate(), req.Weeks))
	})

	v1.Delete("/cache", func(c *fiber.Ctx) error {
		deps.Dashboard.ClearCache(c.UserContext())
		return c.JSON(fiber.Map{"cleared": true})
	})
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
}

func (l locationQuery) toCoordinate() airquality.Coordinate {
	return airquality.Coordinate{
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
	}
}

// parseLocationQuery reads lat and lng. Without either, def is used.
func parseLocationQuery(c *fiber.Ctx, def airquality.Coordinate) (locationQuery, error) {
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr == "" && lngStr == "" {
		return locationQuery{Latitude: def.Latitude, Longitude: def.Longitude}, nil
	}
	if latStr == "" || lngStr == "" {
		return locationQuery{}, errors.New("lat and lng must be given together")
	}

	var q locationQuery
	var err error
	if q.Latitude, err = strconv.ParseFloat(latStr, 64); err != nil {
		return q, errors.New("lat must be a number")
	}
	if q.Longitude, err = strconv.ParseFloat(lngStr, 64); err != nil {
		return q, errors.New("lng must be a number")
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// forecastQuery holds query parameters for the forecast and dashboard
// endpoints.
type forecastQuery struct {
	Location locationQuery
	Weeks    int `validate:"gte=1,lte=52"`
}

func (f *forecastQuery) bind(c *fiber.Ctx, deps Deps) error {
	loc, err := parseLocationQuery(c, deps.DefaultLocation)
	if err != nil {
		return err
	}
	f.Location = loc

	f.Weeks = deps.Weeks
	if s := c.Query("weeks"); s != "" {
		weeks, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("weeks must be an integer")
		}
		f.Weeks = weeks
	}

	return validate.Struct(f)
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Days int `validate:"gte=1,lte=90"`
}
