package airquality

import (
	"fmt"
	"time"
)

// DefaultCoordinate is used when the caller cannot supply a position
// (geolocation denied or unavailable).
var DefaultCoordinate = Coordinate{Latitude: 40.7128, Longitude: -74.0060}

// Coordinate is a position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Key returns the cache key for this coordinate: both components rounded to
// four decimals (about 11 m).
func (c Coordinate) Key() string {
	return fmt.Sprintf("%.4f-%.4f", c.Latitude, c.Longitude)
}

// Reading is a normalized "current air quality" record. AQI is always
// derived from PM25, else PM10, else the default index.
type Reading struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Pollutant concentrations; nil when not measured.
	PM25 *float64 `json:"pm25"`
	PM10 *float64 `json:"pm10"`
	NO2  *float64 `json:"no2"`
	O3   *float64 `json:"o3"`
	SO2  *float64 `json:"so2"`
	CO   *float64 `json:"co"`

	AQI int `json:"aqi"`

	Location  string    `json:"location"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	IsMock    bool      `json:"isMock"`
}

// Coordinate returns the reading's position.
func (r Reading) Coordinate() Coordinate {
	return Coordinate{Latitude: r.Latitude, Longitude: r.Longitude}
}

// Measurement is a single upstream pollutant value.
type Measurement struct {
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
}

// ApplyMeasurements copies the known pollutant parameters onto r. Unknown
// parameters are ignored; a repeated parameter keeps the last value.
func (r *Reading) ApplyMeasurements(ms []Measurement) {
	for _, m := range ms {
		v := m.Value
		switch m.Parameter {
		case "pm25":
			r.PM25 = &v
		case "pm10":
			r.PM10 = &v
		case "no2":
			r.NO2 = &v
		case "o3":
			r.O3 = &v
		case "so2":
			r.SO2 = &v
		case "co":
			r.CO = &v
		}
	}
}
