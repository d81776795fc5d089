package dashboard

import "fmt"

// DefaultAlertThreshold is the index from which an alert is raised.
const DefaultAlertThreshold = 100

const defaultAlertLocation = "your area"

// Alert is a user-facing air quality warning.
type Alert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ShouldAlert reports whether aqi reaches threshold.
func ShouldAlert(aqi, threshold int) bool {
	return aqi >= threshold
}

// AlertFor returns the warning for aqi in location. Indices up to 100 have no
// warning.
func AlertFor(aqi int, location string) (Alert, bool) {
	if location == "" {
		location = defaultAlertLocation
	}

	switch {
	case aqi >= 301:
		return Alert{
			Title:   "Hazardous Air Quality",
			Message: fmt.Sprintf("Hazardous air quality (AQI: %d) in %s. Stay indoors and avoid all outdoor activities.", aqi, location),
		}, true
	case aqi >= 201:
		return Alert{
			Title:   "Very Unhealthy Air",
			Message: fmt.Sprintf("Very unhealthy air quality (AQI: %d) in %s. Avoid outdoor activities and keep windows closed.", aqi, location),
		}, true
	case aqi >= 151:
		return Alert{
			Title:   "Unhealthy Air Quality",
			Message: fmt.Sprintf("Unhealthy air quality (AQI: %d) in %s. Limit outdoor exposure, especially for sensitive groups.", aqi, location),
		}, true
	case aqi >= 101:
		return Alert{
			Title:   "Air Quality Notice",
			Message: fmt.Sprintf("Air quality unhealthy for sensitive groups (AQI: %d) in %s. Take precautions if you have respiratory issues.", aqi, location),
		}, true
	}
	return Alert{}, false
}
