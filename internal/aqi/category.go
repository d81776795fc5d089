package aqi

// Category describes an AQI band for display.
type Category struct {
	Key    string   `json:"key"`
	Level  string   `json:"level"`
	Color  string   `json:"color"`
	Health string   `json:"health"`
	Tips   []string `json:"tips"`

	// Floor is the lowest index value of the band.
	Floor int `json:"floor"`
}

// categories are ordered by Floor ascending.
var categories = []Category{
	{
		Key:    "good",
		Floor:  0,
		Level:  "Good",
		Color:  "#00E400",
		Health: "Air quality is satisfactory",
		Tips: []string{
			"Perfect day for outdoor activities!",
			"Great air quality for exercise and outdoor events",
			"Keep windows open for fresh air ventilation",
		},
	},
	{
		Key:    "moderate",
		Floor:  51,
		Level:  "Moderate",
		Color:  "#FFFF00",
		Health: "Acceptable air quality",
		Tips: []string{
			"Generally acceptable for most activities",
			"Unusually sensitive people should consider reducing prolonged outdoor exertion",
			"Good day for light outdoor activities",
		},
	},
	{
		Key:    "unhealthy_sensitive",
		Floor:  101,
		Level:  "Unhealthy for Sensitive Groups",
		Color:  "#FF7E00",
		Health: "Members of sensitive groups may experience health effects",
		Tips: []string{
			"Sensitive groups should reduce outdoor activities",
			"People with heart or lung disease, older adults, and children should limit prolonged exertion",
			"Consider wearing a mask if you have respiratory issues",
		},
	},
	{
		Key:    "unhealthy",
		Floor:  151,
		Level:  "Unhealthy",
		Color:  "#FF0000",
		Health: "Everyone may begin to experience health effects",
		Tips: []string{
			"Everyone should reduce outdoor activities",
			"Avoid prolonged exertion outdoors",
			"Keep windows closed and use air purifiers",
			"Sensitive groups should avoid outdoor activities",
		},
	},
	{
		Key:    "very_unhealthy",
		Floor:  201,
		Level:  "Very Unhealthy",
		Color:  "#8F3F97",
		Health: "Health warnings of emergency conditions",
		Tips: []string{
			"Avoid all outdoor activities",
			"Stay indoors with windows closed",
			"Use air purifiers with HEPA filters",
			"Wear N95 masks if going outside is necessary",
		},
	},
	{
		Key:    "hazardous",
		Floor:  301,
		Level:  "Hazardous",
		Color:  "#7E0023",
		Health: "Health alert: everyone may experience more serious health effects",
		Tips: []string{
			"Remain indoors and keep activity levels low",
			"Use high-efficiency air purifiers",
			"Follow emergency instructions from local authorities",
			"Avoid any outdoor exposure",
		},
	},
}

// CategoryFor returns the band containing aqi. Values below zero map to the
// first band.
func CategoryFor(aqi int) Category {
	for i := len(categories) - 1; i >= 0; i-- {
		if aqi >= categories[i].Floor {
			return categories[i]
		}
	}
	return categories[0]
}

// Categories returns all bands ordered by floor.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}
