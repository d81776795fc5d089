package airquality

import "context"

// UnknownArea is the city name used outside every known metro area.
const UnknownArea = "Your Area"

type boundingBox struct {
	name           string
	minLat, maxLat float64
	minLng, maxLng float64
}

func (b boundingBox) contains(c Coordinate) bool {
	return c.Latitude >= b.minLat && c.Latitude <= b.maxLat &&
		c.Longitude >= b.minLng && c.Longitude <= b.maxLng
}

var metroAreas = []boundingBox{
	{"Delhi", 28.4, 28.9, 76.8, 77.4},
	{"Mumbai", 18.9, 19.3, 72.7, 72.9},
	{"Bangalore", 12.9, 13.2, 77.4, 77.8},
	{"Chennai", 13.0, 13.2, 80.2, 80.4},
	{"Kolkata", 22.4, 22.7, 88.2, 88.5},
	{"Hyderabad", 17.3, 17.5, 78.4, 78.6},
}

// BoundingBoxes resolves cities from a fixed table of metro-area boxes.
type BoundingBoxes struct{}

// ResolveCity returns the first metro area containing c, or UnknownArea.
func (BoundingBoxes) ResolveCity(_ context.Context, c Coordinate) string {
	return CityFor(c)
}

// CityFor is the table lookup behind BoundingBoxes.
func CityFor(c Coordinate) string {
	for _, b := range metroAreas {
		if b.contains(c) {
			return b.name
		}
	}
	return UnknownArea
}
