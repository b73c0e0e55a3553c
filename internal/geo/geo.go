// internal/geo/geo.go
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// earthRadius is Earth's radius in meters.
const earthRadius = 6371000.0

// ErrInvalidCoords is wrapped by every parse failure.
var ErrInvalidCoords = fmt.Errorf("invalid coordinates")

// Parse разбирает строку "lat,lon" в пару координат.
func Parse(coords string) (lat, lon float64, err error) {
	parts := strings.Split(strings.TrimSpace(coords), ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidCoords, coords)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad latitude %q", ErrInvalidCoords, parts[0])
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad longitude %q", ErrInvalidCoords, parts[1])
	}
	if lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoords, lat)
	}
	if lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoords, lon)
	}
	return lat, lon, nil
}

// Format renders a coordinate pair back into the stored "lat,lon" form.
func Format(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
}

// Distance calculates the great-circle distance between two points in meters.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	// Haversine formula
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Check is the outcome of a geofence validation.
type Check struct {
	WithinRange    bool    `json:"within_range"`
	DistanceMeters float64 `json:"distance_meters"`
}

// Validate parses both coordinate strings and compares the distance between
// them against maxDistanceMeters.
func Validate(userCoords, siteCoords string, maxDistanceMeters float64) (Check, error) {
	userLat, userLon, err := Parse(userCoords)
	if err != nil {
		return Check{}, err
	}
	siteLat, siteLon, err := Parse(siteCoords)
	if err != nil {
		return Check{}, err
	}
	d := Distance(userLat, userLon, siteLat, siteLon)
	return Check{WithinRange: d <= maxDistanceMeters, DistanceMeters: d}, nil
}
