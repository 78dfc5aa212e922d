package services

import (
	"math"
	"regexp"

	"zillow-scraper/models"
)

const earthRadiusKm = 6371.0

// coordinateBlocks are nested objects that may carry a position, in priority order.
var coordinateBlocks = []string{"latLong", "coordinates", "geo", "hdpData.homeInfo"}

// coordinateKeys are the accepted latitude/longitude key conventions.
var coordinateKeys = [][2]string{
	{"latitude", "longitude"},
	{"lat", "lon"},
	{"lat", "lng"},
}

// identifierKeys may embed a position, e.g. building zpids like "33.050133--96.92441".
var identifierKeys = []string{"zpid", "buildingId", "id", "lotId"}

var identifierCoordsRegexp = regexp.MustCompile(`^\s*(-?\d{1,3}\.\d+)\s*(?:,|-)\s*(-?\d{1,3}\.\d+)\s*$`)

type geoStrategy func(raw map[string]any) (models.Coordinates, bool)

var geoStrategies = []geoStrategy{
	coordsFromBlock,
	coordsFromTopLevel,
	coordsFromIdentifier,
}

// ResolveCoordinates returns the first valid position found in raw, trying
// a nested coordinate block, then top-level fields, then an identifier
// string. ok is false when nothing valid is found; zero is never invented.
func ResolveCoordinates(raw models.RawListing) (models.Coordinates, bool) {
	for _, strategy := range geoStrategies {
		if c, ok := strategy(raw); ok {
			return c, true
		}
	}
	return models.Coordinates{}, false
}

// ValidCoordinates reports whether lat/lon are finite and in range.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func coordsFromBlock(raw map[string]any) (models.Coordinates, bool) {
	for _, path := range coordinateBlocks {
		v, ok := lookup(raw, path)
		if !ok {
			continue
		}
		block, ok := asMap(v)
		if !ok {
			continue
		}
		if c, ok := coordsFromKeys(block); ok {
			return c, true
		}
	}
	return models.Coordinates{}, false
}

func coordsFromTopLevel(raw map[string]any) (models.Coordinates, bool) {
	return coordsFromKeys(raw)
}

func coordsFromKeys(m map[string]any) (models.Coordinates, bool) {
	for _, keys := range coordinateKeys {
		latV, okLat := m[keys[0]]
		lonV, okLon := m[keys[1]]
		if !okLat || !okLon {
			continue
		}
		lat, okLat := asFloat(latV)
		lon, okLon := asFloat(lonV)
		if okLat && okLon && ValidCoordinates(lat, lon) {
			return models.Coordinates{Latitude: lat, Longitude: lon}, true
		}
	}
	return models.Coordinates{}, false
}

func coordsFromIdentifier(raw map[string]any) (models.Coordinates, bool) {
	for _, key := range identifierKeys {
		s, ok := raw[key].(string)
		if !ok {
			continue
		}
		m := identifierCoordsRegexp.FindStringSubmatch(s)
		if len(m) != 3 {
			continue
		}
		lat, okLat := asFloat(m[1])
		lon, okLon := asFloat(m[2])
		if okLat && okLon && ValidCoordinates(lat, lon) {
			return models.Coordinates{Latitude: lat, Longitude: lon}, true
		}
	}
	return models.Coordinates{}, false
}

// HaversineKm is the great-circle distance between two points on a
// spherical Earth.
func HaversineKm(a, b models.Coordinates) float64 {
	phi1 := a.Latitude * math.Pi / 180
	phi2 := b.Latitude * math.Pi / 180
	dPhi := (b.Latitude - a.Latitude) * math.Pi / 180
	dLambda := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Centroid is the arithmetic mean of the listings' positions. Listings
// without coordinates are ignored; ok is false if none have any.
func Centroid(listings []*models.Listing) (models.Coordinates, int, bool) {
	var sumLat, sumLon float64
	n := 0
	for _, l := range listings {
		if !l.HasCoordinates() {
			continue
		}
		sumLat += *l.Latitude
		sumLon += *l.Longitude
		n++
	}
	if n == 0 {
		return models.Coordinates{}, 0, false
	}
	return models.Coordinates{Latitude: sumLat / float64(n), Longitude: sumLon / float64(n)}, n, true
}
