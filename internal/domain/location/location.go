// Package location resolves the geofencing hint sent to the catalog API.
package location

import "strings"

// Default location: central Bangalore.
const (
	DefaultLatitude  = 12.9719
	DefaultLongitude = 77.5937
	DefaultCityCode  = "std:080"
)

// Hint is the location context for the keyword search. It is used by the upstream
// catalog for geofencing only, never for ranking.
type Hint struct {
	Latitude  float64
	Longitude float64
	// CityCode is the ONDC "std:<code>" city; empty when the caller gave coordinates.
	CityCode string
	Source   Source
}

// Source records how a hint was derived.
type Source string

// Hint sources.
const (
	SourceCoordinates Source = "coordinates"
	SourcePincode     Source = "pincode"
	SourceDefault     Source = "default"
)

type area struct {
	lat, lon float64
	std      string
}

var pincodes = map[string]area{
	"110001": {28.6333, 77.2167, "011"},
	"110002": {28.6369, 77.2183, "011"},
	"110003": {28.6517, 77.2219, "011"},
	"400001": {18.9388, 72.8354, "022"},
	"400002": {18.9484, 72.8327, "022"},
	"400003": {18.9547, 72.8302, "022"},
	"560001": {12.9719, 77.5937, "080"},
	"560002": {12.9634, 77.5855, "080"},
	"560034": {12.9565, 77.7004, "080"},
	"600001": {13.0827, 80.2707, "044"},
	"600002": {13.0878, 80.2785, "044"},
	"500001": {17.3850, 78.4867, "040"},
	"500002": {17.3616, 78.4747, "040"},
	"411001": {18.5204, 73.8567, "020"},
	"411002": {18.5074, 73.8907, "020"},
	"140301": {30.7455, 76.6357, "0172"},
	"160001": {30.7333, 76.7794, "0172"},
	"160002": {30.7370, 76.7880, "0172"},
}

// Default returns the fallback hint.
func Default() Hint {
	return Hint{
		Latitude:  DefaultLatitude,
		Longitude: DefaultLongitude,
		CityCode:  DefaultCityCode,
		Source:    SourceDefault,
	}
}

// Resolve picks explicit coordinates first, then a known pincode, then the default.
// An unknown pincode falls back to the default location.
func Resolve(lat, lon *float64, pincode string) Hint {
	if lat != nil && lon != nil {
		return Hint{Latitude: *lat, Longitude: *lon, Source: SourceCoordinates}
	}
	if a, ok := pincodes[strings.TrimSpace(pincode)]; ok {
		return Hint{Latitude: a.lat, Longitude: a.lon, CityCode: "std:" + a.std, Source: SourcePincode}
	}
	return Default()
}

// CityCode returns the ONDC city code for a pincode, defaulting to Bangalore.
func CityCode(pincode string) string {
	if a, ok := pincodes[strings.TrimSpace(pincode)]; ok {
		return "std:" + a.std
	}
	return DefaultCityCode
}
