package request

import "github.com/kailas-cloud/ondcsearch/internal/domain/location"

// Keyword is one call to the catalog keyword search. Location is a geofencing hint only.
type Keyword struct {
	Text     string
	Location location.Hint
	Page     int
	Limit    int
}
