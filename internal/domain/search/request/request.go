package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/ondcsearch/internal/domain"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 512
	DefaultLimit   = 10
	MaxLimit       = 100
	DefaultPage    = 1
)

// Coordinates is a latitude/longitude pair used for catalog geofencing.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Params are the raw, unvalidated search inputs.
type Params struct {
	Query     string
	Latitude  *float64
	Longitude *float64
	Pincode   string
	Page      int
	Limit     int
	Threshold *float64
	Filters   Filters
}

// Request is a validated search query.
type Request struct {
	query     string
	coords    *Coordinates
	pincode   string
	page      int
	limit     int
	threshold *float64
	filters   Filters
}

// New validates and normalizes search parameters.
// Zero page/limit take defaults; negative values are contract violations.
// Limit above MaxLimit is clamped. Coordinates are used only when both are given.
func New(p Params) (Request, error) {
	query := strings.TrimSpace(p.Query)
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}

	limit := p.Limit
	switch {
	case limit < 0:
		return Request{}, fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidLimit, limit)
	case limit == 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	page := p.Page
	switch {
	case page < 0:
		return Request{}, fmt.Errorf("%w: page must be >= 1, got %d", domain.ErrInvalidPage, page)
	case page == 0:
		page = DefaultPage
	}

	if p.Threshold != nil && !(*p.Threshold >= 0 && *p.Threshold <= 1) {
		return Request{}, fmt.Errorf("%w: must be between 0 and 1, got %g", domain.ErrInvalidThreshold, *p.Threshold)
	}

	var coords *Coordinates
	if p.Latitude != nil && p.Longitude != nil {
		lat, lon := *p.Latitude, *p.Longitude
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return Request{}, fmt.Errorf("%w: coordinates out of range (%g, %g)", domain.ErrInvalidQuery, lat, lon)
		}
		coords = &Coordinates{Latitude: lat, Longitude: lon}
	}

	if err := p.Filters.Validate(); err != nil {
		return Request{}, err
	}

	var threshold *float64
	if p.Threshold != nil {
		t := *p.Threshold
		threshold = &t
	}

	return Request{
		query:     query,
		coords:    coords,
		pincode:   strings.TrimSpace(p.Pincode),
		page:      page,
		limit:     limit,
		threshold: threshold,
		filters:   p.Filters,
	}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Coordinates returns explicit caller coordinates (nil when absent).
func (r *Request) Coordinates() *Coordinates { return r.coords }

// Pincode returns the delivery pincode hint.
func (r *Request) Pincode() string { return r.pincode }

// Page returns the 1-based page number.
func (r *Request) Page() int { return r.page }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// Threshold returns the caller relevance threshold (nil means module default).
func (r *Request) Threshold() *float64 { return r.threshold }

// Filters returns the product filters.
func (r *Request) Filters() Filters { return r.filters }

// WithLimit returns a copy with a different result limit, used for over-fetching.
func (r Request) WithLimit(limit int) Request {
	if limit > 0 {
		r.limit = limit
	}
	return r
}

// WithPage returns a copy with a different page.
func (r Request) WithPage(page int) Request {
	if page > 0 {
		r.page = page
	}
	return r
}
