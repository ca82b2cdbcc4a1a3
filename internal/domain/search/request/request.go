package request

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/bizdex/internal/domain"
	"github.com/kailas-cloud/bizdex/internal/domain/business"
	"github.com/kailas-cloud/bizdex/internal/domain/geo"
	"github.com/kailas-cloud/bizdex/internal/domain/search/filter"
	"github.com/kailas-cloud/bizdex/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search text length.
	MaxQueryLength = 4096
	DefaultSize    = 10
	MaxSize        = 100
	// MaxRadiusKm is half the Earth's circumference.
	MaxRadiusKm = 20038
)

// GeoQuery is a radius filter around a point.
type GeoQuery struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// Request is a validated search query.
type Request struct {
	text       string
	searchMode mode.Mode
	geoQuery   *GeoQuery
	center     geo.Point
	size       int
	filters    filter.Expression
}

// New validates and normalizes search parameters.
// Defaults: mode=keyword, size=10. Size is clamped to MaxSize.
// Location errors wrap domain.ErrInvalidLocation; a request with neither text
// nor location fails with domain.ErrEmptyQuery.
func New(
	text string,
	m mode.Mode,
	geoQuery *GeoQuery,
	size int,
	filters filter.Expression,
) (Request, error) {
	text = strings.TrimSpace(text)
	if len(text) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: text too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if m == "" {
		m = mode.Keyword
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("%w: invalid search mode: %q", domain.ErrInvalidRequest, m)
	}

	var center geo.Point
	if geoQuery != nil {
		p, err := geo.NewPoint(geoQuery.Latitude, geoQuery.Longitude)
		if err != nil {
			return Request{}, fmt.Errorf("%w: %v", domain.ErrInvalidLocation, err)
		}
		r := geoQuery.RadiusKm
		if math.IsNaN(r) || r <= 0 || r > MaxRadiusKm {
			return Request{}, fmt.Errorf("%w: radius must be in (0, %d] km, got %v",
				domain.ErrInvalidLocation, MaxRadiusKm, r)
		}
		center = p
	}

	if text == "" && geoQuery == nil {
		return Request{}, domain.ErrEmptyQuery
	}
	if err := filters.Restrict(business.FilterableFields); err != nil {
		return Request{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}

	return Request{
		text:       text,
		searchMode: m,
		geoQuery:   geoQuery,
		center:     center,
		size:       size,
		filters:    filters,
	}, nil
}

// Text returns the trimmed free-text query.
func (r *Request) Text() string { return r.text }

// Mode returns the requested relevance signals.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// GeoQuery returns the radius filter (nil when absent).
func (r *Request) GeoQuery() *GeoQuery { return r.geoQuery }

// HasLocation reports whether a radius filter was supplied.
func (r *Request) HasLocation() bool { return r.geoQuery != nil }

// Center returns the validated query point. Zero when HasLocation is false.
func (r *Request) Center() geo.Point { return r.center }

// Size returns the page cap.
func (r *Request) Size() int { return r.size }

// Filters returns the exact-match and range constraints.
func (r *Request) Filters() filter.Expression { return r.filters }
