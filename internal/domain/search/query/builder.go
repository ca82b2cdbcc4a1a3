package query

import (
	"fmt"

	"github.com/kailas-cloud/bizdex/internal/domain"
	"github.com/kailas-cloud/bizdex/internal/domain/geo"
	"github.com/kailas-cloud/bizdex/internal/domain/search/filter"
)

// MinOverfetch is the smallest candidate multiplier over the page size.
const MinOverfetch = 2

// Builder composes a Plan clause by clause.
type Builder struct {
	plan      Plan
	overfetch int
	err       error
}

// NewBuilder starts a plan capped at size results.
func NewBuilder(size int) *Builder {
	return &Builder{plan: Plan{size: size}, overfetch: MinOverfetch}
}

// Overfetch sets the candidate multiplier. Values below MinOverfetch are raised.
func (b *Builder) Overfetch(n int) *Builder {
	if n < MinOverfetch {
		n = MinOverfetch
	}
	b.overfetch = n
	return b
}

// Match adds a lexical clause. No terms means no clause.
func (b *Builder) Match(terms []Term, fields ...Field) *Builder {
	if len(terms) == 0 {
		return b
	}
	if len(fields) == 0 {
		fields = DefaultFields
	}
	b.plan.lexical = &Lexical{terms: terms, fields: fields}
	return b
}

// Nearest adds a semantic clause over vector.
func (b *Builder) Nearest(vector []float32) *Builder {
	if len(vector) == 0 {
		b.fail(fmt.Errorf("%w: empty query vector", domain.ErrVectorDimMismatch))
		return b
	}
	b.plan.semantic = &Semantic{vector: vector}
	return b
}

// Within adds a hard radius filter.
func (b *Builder) Within(center geo.Point, radiusKm float64) *Builder {
	if radiusKm <= 0 {
		b.fail(fmt.Errorf("%w: radius must be positive", domain.ErrInvalidLocation))
		return b
	}
	b.plan.geo = &GeoFilter{center: center, radiusKm: radiusKm}
	return b
}

// Filter sets the exact-match and range constraints.
func (b *Builder) Filter(e filter.Expression) *Builder {
	b.plan.filters = e
	return b
}

// Build validates the composition and returns the plan.
func (b *Builder) Build() (Plan, error) {
	if b.err != nil {
		return Plan{}, b.err
	}
	if b.plan.size <= 0 {
		return Plan{}, fmt.Errorf("%w: size must be positive", domain.ErrInvalidRequest)
	}
	if len(b.plan.Sources()) == 0 {
		return Plan{}, domain.ErrEmptyQuery
	}
	p := b.plan
	p.candidates = p.size * b.overfetch
	if p.semantic != nil {
		s := *p.semantic
		s.k = p.candidates
		p.semantic = &s
	}
	return p, nil
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}
