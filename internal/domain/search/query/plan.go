// Package query is the typed search plan: which relevance clauses run, under which
// hard filters, with how many candidates each.
package query

import (
	"github.com/kailas-cloud/bizdex/internal/domain/analysis"
	"github.com/kailas-cloud/bizdex/internal/domain/business"
	"github.com/kailas-cloud/bizdex/internal/domain/geo"
	"github.com/kailas-cloud/bizdex/internal/domain/search/filter"
)

// Kind names the shape of a plan.
type Kind string

// Plan kinds.
const (
	KindLexical  Kind = "lexical"
	KindSemantic Kind = "semantic"
	KindGeo      Kind = "geo"
	KindCombined Kind = "combined"
)

// Source is one candidate list the executor retrieves and fuses.
type Source string

// Sources in fusion order.
const (
	SourceLexical  Source = "lexical"
	SourceSemantic Source = "semantic"
	// SourceGeo ranks by distance alone; used when no relevance clause is present.
	SourceGeo Source = "geo"
)

// Field is a full-text attribute with its relative weight.
type Field struct {
	Name   string
	Weight float64
}

// DefaultFields orders activity description above names above free text.
var DefaultFields = []Field{
	{Name: business.FieldActivityDescription, Weight: 3},
	{Name: business.FieldLegalName, Weight: 2},
	{Name: business.FieldTradeName, Weight: 2},
	{Name: business.FieldDescription, Weight: 1},
}

// Term is an analyzed query term and the edit distance it tolerates.
type Term struct {
	Text     string
	Distance int
	Keyword  bool
}

// TermsFrom turns analyzed tokens into fuzzy terms. Keywords stay exact.
func TermsFrom(tokens []analysis.Token) []Term {
	terms := make([]Term, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, dup := seen[t.Text]; dup {
			continue
		}
		seen[t.Text] = struct{}{}
		d := 0
		if !t.Keyword {
			d = analysis.FuzzyDistance(t.Text)
		}
		terms = append(terms, Term{Text: t.Text, Distance: d, Keyword: t.Keyword})
	}
	return terms
}

// Lexical matches terms against weighted full-text fields.
type Lexical struct {
	terms  []Term
	fields []Field
}

// Terms returns the query terms.
func (l *Lexical) Terms() []Term { return l.terms }

// Fields returns the weighted fields.
func (l *Lexical) Fields() []Field { return l.fields }

// Semantic is a nearest-neighbour clause over document embeddings.
type Semantic struct {
	vector []float32
	k      int
}

// Vector returns the query embedding.
func (s *Semantic) Vector() []float32 { return s.vector }

// K returns the candidate pool size.
func (s *Semantic) K() int { return s.k }

// GeoFilter keeps documents within radiusKm of center.
type GeoFilter struct {
	center   geo.Point
	radiusKm float64
}

// Center returns the query point.
func (g *GeoFilter) Center() geo.Point { return g.center }

// RadiusKm returns the radius in kilometres.
func (g *GeoFilter) RadiusKm() float64 { return g.radiusKm }

// Contains reports whether p lies within the radius (great-circle distance).
func (g *GeoFilter) Contains(p *geo.Point) bool {
	if p == nil {
		return false
	}
	return g.center.DistanceKm(*p) <= g.radiusKm
}

// Plan is a compiled search. Every source runs under the same geo filter and
// exact-match filters.
type Plan struct {
	lexical    *Lexical
	semantic   *Semantic
	geo        *GeoFilter
	filters    filter.Expression
	size       int
	candidates int
}

// Kind returns the plan shape.
func (p Plan) Kind() Kind {
	switch {
	case p.lexical != nil && p.semantic == nil && p.geo == nil:
		return KindLexical
	case p.semantic != nil && p.lexical == nil && p.geo == nil:
		return KindSemantic
	case p.geo != nil && p.lexical == nil && p.semantic == nil:
		return KindGeo
	default:
		return KindCombined
	}
}

// Sources returns the candidate lists to retrieve, lexical first.
func (p Plan) Sources() []Source {
	var out []Source
	if p.lexical != nil {
		out = append(out, SourceLexical)
	}
	if p.semantic != nil {
		out = append(out, SourceSemantic)
	}
	if len(out) == 0 && p.geo != nil {
		out = append(out, SourceGeo)
	}
	return out
}

// Lexical returns the lexical clause or nil.
func (p Plan) Lexical() *Lexical { return p.lexical }

// Semantic returns the semantic clause or nil.
func (p Plan) Semantic() *Semantic { return p.semantic }

// Geo returns the radius filter or nil.
func (p Plan) Geo() *GeoFilter { return p.geo }

// Filters returns the exact-match and range constraints.
func (p Plan) Filters() filter.Expression { return p.filters }

// Size returns the page cap.
func (p Plan) Size() int { return p.size }

// Candidates returns how many hits each source retrieves before fusion.
func (p Plan) Candidates() int { return p.candidates }
