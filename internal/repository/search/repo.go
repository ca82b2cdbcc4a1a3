package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/bizdex/internal/db"
	"github.com/kailas-cloud/bizdex/internal/domain"
	"github.com/kailas-cloud/bizdex/internal/domain/business"
	"github.com/kailas-cloud/bizdex/internal/domain/search/query"
	"github.com/kailas-cloud/bizdex/internal/domain/search/result"
	"github.com/kailas-cloud/bizdex/internal/repository/document"
)

// geoPadding widens the backend radius slightly; the exact great-circle
// check runs on the decoded documents.
const geoPadding = 1.001

const docField = "doc"

var docReturn = []db.ReturnField{{Path: "$.doc", As: docField}}

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo translates plan clauses into backend queries over one index.
type Repo struct {
	store     store
	indexName string
	keyPrefix string
	efRuntime int
}

// New creates a search repository.
func New(s store, indexName, keyPrefix string, efRuntime int) *Repo {
	return &Repo{store: s, indexName: indexName, keyPrefix: keyPrefix, efRuntime: efRuntime}
}

// Retrieve runs one source of p and returns its candidates in backend order.
// Every source honours the plan's filters and geo radius.
func (r *Repo) Retrieve(ctx context.Context, src query.Source, p *query.Plan) (result.Candidates, error) {
	var (
		sr  *db.SearchResult
		err error
	)
	switch src {
	case query.SourceLexical:
		sr, err = r.lexical(ctx, p)
	case query.SourceSemantic:
		sr, err = r.semantic(ctx, p)
	case query.SourceGeo:
		sr, err = r.nearest(ctx, p)
	default:
		return result.Candidates{}, fmt.Errorf("unknown source %q: %w", src, domain.ErrInvalidRequest)
	}
	if err != nil {
		return result.Candidates{}, fmt.Errorf("%s search on %s: %w: %w", src, r.indexName, domain.ErrBackendUnavailable, err)
	}
	return r.toCandidates(sr, p, src == query.SourceGeo)
}

func (r *Repo) lexical(ctx context.Context, p *query.Plan) (*db.SearchResult, error) {
	lex := p.Lexical()
	if lex == nil {
		return nil, fmt.Errorf("plan has no lexical clause")
	}
	fields := make([]db.WeightedField, len(lex.Fields()))
	for i, f := range lex.Fields() {
		fields[i] = db.WeightedField{Name: f.Name, Weight: f.Weight}
	}
	terms := make([]db.Term, len(lex.Terms()))
	for i, t := range lex.Terms() {
		terms[i] = db.Term{Text: t.Text, Distance: t.Distance, Keyword: t.Keyword}
	}
	return r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    r.indexName,
		Fields:       fields,
		Terms:        terms,
		KeywordField: business.FieldKeywords,
		Filters:      p.Filters(),
		Geo:          geoFilter(p),
		TopK:         p.Candidates(),
		Scorer:       db.ScorerBM25,
		ReturnFields: docReturn,
	})
}

func (r *Repo) semantic(ctx context.Context, p *query.Plan) (*db.SearchResult, error) {
	sem := p.Semantic()
	if sem == nil {
		return nil, fmt.Errorf("plan has no semantic clause")
	}
	return r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName,
		Field:        business.FieldEmbedding,
		Filters:      p.Filters(),
		Geo:          geoFilter(p),
		Vector:       sem.Vector(),
		K:            sem.K(),
		EFRuntime:    r.efRuntime,
		ReturnFields: docReturn,
	})
}

// nearest orders documents inside the radius by straight-line distance
// between ECEF vectors, which preserves great-circle order.
func (r *Repo) nearest(ctx context.Context, p *query.Plan) (*db.SearchResult, error) {
	g := p.Geo()
	if g == nil {
		return nil, fmt.Errorf("plan has no geo clause")
	}
	return r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName,
		Field:        business.FieldGeoVector,
		Filters:      p.Filters(),
		Geo:          geoFilter(p),
		Vector:       g.Center().Vector(),
		K:            p.Candidates(),
		ReturnFields: docReturn,
		RawScores:    true,
	})
}

func geoFilter(p *query.Plan) *db.GeoFilter {
	g := p.Geo()
	if g == nil {
		return nil
	}
	c := g.Center()
	return &db.GeoFilter{
		Field:  business.FieldLocation,
		Lon:    c.Lon(),
		Lat:    c.Lat(),
		Radius: g.RadiusKm() * geoPadding,
		Unit:   db.UnitKilometers,
	}
}

// toCandidates decodes entries and drops those outside the exact radius.
// Geo-only candidates carry no relevance score.
func (r *Repo) toCandidates(sr *db.SearchResult, p *query.Plan, membershipOnly bool) (result.Candidates, error) {
	if sr == nil {
		return result.Candidates{}, nil
	}
	out := result.Candidates{Total: sr.Total, Hits: make([]result.Hit, 0, len(sr.Entries))}
	for _, e := range sr.Entries {
		raw, ok := e.Fields[docField]
		if !ok {
			return result.Candidates{}, fmt.Errorf("entry %s: missing %s field", e.Key, docField)
		}
		doc, err := document.DecodeDoc(raw)
		if err != nil {
			return result.Candidates{}, fmt.Errorf("entry %s: %w", e.Key, err)
		}
		if doc.ID == "" {
			doc.ID = strings.TrimPrefix(e.Key, r.keyPrefix)
		}
		if g := p.Geo(); g != nil && !g.Contains(doc.Location) {
			continue
		}
		score := e.Score
		if membershipOnly {
			score = 0
		}
		out.Hits = append(out.Hits, result.Hit{ID: doc.ID, Score: score, Document: doc})
	}
	return out, nil
}
