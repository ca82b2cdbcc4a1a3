package db

import "github.com/kailas-cloud/bizdex/internal/domain/search/filter"

// Scorer names an FT.SEARCH text scoring function.
type Scorer string

const (
	// ScorerBM25 is the standard BM25 scorer.
	ScorerBM25 Scorer = "BM25STD"
)

// DistanceUnit is a GEO filter unit.
type DistanceUnit string

// Geo filter units.
const (
	UnitKilometers DistanceUnit = "km"
	UnitMeters     DistanceUnit = "m"
)

// GeoFilter restricts a query to points within Radius of (Lon, Lat).
type GeoFilter struct {
	Field  string
	Lon    float64
	Lat    float64
	Radius float64
	Unit   DistanceUnit
}

// WeightedField is a TEXT attribute matched with a relative weight.
type WeightedField struct {
	Name   string
	Weight float64
}

// Term is one query word. Distance > 0 enables fuzzy matching.
// Keyword terms are matched exactly, also against KeywordField.
type Term struct {
	Text     string
	Distance int
	Keyword  bool
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Field        string
	Filters      filter.Expression
	Geo          *GeoFilter
	Vector       []float32
	K            int
	EFRuntime    int
	ReturnFields []ReturnField
	RawScores    bool // return __vector_score as-is (L2 distance for geo ordering)
}

// TextQuery is the input for weighted full-text search.
type TextQuery struct {
	IndexName    string
	Fields       []WeightedField
	Terms        []Term
	KeywordField string
	Filters      filter.Expression
	Geo          *GeoFilter
	TopK         int
	Scorer       Scorer
	ReturnFields []ReturnField
}

// ReturnField projects a path (optionally renamed) into the result.
type ReturnField struct {
	Path string
	As   string
}

// Name returns the key the field has in SearchEntry.Fields.
func (r ReturnField) Name() string {
	if r.As != "" {
		return r.As
	}
	return r.Path
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
