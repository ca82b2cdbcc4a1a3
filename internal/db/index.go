package db

import (
	"errors"
	"strconv"
)

// DistanceMetric used by FT.SEARCH vector similarity queries.
type DistanceMetric string

const (
	// DistanceL2 is Euclidean distance.
	DistanceL2 DistanceMetric = "L2"
	// DistanceIP is inner product distance.
	DistanceIP DistanceMetric = "IP"
	// DistanceCosine is cosine distance.
	DistanceCosine DistanceMetric = "COSINE"
)

// VectorAlgorithm selects the indexing algorithm for vector fields in FT.CREATE.
type VectorAlgorithm string

const (
	// VectorHNSW uses the HNSW algorithm.
	VectorHNSW VectorAlgorithm = "HNSW"
	// VectorFlat uses the FLAT (brute-force) algorithm.
	VectorFlat VectorAlgorithm = "FLAT"
)

// IndexFieldType enumerates supported FT index field types.
type IndexFieldType int

const (
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric IndexFieldType = iota
	// IndexFieldTag is an exact-match field.
	IndexFieldTag
	// IndexFieldText is an analyzed full-text field.
	IndexFieldText
	// IndexFieldGeo is a "lon,lat" point.
	IndexFieldGeo
	// IndexFieldVector is a dense vector field.
	IndexFieldVector
)

// String returns the FT.CREATE keyword for the type.
func (t IndexFieldType) String() string {
	switch t {
	case IndexFieldNumeric:
		return "NUMERIC"
	case IndexFieldTag:
		return "TAG"
	case IndexFieldText:
		return "TEXT"
	case IndexFieldGeo:
		return "GEO"
	case IndexFieldVector:
		return "VECTOR"
	default:
		return "UNKNOWN(" + strconv.Itoa(int(t)) + ")"
	}
}

// IndexField describes a single field in an FT index schema.
type IndexField struct {
	Name  string // JSONPath for JSON storage, hash field otherwise
	Alias string // AS alias in FT.CREATE SCHEMA
	Type  IndexFieldType

	// TAG options
	TagSeparator     string
	TagCaseSensitive bool

	// TEXT options
	TextWeight float64 // 0 means backend default (1.0)
	TextNoStem bool

	Sortable bool

	// VECTOR options
	VectorAlgo        VectorAlgorithm
	VectorDim         int
	VectorDistance    DistanceMetric
	VectorM           int // HNSW M: max edges per node
	VectorEFConstruct int // HNSW EF_CONSTRUCTION: build-time candidate list
	VectorEFRuntime   int // HNSW EF_RUNTIME: default query-time candidate list
}

// Attr returns the name queries use for the field: the alias when set.
func (f *IndexField) Attr() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// IndexDefinition is a complete FT index definition used by FT.CREATE.
// Documents are always stored as JSON.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	// Language selects the stemmer for TEXT fields. Empty means backend default.
	Language string
	// Stopwords replaces the backend list. Nil keeps the default list.
	Stopwords []string
	Fields    []IndexField
}

// Field looks up a field by attribute name.
func (idx *IndexDefinition) Field(attr string) (IndexField, bool) {
	for i := range idx.Fields {
		if idx.Fields[i].Attr() == attr {
			return idx.Fields[i], true
		}
	}
	return IndexField{}, false
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool)
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		key := f.Attr()
		if seen[key] {
			return errors.New("duplicate field name: " + key)
		}
		seen[key] = true

		if f.TextWeight < 0 {
			return errors.New("negative text weight on field " + key)
		}
		if f.Type == IndexFieldVector {
			if f.VectorDim <= 0 {
				return errors.New("vector field requires positive DIM")
			}
			if f.VectorAlgo == VectorFlat && (f.VectorM > 0 || f.VectorEFConstruct > 0 || f.VectorEFRuntime > 0) {
				return errors.New("HNSW parameters on FLAT vector field " + key)
			}
		}
	}

	return nil
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}

// IndexInfo is the subset of FT.INFO the application reads.
type IndexInfo struct {
	Name           string
	NumDocs        int
	Indexing       bool
	PercentIndexed float64
	IndexFailures  int
}

// Ready reports whether the background indexer has caught up.
func (i *IndexInfo) Ready() bool {
	return !i.Indexing && i.PercentIndexed >= 1
}
