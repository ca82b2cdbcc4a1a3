package bizdex

import (
	"time"

	"github.com/kailas-cloud/bizdex/internal/domain"
	"github.com/kailas-cloud/bizdex/internal/domain/business"
)

// Defaults.
const (
	DefaultIndexName  = "estabelecimentos_v001"
	DefaultDimensions = domain.DefaultVectorDimensions
)

// Record is a raw establishment as exported by the registry.
type Record = business.Record

// Document is a normalized, indexed establishment.
type Document = business.Document

// Policy decides what Provision does when the index already exists.
type Policy string

// Existence policies.
const (
	PolicyFail     Policy = "fail"
	PolicySkip     Policy = "skip"
	PolicyRecreate Policy = "recreate"
)

// ProvisionResult reports what Provision did.
type ProvisionResult struct {
	Index          string
	Created        bool
	AlreadyExisted bool
	Recreated      bool
}

// IndexInfo summarizes the index.
type IndexInfo struct {
	Name           string
	Documents      int
	PercentIndexed float64
	Ready          bool
}

// RejectedRecord is an input record that failed normalization.
type RejectedRecord struct {
	// Position is the 0-based index in the input slice.
	Position int
	Err      error
}

// IndexReport summarizes an Index call.
type IndexReport struct {
	RunID     string
	Succeeded int
	Failed    int
	Rejected  []RejectedRecord
	Duration  time.Duration
}

// Near restricts a query to a circle.
type Near struct {
	Lat      float64
	Lon      float64
	RadiusKm float64
}

// Filters are exact-match constraints. Empty fields are ignored.
// Status accepts registry labels (ATIVA, BAIXADA, SUSPENSA).
type Filters struct {
	Status      string
	CompanySize string
	State       string
	City        string
}

// Query is a search request. At least Text or Near is required.
type Query struct {
	Text string
	Near *Near
	// Semantic adds vector search fused with the lexical results.
	Semantic bool
	// SemanticOnly drops the lexical clause.
	SemanticOnly bool
	// Size caps the results, default 10, max 100.
	Size    int
	Filters Filters
}

// Hit is a single search result.
type Hit struct {
	Document Document
	Score    float64
	// DistanceKm is set only when the query had a location.
	DistanceKm *float64
}

// Results is a page of hits.
type Results struct {
	Hits  []Hit
	Total int
	Plan  string
	// Degraded is set when a semantic query ran lexical-only.
	Degraded bool
}
