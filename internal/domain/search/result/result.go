// Package result holds the projected output of a search.
package result

import (
	"math"

	"github.com/kailas-cloud/bizdex/internal/domain/business"
)

// Hit is one backend match before fusion.
type Hit struct {
	ID       string
	Score    float64
	Document business.Document
}

// Ranked is a single search result as returned to callers.
type Ranked struct {
	document    business.Document
	score       float64
	distanceKm  float64
	hasDistance bool
}

// Project strips the embedding from doc and attaches the distance, rounded to
// two decimals, when distanceKm is non-nil.
func Project(doc business.Document, score float64, distanceKm *float64) Ranked {
	r := Ranked{document: doc.WithoutEmbedding(), score: score}
	if distanceKm != nil {
		r.distanceKm = math.Round(*distanceKm*100) / 100
		r.hasDistance = true
	}
	return r
}

// Document returns the projected document.
func (r *Ranked) Document() business.Document { return r.document }

// ID returns the document identifier.
func (r *Ranked) ID() string { return r.document.ID }

// Score returns the fused relevance score. Zero for geo-only plans.
func (r *Ranked) Score() float64 { return r.score }

// Distance returns the distance from the query point in km, if a location filter was supplied.
func (r *Ranked) Distance() (float64, bool) { return r.distanceKm, r.hasDistance }

// Page is an ordered, capped result list.
type Page struct {
	Items []Ranked
	// Total is the backend's match count for the widest clause.
	Total int
	// Plan names the executed plan kind.
	Plan string
	// Degraded is set when the semantic clause was dropped.
	Degraded bool
}

// Candidates is one source's hit list in backend rank order.
type Candidates struct {
	Hits []Hit
	// Total is the backend's match count before the candidate cap.
	Total int
}
