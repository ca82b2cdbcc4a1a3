package search

import (
	"sort"

	"github.com/kailas-cloud/bizdex/internal/domain/search/query"
	"github.com/kailas-cloud/bizdex/internal/domain/search/result"
)

// rrfK is the Reciprocal Rank Fusion constant (Cormack et al. 2009).
const rrfK = 60

type fused struct {
	hit      result.Hit
	score    float64
	distance *float64
}

// fuseRRF merges per-source candidate lists.
// score(d) = sum of 1/(k + rank_i(d)) over the relevance lists containing d.
// Ranks are competition ranks: equal backend scores share a rank.
// The geo source contributes membership only, so geo-only plans score 0.
// Sorting is by score desc, then distance asc when the plan has a location;
// remaining ties keep first-seen order (lexical before semantic).
func fuseRRF(p *query.Plan, sources []query.Source, lists []result.Candidates) []fused {
	merged := make(map[string]*fused)
	order := make([]*fused, 0)

	for i, list := range lists {
		relevance := sources[i] != query.SourceGeo
		ranks := competitionRanks(list.Hits)
		for j, h := range list.Hits {
			f, ok := merged[h.ID]
			if !ok {
				f = &fused{hit: h}
				merged[h.ID] = f
				order = append(order, f)
			}
			if relevance {
				f.score += 1.0 / float64(rrfK+ranks[j])
			}
		}
	}

	if g := p.Geo(); g != nil {
		center := g.Center()
		for _, f := range order {
			if loc := f.hit.Document.Location; loc != nil {
				d := center.DistanceKm(*loc)
				f.distance = &d
			}
		}
	}

	out := make([]fused, len(order))
	for i, f := range order {
		out[i] = *f
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		di, dj := out[i].distance, out[j].distance
		if di != nil && dj != nil {
			return *di < *dj
		}
		return false
	})

	if len(out) > p.Size() {
		out = out[:p.Size()]
	}
	return out
}

// competitionRanks assigns 1-based ranks to hits in backend order; a hit whose
// score equals its predecessor's shares that rank ("1224" ranking).
func competitionRanks(hits []result.Hit) []int {
	ranks := make([]int, len(hits))
	for i, h := range hits {
		if i > 0 && h.Score == hits[i-1].Score {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}
	return ranks
}
