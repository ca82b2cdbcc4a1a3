package search

import (
	"math"
	"slices"
	"testing"

	"github.com/kailas-cloud/bizdex/internal/domain/geo"
	"github.com/kailas-cloud/bizdex/internal/domain/search/query"
	"github.com/kailas-cloud/bizdex/internal/domain/search/result"
)

func lexicalPlan(t *testing.T, size int) *query.Plan {
	t.Helper()
	p, err := query.NewBuilder(size).Match([]query.Term{{Text: "granito"}}).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return &p
}

func hybridPlan(t *testing.T, size int) *query.Plan {
	t.Helper()
	p, err := query.NewBuilder(size).
		Match([]query.Term{{Text: "granito"}}).
		Nearest([]float32{1, 0}).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return &p
}

func fusedIDs(fs []fused) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.hit.ID
	}
	return out
}

func TestFuseRRF_BothListsWin(t *testing.T) {
	p := hybridPlan(t, 10)
	lists := []result.Candidates{
		candidates(2, hit("a", 9, nil), hit("b", 8, nil)),
		candidates(2, hit("b", 0.9, nil), hit("c", 0.8, nil)),
	}
	got := fuseRRF(p, []query.Source{query.SourceLexical, query.SourceSemantic}, lists)

	if want := []string{"b", "a", "c"}; !slices.Equal(fusedIDs(got), want) {
		t.Fatalf("order = %v, want %v", fusedIDs(got), want)
	}
	wantB := 1.0/62 + 1.0/61
	if math.Abs(got[0].score-wantB) > 1e-12 {
		t.Errorf("score(b) = %v, want %v", got[0].score, wantB)
	}
	if got[0].distance != nil {
		t.Error("distance must be unset without a location")
	}
}

func TestFuseRRF_Monotonic(t *testing.T) {
	p := hybridPlan(t, 10)
	// x and y hold the same rank in the lexical list; only x is also in the semantic list.
	lists := []result.Candidates{
		candidates(2, hit("y", 5, nil), hit("x", 5, nil)),
		candidates(1, hit("x", 0.7, nil)),
	}
	got := fuseRRF(p, []query.Source{query.SourceLexical, query.SourceSemantic}, lists)
	if got[0].hit.ID != "x" {
		t.Fatalf("x appears in both lists and must rank first, got %v", fusedIDs(got))
	}
	if got[0].score <= got[1].score {
		t.Errorf("score(x) %v must exceed score(y) %v", got[0].score, got[1].score)
	}
}

func TestFuseRRF_CompetitionRanks(t *testing.T) {
	p := lexicalPlan(t, 10)
	lists := []result.Candidates{
		candidates(3, hit("a", 5, nil), hit("b", 5, nil), hit("c", 3, nil)),
	}
	got := fuseRRF(p, []query.Source{query.SourceLexical}, lists)

	if got[0].score != got[1].score {
		t.Errorf("tied backend scores must share a rank: %v vs %v", got[0].score, got[1].score)
	}
	if want := 1.0 / 63; math.Abs(got[2].score-want) > 1e-12 {
		t.Errorf("score(c) = %v, want 1/63", got[2].score)
	}
	// stable: first-seen order among ties
	if want := []string{"a", "b", "c"}; !slices.Equal(fusedIDs(got), want) {
		t.Errorf("order = %v, want %v", fusedIDs(got), want)
	}
}

func TestFuseRRF_TiesBrokenByDistance(t *testing.T) {
	center, _ := geo.NewPoint(-23.5505, -46.6333)
	p, err := query.NewBuilder(10).
		Match([]query.Term{{Text: "granito"}}).
		Within(center, 50).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	far, _ := geo.NewPoint(-23.19, -46.6333)
	near, _ := geo.NewPoint(-23.4605, -46.6333)

	lists := []result.Candidates{
		candidates(2, hit("far", 4, &far), hit("near", 4, &near)),
	}
	got := fuseRRF(&p, []query.Source{query.SourceLexical}, lists)
	if want := []string{"near", "far"}; !slices.Equal(fusedIDs(got), want) {
		t.Fatalf("order = %v, want %v", fusedIDs(got), want)
	}
	if got[0].distance == nil || *got[0].distance > 11 {
		t.Errorf("near distance = %v", got[0].distance)
	}
}

func TestFuseRRF_GeoOnlyScoresZero(t *testing.T) {
	center, _ := geo.NewPoint(-23.5505, -46.6333)
	p, err := query.NewBuilder(10).Within(center, 50).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	far, _ := geo.NewPoint(-23.19, -46.6333)
	near, _ := geo.NewPoint(-23.4605, -46.6333)

	lists := []result.Candidates{candidates(2, hit("far", 0, &far), hit("near", 0, &near))}
	got := fuseRRF(&p, []query.Source{query.SourceGeo}, lists)

	if want := []string{"near", "far"}; !slices.Equal(fusedIDs(got), want) {
		t.Fatalf("order = %v, want %v", fusedIDs(got), want)
	}
	for _, f := range got {
		if f.score != 0 {
			t.Errorf("%s: geo-only score = %v, want 0", f.hit.ID, f.score)
		}
	}
}

func TestFuseRRF_CapsAtSize(t *testing.T) {
	p := lexicalPlan(t, 2)
	lists := []result.Candidates{
		candidates(10, hit("a", 3, nil), hit("b", 2, nil), hit("c", 1, nil)),
	}
	got := fuseRRF(p, []query.Source{query.SourceLexical}, lists)
	if want := []string{"a", "b"}; !slices.Equal(fusedIDs(got), want) {
		t.Errorf("order = %v, want %v", fusedIDs(got), want)
	}
}

func TestCompetitionRanks(t *testing.T) {
	hits := []result.Hit{{Score: 9}, {Score: 7}, {Score: 7}, {Score: 1}}
	if got, want := competitionRanks(hits), []int{1, 2, 2, 4}; !slices.Equal(got, want) {
		t.Errorf("ranks = %v, want %v", got, want)
	}
}

func TestCompetitionRanks_NegativeSimilarities(t *testing.T) {
	hits := []result.Hit{{Score: 0.4}, {Score: -0.2}, {Score: -0.5}, {Score: -0.9}}
	if got, want := competitionRanks(hits), []int{1, 2, 3, 4}; !slices.Equal(got, want) {
		t.Errorf("ranks = %v, want %v", got, want)
	}
}
