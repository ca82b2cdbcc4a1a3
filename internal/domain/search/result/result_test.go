package result

import (
	"testing"

	"github.com/kailas-cloud/bizdex/internal/domain/business"
)

func TestProject_StripsEmbedding(t *testing.T) {
	doc := business.Document{ID: "1", LegalName: "Granitos SA", Embedding: []float32{0.1, 0.2}}
	r := Project(doc, 0.5, nil)

	if r.Document().Embedding != nil {
		t.Errorf("Embedding = %v, want nil", r.Document().Embedding)
	}
	if doc.Embedding == nil {
		t.Error("Project must not mutate the input document")
	}
	if r.ID() != "1" || r.Score() != 0.5 {
		t.Errorf("ID/Score = %q/%v", r.ID(), r.Score())
	}
	if _, ok := r.Distance(); ok {
		t.Error("distance must be absent without a location filter")
	}
}

func TestProject_RoundsDistance(t *testing.T) {
	d := 10.2371
	r := Project(business.Document{ID: "1"}, 0, &d)
	got, ok := r.Distance()
	if !ok {
		t.Fatal("distance missing")
	}
	if got != 10.24 {
		t.Errorf("Distance() = %v, want 10.24", got)
	}
}

func TestProject_ZeroDistanceIsPresent(t *testing.T) {
	d := 0.0
	r := Project(business.Document{ID: "1"}, 0, &d)
	if _, ok := r.Distance(); !ok {
		t.Error("zero distance must still be reported")
	}
}
