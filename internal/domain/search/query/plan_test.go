package query

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/bizdex/internal/domain"
	"github.com/kailas-cloud/bizdex/internal/domain/analysis"
	"github.com/kailas-cloud/bizdex/internal/domain/geo"
	"github.com/kailas-cloud/bizdex/internal/domain/search/filter"
)

func center(t *testing.T) geo.Point {
	t.Helper()
	p, err := geo.NewPoint(-23.5505, -46.6333)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func terms() []Term {
	return []Term{{Text: "granito", Distance: 2}}
}

func TestTermsFrom(t *testing.T) {
	got := TermsFrom([]analysis.Token{
		{Text: "extracao"},
		{Text: "cnpj", Keyword: true},
		{Text: "de"},
		{Text: "extracao"},
		{Text: "pao"},
	})
	want := []Term{
		{Text: "extracao", Distance: 2},
		{Text: "cnpj", Distance: 0, Keyword: true},
		{Text: "de", Distance: 0},
		{Text: "pao", Distance: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("term[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBuild_Kinds(t *testing.T) {
	vec := []float32{0.1, 0.2}
	tests := []struct {
		name    string
		build   func(b *Builder) *Builder
		kind    Kind
		sources []Source
	}{
		{"lexical", func(b *Builder) *Builder { return b.Match(terms()) }, KindLexical, []Source{SourceLexical}},
		{"semantic", func(b *Builder) *Builder { return b.Nearest(vec) }, KindSemantic, []Source{SourceSemantic}},
		{"geo", func(b *Builder) *Builder { return b.Within(center(t), 30) }, KindGeo, []Source{SourceGeo}},
		{"hybrid", func(b *Builder) *Builder { return b.Match(terms()).Nearest(vec) }, KindCombined,
			[]Source{SourceLexical, SourceSemantic}},
		{"lexical+geo", func(b *Builder) *Builder { return b.Match(terms()).Within(center(t), 30) }, KindCombined,
			[]Source{SourceLexical}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.build(NewBuilder(10)).Build()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Kind() != tt.kind {
				t.Errorf("Kind() = %q, want %q", p.Kind(), tt.kind)
			}
			got := p.Sources()
			if len(got) != len(tt.sources) {
				t.Fatalf("Sources() = %v, want %v", got, tt.sources)
			}
			for i := range got {
				if got[i] != tt.sources[i] {
					t.Errorf("Sources()[%d] = %q, want %q", i, got[i], tt.sources[i])
				}
			}
		})
	}
}

func TestBuild_Empty(t *testing.T) {
	_, err := NewBuilder(10).Match(nil).Build()
	if !errors.Is(err, domain.ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestBuild_Candidates(t *testing.T) {
	p, err := NewBuilder(10).Overfetch(1).Nearest([]float32{1}).Build()
	if err != nil {
		t.Fatal(err)
	}
	if p.Candidates() != 20 || p.Semantic().K() != 20 {
		t.Errorf("Candidates/K = %d/%d, want 20 (overfetch raised to 2)", p.Candidates(), p.Semantic().K())
	}

	p, _ = NewBuilder(10).Overfetch(5).Match(terms()).Build()
	if p.Candidates() != 50 {
		t.Errorf("Candidates() = %d, want 50", p.Candidates())
	}
}

func TestBuild_DefaultFieldWeights(t *testing.T) {
	p, _ := NewBuilder(10).Match(terms()).Build()
	fields := p.Lexical().Fields()
	if fields[0].Name != "activity_description" {
		t.Fatalf("highest field = %q", fields[0].Name)
	}
	for _, f := range fields[1:] {
		if f.Weight >= fields[0].Weight {
			t.Errorf("%s weight %v not below activity_description", f.Name, f.Weight)
		}
	}
	if fields[len(fields)-1].Name != "description" || fields[len(fields)-1].Weight != 1 {
		t.Errorf("lowest field = %+v", fields[len(fields)-1])
	}
}

func TestBuild_Errors(t *testing.T) {
	if _, err := NewBuilder(10).Within(center(t), 0).Build(); !errors.Is(err, domain.ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}
	if _, err := NewBuilder(10).Match(terms()).Nearest(nil).Build(); !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("expected ErrVectorDimMismatch, got %v", err)
	}
	if _, err := NewBuilder(0).Match(terms()).Build(); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestPlan_Filters(t *testing.T) {
	c, _ := filter.NewMatch("state", "SP")
	e, _ := filter.NewExpression([]filter.Condition{c}, nil)
	p, _ := NewBuilder(5).Match(terms()).Filter(e).Build()
	if len(p.Filters().Must()) != 1 {
		t.Errorf("Filters() = %+v", p.Filters())
	}
}

func TestGeoFilter_Contains(t *testing.T) {
	p, _ := NewBuilder(10).Within(center(t), 30).Build()
	g := p.Geo()

	// ~10 km north and ~40 km north of the center.
	near, _ := geo.NewPoint(-23.5505+10/111.195, -46.6333)
	far, _ := geo.NewPoint(-23.5505+40/111.195, -46.6333)
	if !g.Contains(&near) {
		t.Error("10 km point must be inside a 30 km radius")
	}
	if g.Contains(&far) {
		t.Error("40 km point must be outside a 30 km radius")
	}
	if g.Contains(nil) {
		t.Error("documents without a location never match")
	}
}
