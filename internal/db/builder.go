package db

import (
	"strconv"
	"strings"
)

// IndexBuilder is a fluent builder for FT index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an FT index definition over JSON documents.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{
		def: IndexDefinition{Name: name},
	}
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Language sets the stemming language of TEXT fields.
func (b *IndexBuilder) Language(lang string) *IndexBuilder {
	b.def.Language = lang
	return b
}

// Stopwords replaces the backend stopword list. No words disables stopwords.
func (b *IndexBuilder) Stopwords(words ...string) *IndexBuilder {
	b.def.Stopwords = append([]string{}, words...)
	return b
}

// Numeric adds a NUMERIC field.
func (b *IndexBuilder) Numeric(path, alias string) *IndexBuilder {
	return b.add(IndexField{Name: path, Alias: alias, Type: IndexFieldNumeric})
}

// SortableNumeric adds a NUMERIC SORTABLE field.
func (b *IndexBuilder) SortableNumeric(path, alias string) *IndexBuilder {
	return b.add(IndexField{Name: path, Alias: alias, Type: IndexFieldNumeric, Sortable: true})
}

// Tag adds a TAG field.
func (b *IndexBuilder) Tag(path, alias string) *IndexBuilder {
	return b.add(IndexField{Name: path, Alias: alias, Type: IndexFieldTag})
}

// TagWithOpts adds a TAG field with custom separator and case sensitivity.
func (b *IndexBuilder) TagWithOpts(path, alias, separator string, caseSensitive bool) *IndexBuilder {
	return b.add(IndexField{
		Name:             path,
		Alias:            alias,
		Type:             IndexFieldTag,
		TagSeparator:     separator,
		TagCaseSensitive: caseSensitive,
	})
}

// Text adds a stemmed TEXT field with the given weight.
func (b *IndexBuilder) Text(path, alias string, weight float64) *IndexBuilder {
	return b.add(IndexField{Name: path, Alias: alias, Type: IndexFieldText, TextWeight: weight})
}

// TextNoStem adds a TEXT field matched verbatim.
func (b *IndexBuilder) TextNoStem(path, alias string) *IndexBuilder {
	return b.add(IndexField{Name: path, Alias: alias, Type: IndexFieldText, TextNoStem: true})
}

// Geo adds a GEO field holding "lon,lat".
func (b *IndexBuilder) Geo(path, alias string) *IndexBuilder {
	return b.add(IndexField{Name: path, Alias: alias, Type: IndexFieldGeo})
}

// VectorHNSW adds a VECTOR field with the HNSW algorithm.
func (b *IndexBuilder) VectorHNSW(
	path, alias string, dim int, distance DistanceMetric, m, efConstruct, efRuntime int,
) *IndexBuilder {
	return b.add(IndexField{
		Name:              path,
		Alias:             alias,
		Type:              IndexFieldVector,
		VectorAlgo:        VectorHNSW,
		VectorDim:         dim,
		VectorDistance:    distance,
		VectorM:           m,
		VectorEFConstruct: efConstruct,
		VectorEFRuntime:   efRuntime,
	})
}

// VectorFlat adds a VECTOR field with the FLAT (exact) algorithm.
func (b *IndexBuilder) VectorFlat(path, alias string, dim int, distance DistanceMetric) *IndexBuilder {
	return b.add(IndexField{
		Name:           path,
		Alias:          alias,
		Type:           IndexFieldVector,
		VectorAlgo:     VectorFlat,
		VectorDim:      dim,
		VectorDistance: distance,
	})
}

func (b *IndexBuilder) add(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	return &def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String returns a debug representation resembling the FT.CREATE command.
func (idx *IndexDefinition) String() string {
	parts := []string{"FT.CREATE", idx.Name, "ON", "JSON"}
	if len(idx.Prefixes) > 0 {
		parts = append(parts, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		parts = append(parts, idx.Prefixes...)
	}
	if idx.Language != "" {
		parts = append(parts, "LANGUAGE", idx.Language)
	}
	if idx.Stopwords != nil {
		parts = append(parts, "STOPWORDS", strconv.Itoa(len(idx.Stopwords)))
	}
	parts = append(parts, "SCHEMA")
	for i := range idx.Fields {
		f := &idx.Fields[i]
		parts = append(parts, f.Name)
		if f.Alias != "" {
			parts = append(parts, "AS", f.Alias)
		}
		parts = append(parts, f.Type.String())
		if f.Type == IndexFieldVector {
			parts = append(parts, string(f.VectorAlgo))
		}
	}
	return strings.Join(parts, " ")
}
