package mode

// Mode selects which relevance signals a request asks for.
type Mode string

// Search mode constants.
const (
	// Keyword runs lexical matching only.
	Keyword Mode = "keyword"
	// Hybrid fuses lexical matching with nearest-neighbour search over embeddings.
	Hybrid Mode = "hybrid"
	// Semantic runs nearest-neighbour search alone.
	Semantic Mode = "semantic"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Semantic || m == Keyword
}

// WantsLexical reports whether the mode asks for a lexical clause.
func (m Mode) WantsLexical() bool { return m != Semantic }

// WantsSemantic reports whether the mode asks for a query embedding.
func (m Mode) WantsSemantic() bool { return m == Hybrid || m == Semantic }

// FromFlags maps the semantic toggles of the CLI and the API onto a mode.
func FromFlags(semantic, semanticOnly bool) Mode {
	switch {
	case semanticOnly:
		return Semantic
	case semantic:
		return Hybrid
	default:
		return Keyword
	}
}
