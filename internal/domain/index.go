package domain

// IndexStats summarizes the state of the search index.
type IndexStats struct {
	Name           string
	NumDocs        int
	Indexing       bool
	PercentIndexed float64
	Failures       int
}

// Ready reports whether every written document is searchable.
func (s IndexStats) Ready() bool {
	return !s.Indexing && s.PercentIndexed >= 1
}
