package search

import (
	"context"

	"github.com/kailas-cloud/bizdex/internal/domain/business"
	"github.com/kailas-cloud/bizdex/internal/domain/search/query"
	"github.com/kailas-cloud/bizdex/internal/domain/search/result"
)

// Retriever runs one source of a compiled plan against the backend.
type Retriever interface {
	Retrieve(ctx context.Context, src query.Source, p *query.Plan) (result.Candidates, error)
}

// QueryEmbedder vectorizes query text.
type QueryEmbedder interface {
	Available() bool
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// DocumentReader fetches stored documents by identity.
type DocumentReader interface {
	Get(ctx context.Context, id string) (business.Document, error)
}
