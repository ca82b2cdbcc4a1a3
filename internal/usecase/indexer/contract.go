package indexer

import (
	"context"
	"time"

	"github.com/kailas-cloud/bizdex/internal/domain/batch"
	"github.com/kailas-cloud/bizdex/internal/domain/business"
)

// Embedder turns search texts into vectors, one per text in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Writer persists documents and waits for them to become searchable.
type Writer interface {
	WriteBatch(ctx context.Context, docs []business.Document) ([]batch.Result, error)
	WaitIndexed(ctx context.Context, timeout time.Duration) error
}
