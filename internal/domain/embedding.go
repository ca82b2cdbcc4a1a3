package domain

import "context"

// BatchEmbedder vectorizes multiple texts in a single provider call.
// Embeddings[i] belongs to texts[i].
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// BatchEmbeddingResult carries embedding vectors and aggregate token usage through the decorator chain.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// DefaultVectorDimensions is the embedding width of text-embedding-3-small.
const DefaultVectorDimensions = 1536
