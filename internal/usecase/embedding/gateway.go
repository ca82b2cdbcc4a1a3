package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bizdex/internal/domain"
	"github.com/kailas-cloud/bizdex/internal/metrics"
)

// Defaults applied when Config leaves a field zero.
const (
	DefaultBatchSize  = 20
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 2
	DefaultBackoff    = 500 * time.Millisecond
)

// Config tunes the gateway.
type Config struct {
	Model      string
	Dimensions int
	// BatchSize caps the inputs of one provider call.
	BatchSize int
	// Timeout bounds each provider call, retries included separately.
	Timeout    time.Duration
	MaxRetries int
	// Backoff is the first retry delay; it doubles per attempt.
	Backoff time.Duration
}

func (c *Config) applyDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.Backoff <= 0 {
		c.Backoff = DefaultBackoff
	}
}

// BatchError reports the sub-batch that failed. Vectors for every input
// before Offset were returned alongside it.
type BatchError struct {
	Offset int
	Size   int
	Err    error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("embed inputs %d..%d: %v", e.Offset, e.Offset+e.Size-1, e.Err)
}

// Unwrap exposes both domain.ErrEmbeddingUnavailable and the cause.
func (e *BatchError) Unwrap() []error {
	return []error{domain.ErrEmbeddingUnavailable, e.Err}
}

// Gateway turns texts into vectors through the configured provider: sub-batching,
// per-call timeout, bounded retry on transient failures and a dimension check.
// A nil provider makes the gateway unavailable.
type Gateway struct {
	inner  domain.BatchEmbedder
	cfg    Config
	logger *zap.Logger
}

// NewGateway wraps a provider (possibly nil) with batching and retries.
func NewGateway(inner domain.BatchEmbedder, cfg Config, logger *zap.Logger) *Gateway {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{inner: inner, cfg: cfg, logger: logger}
}

// Available reports whether a provider is configured.
func (g *Gateway) Available() bool {
	return g != nil && g.inner != nil
}

// Embed returns one vector per text in input order. On a sub-batch failure it
// returns the vectors gathered so far together with a *BatchError.
func (g *Gateway) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if !g.Available() {
		return nil, fmt.Errorf("no embedding provider configured: %w", domain.ErrEmbeddingUnavailable)
	}
	if len(texts) == 0 {
		return nil, nil
	}

	start := time.Now()
	usage := domain.UsageFromContext(ctx)
	out := make([][]float32, 0, len(texts))
	tokens := 0

	for offset := 0; offset < len(texts); offset += g.cfg.BatchSize {
		end := min(offset+g.cfg.BatchSize, len(texts))
		chunk := texts[offset:end]

		res, err := g.embedChunk(ctx, chunk)
		if err != nil {
			g.logger.Error("Batch embedding request failed",
				zap.String("model", g.cfg.Model),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return out, &BatchError{Offset: offset, Size: len(chunk), Err: err}
		}

		out = append(out, res.Embeddings...)
		tokens += res.TotalTokens
		usage.AddTokens(res.TotalTokens)
	}

	g.logger.Debug("Batch embedding completed",
		zap.String("model", g.cfg.Model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", tokens),
	)
	return out, nil
}

// EmbedQuery embeds a single query text.
func (g *Gateway) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := g.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// HealthCheck probes the provider when it supports it.
func (g *Gateway) HealthCheck(ctx context.Context) error {
	if !g.Available() {
		return domain.ErrEmbeddingUnavailable
	}
	if hc, ok := g.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // caller adds context
	}
	return nil
}

// embedChunk calls the provider with retries. Rejections are not retried.
func (g *Gateway) embedChunk(ctx context.Context, chunk []string) (domain.BatchEmbeddingResult, error) {
	delay := g.cfg.Backoff
	var lastErr error

	for attempt := 0; attempt <= g.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.EmbeddingRetriesTotal.WithLabelValues(g.cfg.Model).Inc()
			g.logger.Warn("Retrying embedding request",
				zap.String("model", g.cfg.Model),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return domain.BatchEmbeddingResult{}, fmt.Errorf("%w (last error: %w)", ctx.Err(), lastErr)
			case <-t.C:
			}
			delay *= 2
		}

		res, err := g.call(ctx, chunk)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if errors.Is(err, domain.ErrEmbeddingRejected) ||
			errors.Is(err, domain.ErrVectorDimMismatch) || ctx.Err() != nil {
			break
		}
	}
	return domain.BatchEmbeddingResult{}, lastErr
}

func (g *Gateway) call(ctx context.Context, chunk []string) (domain.BatchEmbeddingResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	res, err := g.inner.BatchEmbed(callCtx, chunk)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("provider: %w", err)
	}
	if len(res.Embeddings) != len(chunk) {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("provider returned %d vectors for %d inputs: %w",
			len(res.Embeddings), len(chunk), domain.ErrEmbeddingUnavailable)
	}
	if g.cfg.Dimensions > 0 {
		for i, v := range res.Embeddings {
			if len(v) != g.cfg.Dimensions {
				return domain.BatchEmbeddingResult{}, fmt.Errorf("vector %d has %d dimensions, want %d: %w",
					i, len(v), g.cfg.Dimensions, domain.ErrVectorDimMismatch)
			}
		}
	}
	return res, nil
}
