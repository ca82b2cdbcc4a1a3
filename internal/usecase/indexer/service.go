package indexer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bizdex/internal/domain/batch"
	"github.com/kailas-cloud/bizdex/internal/domain/business"
	"github.com/kailas-cloud/bizdex/internal/metrics"
)

// Defaults applied when Config leaves a field zero.
const (
	DefaultBatchSize      = 20
	DefaultRefreshTimeout = 30 * time.Second
)

// Config tunes a run.
type Config struct {
	BatchSize int
	// Workers > 1 processes batches concurrently on a bounded pool.
	Workers        int
	RefreshTimeout time.Duration
}

// Report summarizes a run.
type Report struct {
	RunID         string
	Batches       int
	Succeeded     int
	Failed        int
	FailedBatches int
	Duration      time.Duration
	// FirstErr is the first item failure seen, for operator output.
	FirstErr error
}

// Service embeds and writes documents in batches.
type Service struct {
	embed  Embedder
	docs   Writer
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// New creates an indexer.
func New(embed Embedder, docs Writer, cfg Config, logger *zap.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = DefaultRefreshTimeout
	}
	return &Service{embed: embed, docs: docs, cfg: cfg, logger: logger, now: time.Now}
}

// Run indexes docs batch by batch. A failed batch does not stop the run.
// Cancelling ctx stops scheduling new batches; the report covers the work done.
// After the last batch Run waits until the index has caught up.
func (s *Service) Run(ctx context.Context, docs []business.Document) (Report, error) {
	start := time.Now()
	rep := Report{RunID: uuid.NewString()}
	logger := s.logger.With(zap.String("run_id", rep.RunID))

	batches := partition(docs, s.cfg.BatchSize)
	logger.Info("Indexing started",
		zap.Int("documents", len(docs)),
		zap.Int("batches", len(batches)),
		zap.Int("workers", s.cfg.Workers),
	)

	var runErr error
	if s.cfg.Workers > 1 {
		runErr = s.runPooled(ctx, batches, &rep, logger)
	} else {
		runErr = s.runSequential(ctx, batches, &rep, logger)
	}

	if rep.Succeeded > 0 && runErr == nil {
		if err := s.docs.WaitIndexed(ctx, s.cfg.RefreshTimeout); err != nil {
			runErr = fmt.Errorf("visibility sync: %w", err)
		}
	}

	rep.Duration = time.Since(start)
	logger.Info("Indexing finished",
		zap.Int("batches", rep.Batches),
		zap.Int("succeeded", rep.Succeeded),
		zap.Int("failed", rep.Failed),
		zap.Int("failed_batches", rep.FailedBatches),
		zap.Duration("duration", rep.Duration),
		zap.Error(runErr),
	)
	return rep, runErr
}

func (s *Service) runSequential(ctx context.Context, batches [][]business.Document, rep *Report, logger *zap.Logger) error {
	for i, b := range batches {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("stopped before batch %d: %w", i, err)
		}
		rep.add(s.runBatch(ctx, i, b, logger))
	}
	return nil
}

// runPooled submits every batch exactly once to a bounded pool. Submit blocks
// while all workers are busy, so cancellation is noticed between batches.
func (s *Service) runPooled(ctx context.Context, batches [][]business.Document, rep *Report, logger *zap.Logger) error {
	pool, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		stopErr error
	)
	for i, b := range batches {
		if err := ctx.Err(); err != nil {
			stopErr = fmt.Errorf("stopped before batch %d: %w", i, err)
			break
		}
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			res := s.runBatch(ctx, i, b, logger)
			mu.Lock()
			rep.add(res)
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			rep.add(failBatch(b, fmt.Errorf("submit batch %d: %w", i, submitErr)))
			mu.Unlock()
		}
	}
	wg.Wait()
	return stopErr
}

// runBatch embeds and writes one batch and returns per-item results.
func (s *Service) runBatch(ctx context.Context, n int, docs []business.Document, logger *zap.Logger) []batch.Result {
	start := time.Now()
	defer func() { metrics.IndexerBatchDuration.Observe(time.Since(start).Seconds()) }()

	results := make([]batch.Result, len(docs))
	valid := make([]business.Document, 0, len(docs))
	pos := make([]int, 0, len(docs))
	for i := range docs {
		if err := docs[i].Validate(); err != nil {
			results[i] = batch.NewError(docs[i].ID, err)
			continue
		}
		valid = append(valid, docs[i])
		pos = append(pos, i)
	}

	if len(valid) > 0 {
		for j, r := range s.embedAndWrite(ctx, valid) {
			results[pos[j]] = r
		}
	}

	sum := batch.Summarize(results)
	status := "ok"
	switch {
	case sum.Succeeded == 0:
		status = "failed"
	case sum.Failed > 0:
		status = "partial"
	}
	metrics.IndexerBatchesTotal.WithLabelValues(status).Inc()
	metrics.IndexerDocumentsTotal.WithLabelValues(string(batch.StatusOK)).Add(float64(sum.Succeeded))
	metrics.IndexerDocumentsTotal.WithLabelValues(string(batch.StatusError)).Add(float64(sum.Failed))

	fields := []zap.Field{
		zap.Int("batch", n),
		zap.Int("size", len(docs)),
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("failed", sum.Failed),
	}
	if sum.FirstErr != nil {
		logger.Warn("Batch indexed with failures", append(fields, zap.Error(sum.FirstErr))...)
	} else {
		logger.Info("Batch indexed", fields...)
	}
	return results
}

func (s *Service) embedAndWrite(ctx context.Context, docs []business.Document) []batch.Result {
	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].SearchText()
	}

	vectors, err := s.embed.Embed(ctx, texts)
	if err == nil && len(vectors) != len(docs) {
		err = fmt.Errorf("got %d vectors for %d documents", len(vectors), len(docs))
	}
	if err != nil {
		return failBatch(docs, fmt.Errorf("embed: %w", err))
	}

	stamp := s.now().UTC().Truncate(time.Second)
	out := make([]business.Document, len(docs))
	for i := range docs {
		out[i] = docs[i]
		out[i].Embedding = vectors[i]
		out[i].IndexedAt = stamp
	}

	results, err := s.docs.WriteBatch(ctx, out)
	if err != nil {
		return failBatch(docs, fmt.Errorf("write: %w", err))
	}
	return results
}

func failBatch(docs []business.Document, err error) []batch.Result {
	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID
	}
	return batch.FailAll(ids, err)
}

func (r *Report) add(results []batch.Result) {
	sum := batch.Summarize(results)
	r.Batches++
	r.Succeeded += sum.Succeeded
	r.Failed += sum.Failed
	if sum.Failed > 0 {
		r.FailedBatches++
	}
	if r.FirstErr == nil {
		r.FirstErr = sum.FirstErr
	}
}

func partition(docs []business.Document, size int) [][]business.Document {
	out := make([][]business.Document, 0, (len(docs)+size-1)/size)
	for start := 0; start < len(docs); start += size {
		out = append(out, docs[start:min(start+size, len(docs))])
	}
	return out
}
