package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/bizdex/internal/db"
	"github.com/kailas-cloud/bizdex/internal/domain"
	"github.com/kailas-cloud/bizdex/internal/domain/analysis"
	"github.com/kailas-cloud/bizdex/internal/domain/batch"
	"github.com/kailas-cloud/bizdex/internal/domain/business"
)

const pollInterval = 100 * time.Millisecond

// store is the consumer interface for documents (ISP).
type store interface {
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) []error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error)
}

// Repo writes and reads establishments under one index's key prefix.
type Repo struct {
	store     store
	indexName string
	keyPrefix string
	analyzer  *analysis.Analyzer
}

// New creates a document repository.
func New(s store, indexName, keyPrefix string, a *analysis.Analyzer) *Repo {
	return &Repo{store: s, indexName: indexName, keyPrefix: keyPrefix, analyzer: a}
}

// Key returns the storage key of a document ID.
func (r *Repo) Key(id string) string {
	return r.keyPrefix + id
}

// WriteBatch stores docs in one pipelined round trip. Writes are idempotent by ID:
// a second write of the same ID replaces the first. results[i] belongs to docs[i].
func (r *Repo) WriteBatch(ctx context.Context, docs []business.Document) ([]batch.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]batch.Result, len(docs))
	items := make([]db.JSONSetItem, 0, len(docs))
	pos := make([]int, 0, len(docs))
	for i := range docs {
		data, err := json.Marshal(buildStoredDoc(&docs[i], r.analyzer))
		if err != nil {
			results[i] = batch.NewError(docs[i].ID,
				fmt.Errorf("marshal %s: %w: %w", docs[i].ID, domain.ErrInvalidDocument, err))
			continue
		}
		items = append(items, db.JSONSetItem{Key: r.Key(docs[i].ID), Path: "$", Data: data})
		pos = append(pos, i)
	}
	if len(items) == 0 {
		return results, nil
	}

	errs := r.store.JSONSetMulti(ctx, items)
	for j, i := range pos {
		var err error
		if j < len(errs) {
			err = errs[j]
		}
		if err != nil {
			results[i] = batch.NewError(docs[i].ID, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err))
			continue
		}
		results[i] = batch.NewOK(docs[i].ID)
	}
	return results, nil
}

// Get returns the stored document with its embedding and indexing time.
func (r *Repo) Get(ctx context.Context, id string) (business.Document, error) {
	key := r.Key(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return business.Document{}, domain.ErrDocumentNotFound
		}
		return business.Document{}, fmt.Errorf("get %s: %w: %w", key, domain.ErrBackendUnavailable, err)
	}
	return parseStored(raw)
}

// WaitIndexed blocks until the index has caught up with every write so far,
// so a search issued afterwards sees them.
func (r *Repo) WaitIndexed(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		info, err := r.store.IndexInfo(ctx, r.indexName)
		switch {
		case errors.Is(err, db.ErrIndexNotFound):
			return fmt.Errorf("index %s: %w", r.indexName, domain.ErrIndexNotFound)
		case err != nil && ctx.Err() == nil:
			return fmt.Errorf("index %s info: %w: %w", r.indexName, domain.ErrBackendUnavailable, err)
		case err == nil && info.Ready():
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for index %s: %w", r.indexName, ctx.Err())
		case <-ticker.C:
		}
	}
}

// parseStored decodes a JSON.GET "$" reply, which wraps the document in an array.
func parseStored(raw []byte) (business.Document, error) {
	var docs []storedDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return business.Document{}, fmt.Errorf("decode stored document: %w", err)
	}
	if len(docs) == 0 {
		return business.Document{}, domain.ErrDocumentNotFound
	}
	s := docs[0]
	d, err := fromDTO(&s.Doc)
	if err != nil {
		return business.Document{}, err
	}
	d.Embedding = s.Embedding
	if s.IndexedAt > 0 {
		d.IndexedAt = time.Unix(s.IndexedAt, 0).UTC()
	}
	return d, nil
}
