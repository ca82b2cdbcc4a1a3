package bizdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/bizdex/internal/repository/dataset"
	indexuc "github.com/kailas-cloud/bizdex/internal/usecase/index"
)

// Provision creates the index. PolicyRecreate drops an existing index with its
// documents; PolicySkip leaves it untouched and reports AlreadyExisted.
func (c *Client) Provision(ctx context.Context, policy Policy) (res ProvisionResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("provision", start, err) }()

	p, err := indexuc.ParsePolicy(string(policy))
	if err != nil {
		return ProvisionResult{}, fmt.Errorf("provision: %w", err)
	}
	out, err := c.indexSvc.Provision(ctx, p)
	res = ProvisionResult{
		Index:          out.Index,
		Created:        out.Created,
		AlreadyExisted: out.AlreadyExisted,
		Recreated:      out.Recreated,
	}
	if err != nil {
		return res, fmt.Errorf("provision: %w", err)
	}
	return res, nil
}

// Info returns the document count and indexing state.
func (c *Client) Info(ctx context.Context) (info IndexInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("info", start, err) }()

	stats, err := c.indexSvc.Describe(ctx)
	if err != nil {
		return IndexInfo{}, fmt.Errorf("info: %w", err)
	}
	return IndexInfo{
		Name:           stats.Name,
		Documents:      stats.NumDocs,
		PercentIndexed: stats.PercentIndexed,
		Ready:          stats.Ready(),
	}, nil
}

// Index normalizes, embeds and writes records. Records that fail
// normalization are listed in the report and skipped; the call returns once
// the written documents are searchable.
func (c *Client) Index(ctx context.Context, records []Record) (rep IndexReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index", start, err) }()

	docs, rejected := dataset.Normalize(records)
	for _, r := range rejected {
		rep.Rejected = append(rep.Rejected, RejectedRecord{Position: r.Position - 1, Err: r.Err})
	}
	if len(docs) == 0 {
		return rep, nil
	}

	run, err := c.indexerSvc.Run(ctx, docs)
	rep.RunID = run.RunID
	rep.Succeeded = run.Succeeded
	rep.Failed = run.Failed
	rep.Duration = run.Duration
	if err != nil {
		return rep, fmt.Errorf("index: %w", err)
	}
	if run.Succeeded == 0 && run.FirstErr != nil {
		return rep, fmt.Errorf("index: %w", run.FirstErr)
	}
	return rep, nil
}

// Get fetches one establishment by ID, without its embedding.
func (c *Client) Get(ctx context.Context, id string) (doc Document, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get", start, err) }()

	doc, err = c.searchSvc.Get(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}
