package bizdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/bizdex/internal/domain/business"
	"github.com/kailas-cloud/bizdex/internal/domain/search/filter"
	"github.com/kailas-cloud/bizdex/internal/domain/search/mode"
	"github.com/kailas-cloud/bizdex/internal/domain/search/request"
	"github.com/kailas-cloud/bizdex/internal/domain/search/result"
)

// Search runs one query. Semantic queries degrade to lexical search when the
// embedder is missing or failing; Results.Degraded reports it.
func (c *Client) Search(ctx context.Context, q Query) (res Results, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	req, err := toRequest(q)
	if err != nil {
		return Results{}, fmt.Errorf("search: %w", err)
	}
	page, err := c.searchSvc.Search(ctx, &req)
	if err != nil {
		return Results{}, fmt.Errorf("search: %w", err)
	}
	return fromPage(page), nil
}

func toRequest(q Query) (request.Request, error) {
	var geoQuery *request.GeoQuery
	if q.Near != nil {
		geoQuery = &request.GeoQuery{Latitude: q.Near.Lat, Longitude: q.Near.Lon, RadiusKm: q.Near.RadiusKm}
	}
	filters, err := toFilters(q.Filters)
	if err != nil {
		return request.Request{}, err
	}
	r, err := request.New(q.Text, mode.FromFlags(q.Semantic, q.SemanticOnly), geoQuery, q.Size, filters)
	if err != nil {
		return request.Request{}, fmt.Errorf("build request: %w", err)
	}
	return r, nil
}

func toFilters(f Filters) (filter.Expression, error) {
	var must []filter.Condition
	for _, kv := range []struct{ field, value string }{
		{business.FieldStatus, f.Status},
		{business.FieldSize, f.CompanySize},
		{business.FieldState, f.State},
		{business.FieldCity, f.City},
	} {
		if kv.value == "" {
			continue
		}
		v, err := business.CanonicalValue(kv.field, kv.value)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("filter %s: %w", kv.field, err)
		}
		cond, err := filter.NewMatch(kv.field, v)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("filter %s: %w", kv.field, err)
		}
		must = append(must, cond)
	}
	expr, err := filter.NewExpression(must, nil)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("filters: %w", err)
	}
	return expr, nil
}

func fromPage(page result.Page) Results {
	hits := make([]Hit, len(page.Items))
	for i := range page.Items {
		item := &page.Items[i]
		hits[i] = Hit{Document: item.Document(), Score: item.Score()}
		if d, ok := item.Distance(); ok {
			hits[i].DistanceKm = &d
		}
	}
	return Results{Hits: hits, Total: page.Total, Plan: page.Plan, Degraded: page.Degraded}
}
