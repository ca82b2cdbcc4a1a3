package chi

import (
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/bizdex/internal/domain/business"
	"github.com/kailas-cloud/bizdex/internal/domain/search/filter"
	"github.com/kailas-cloud/bizdex/internal/domain/search/mode"
	"github.com/kailas-cloud/bizdex/internal/domain/search/request"
	"github.com/kailas-cloud/bizdex/internal/domain/search/result"
)

// errorCode is the machine-readable error class in ErrorResponse.
type errorCode string

const (
	codeBadRequest         errorCode = "bad_request"
	codeValidationFailed   errorCode = "validation_failed"
	codeUnauthorized       errorCode = "unauthorized"
	codeNotFound           errorCode = "not_found"
	codeDocumentNotFound   errorCode = "document_not_found"
	codeIndexNotFound      errorCode = "index_not_found"
	codeBackendUnavailable errorCode = "backend_unavailable"
	codeEmbeddingProvider  errorCode = "embedding_provider_error"
	codeMethodNotAllowed   errorCode = "method_not_allowed"
	codeInternalError      errorCode = "internal_error"
	codeVectorDimMismatch  errorCode = "vector_dim_mismatch"
	codeEmbeddingRejected  errorCode = "embedding_rejected"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type searchRequest struct {
	Text         string       `json:"text"`
	Lat          *float64     `json:"lat,omitempty"`
	Lon          *float64     `json:"lon,omitempty"`
	RadiusKm     *float64     `json:"radius_km,omitempty"`
	Semantic     bool         `json:"semantic"`
	SemanticOnly bool         `json:"semantic_only"`
	Size         int          `json:"size"`
	Filters      *filtersJSON `json:"filters,omitempty"`
}

type filtersJSON struct {
	Must    []conditionJSON `json:"must,omitempty"`
	MustNot []conditionJSON `json:"must_not,omitempty"`
}

type conditionJSON struct {
	Key   string     `json:"key"`
	Match *string    `json:"match,omitempty"`
	Range *rangeJSON `json:"range,omitempty"`
}

type rangeJSON struct {
	GT  *float64 `json:"gt,omitempty"`
	GTE *float64 `json:"gte,omitempty"`
	LT  *float64 `json:"lt,omitempty"`
	LTE *float64 `json:"lte,omitempty"`
}

type searchResponse struct {
	Total    int              `json:"total"`
	Plan     string           `json:"plan"`
	Degraded bool             `json:"degraded"`
	Items    []searchItemJSON `json:"items"`
}

type searchItemJSON struct {
	Document   documentJSON `json:"document"`
	Score      float64      `json:"score"`
	DistanceKm *float64     `json:"distance_km,omitempty"`
}

type documentJSON struct {
	ID                  string        `json:"id"`
	TaxID               string        `json:"tax_id,omitempty"`
	LegalName           string        `json:"legal_name"`
	TradeName           string        `json:"trade_name,omitempty"`
	ActivityCode        string        `json:"activity_code,omitempty"`
	ActivitySection     string        `json:"activity_section,omitempty"`
	ActivityDescription string        `json:"activity_description,omitempty"`
	Description         string        `json:"description,omitempty"`
	Status              string        `json:"status,omitempty"`
	Size                string        `json:"size,omitempty"`
	LegalNature         string        `json:"legal_nature,omitempty"`
	Capital             float64       `json:"capital"`
	FoundedAt           string        `json:"founded_at,omitempty"`
	Address             addressJSON   `json:"address"`
	Location            *locationJSON `json:"location,omitempty"`
	IndexedAt           *time.Time    `json:"indexed_at,omitempty"`
}

type addressJSON struct {
	Street     string `json:"street,omitempty"`
	Number     string `json:"number,omitempty"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

type locationJSON struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type healthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Documents *int              `json:"documents,omitempty"`
}

// toRequest validates the body into a search request.
// lat, lon and radius_km must be given together.
func (b *searchRequest) toRequest() (request.Request, error) {
	var geoQuery *request.GeoQuery
	switch {
	case b.Lat == nil && b.Lon == nil && b.RadiusKm == nil:
	case b.Lat != nil && b.Lon != nil && b.RadiusKm != nil:
		geoQuery = &request.GeoQuery{Latitude: *b.Lat, Longitude: *b.Lon, RadiusKm: *b.RadiusKm}
	default:
		return request.Request{}, errors.New("lat, lon and radius_km must be given together")
	}

	filters, err := b.Filters.toExpression()
	if err != nil {
		return request.Request{}, fmt.Errorf("parse filters: %w", err)
	}

	r, err := request.New(b.Text, mode.FromFlags(b.Semantic, b.SemanticOnly), geoQuery, b.Size, filters)
	if err != nil {
		return request.Request{}, fmt.Errorf("build search request: %w", err)
	}
	return r, nil
}

func (f *filtersJSON) toExpression() (filter.Expression, error) {
	if f == nil {
		return filter.Expression{}, nil
	}
	must, err := conditionsFromJSON(f.Must)
	if err != nil {
		return filter.Expression{}, err
	}
	mustNot, err := conditionsFromJSON(f.MustNot)
	if err != nil {
		return filter.Expression{}, err
	}
	expr, err := filter.NewExpression(must, mustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("new expression: %w", err)
	}
	return expr, nil
}

func conditionsFromJSON(cs []conditionJSON) ([]filter.Condition, error) {
	out := make([]filter.Condition, 0, len(cs))
	for _, c := range cs {
		cond, err := c.toCondition()
		if err != nil {
			return nil, err
		}
		out = append(out, cond)
	}
	return out, nil
}

func (c conditionJSON) toCondition() (filter.Condition, error) {
	switch {
	case c.Match != nil && c.Range != nil:
		return filter.Condition{},
			fmt.Errorf("filter condition for %q must have match or range, not both", c.Key)
	case c.Match != nil:
		cond, err := filter.NewMatch(c.Key, *c.Match)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("match filter: %w", err)
		}
		return cond, nil
	case c.Range != nil:
		rf, err := filter.NewRangeFilter(c.Range.GT, c.Range.GTE, c.Range.LT, c.Range.LTE)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("range filter: %w", err)
		}
		cond, err := filter.NewRange(c.Key, rf)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("range condition: %w", err)
		}
		return cond, nil
	default:
		return filter.Condition{}, errors.New("filter condition must have either match or range")
	}
}

func pageToJSON(p *result.Page) searchResponse {
	items := make([]searchItemJSON, len(p.Items))
	for i := range p.Items {
		r := &p.Items[i]
		item := searchItemJSON{Document: documentToJSON(r.Document()), Score: r.Score()}
		if d, ok := r.Distance(); ok {
			item.DistanceKm = &d
		}
		items[i] = item
	}
	return searchResponse{Total: p.Total, Plan: p.Plan, Degraded: p.Degraded, Items: items}
}

func documentToJSON(d business.Document) documentJSON {
	out := documentJSON{
		ID:                  d.ID,
		TaxID:               d.TaxID,
		LegalName:           d.LegalName,
		TradeName:           d.TradeName,
		ActivityCode:        d.ActivityCode,
		ActivitySection:     d.ActivitySection,
		ActivityDescription: d.ActivityDescription,
		Description:         d.Description,
		Status:              string(d.Status),
		Size:                string(d.Size),
		LegalNature:         d.LegalNature,
		Capital:             d.Capital,
		Address: addressJSON{
			Street:     d.Address.Street,
			Number:     d.Address.Number,
			Complement: d.Address.Complement,
			District:   d.Address.District,
			City:       d.Address.City,
			State:      d.Address.State,
			PostalCode: d.Address.PostalCode,
		},
	}
	if !d.FoundedAt.IsZero() {
		out.FoundedAt = d.FoundedAt.Format(business.DateLayout)
	}
	if d.Location != nil {
		out.Location = &locationJSON{Lat: d.Location.Lat(), Lon: d.Location.Lon()}
	}
	if !d.IndexedAt.IsZero() {
		t := d.IndexedAt.UTC()
		out.IndexedAt = &t
	}
	return out
}
