package business

import "strings"

// Index attribute names shared by the schema, the query compiler and the store.
const (
	FieldID                  = "id"
	FieldTaxID               = "tax_id"
	FieldActivityCode        = "activity_code"
	FieldActivitySection     = "activity_section"
	FieldStatus              = "status"
	FieldSize                = "size"
	FieldLegalNature         = "legal_nature"
	FieldCity                = "city"
	FieldState               = "state"
	FieldCapital             = "capital"
	FieldFoundedAt           = "founded_at"
	FieldIndexedAt           = "indexed_at"
	FieldLegalName           = "legal_name"
	FieldTradeName           = "trade_name"
	FieldActivityDescription = "activity_description"
	FieldDescription         = "description"
	FieldSearchText          = "search_text"
	FieldKeywords            = "keywords"
	FieldLocation            = "location"
	FieldGeoVector           = "geo_vector"
	FieldEmbedding           = "embedding"
)

// FilterableFields are the exact-match attributes a search request may filter on.
var FilterableFields = map[string]bool{
	FieldTaxID:           true,
	FieldActivityCode:    true,
	FieldActivitySection: true,
	FieldStatus:          true,
	FieldSize:            true,
	FieldLegalNature:     true,
	FieldCity:            true,
	FieldState:           true,
	FieldCapital:         true,
	FieldFoundedAt:       true,
}

// CanonicalValue maps a user-supplied exact-match value to its stored form:
// registry labels for status ("ATIVA") become canonical values, size and state
// are upper-cased. Other fields pass through trimmed.
func CanonicalValue(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	switch field {
	case FieldStatus:
		s, err := ParseStatus(v)
		return string(s), err
	case FieldSize:
		s, err := ParseSize(v)
		return string(s), err
	case FieldState:
		return strings.ToUpper(v), nil
	default:
		return v, nil
	}
}
