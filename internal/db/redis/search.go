package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/bizdex/internal/db"
	"github.com/kailas-cloud/bizdex/internal/domain/search/filter"
)

// vectorScoreField is the alias KNN distances are returned under.
const vectorScoreField = "__vector_score"

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Field == "" {
		return nil, fmt.Errorf("vector field is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(buildKNNArgs(q)...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKNNResult(raw, q.RawScores)
}

// SearchBM25 runs a weighted full-text search via FT.SEARCH.
func (s *Store) SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Terms) == 0 {
		return nil, fmt.Errorf("at least one term is required")
	}
	if len(q.Fields) == 0 {
		return nil, fmt.Errorf("at least one field is required")
	}
	if q.TopK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(buildTextArgs(q)...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseBM25Result(raw)
}

func buildKNNArgs(q *db.KNNQuery) []string {
	knnPart := fmt.Sprintf("[KNN %d @%s $BLOB", q.K, q.Field)
	if q.EFRuntime > 0 {
		knnPart += fmt.Sprintf(" EF_RUNTIME %d", q.EFRuntime)
	}
	knnPart += " AS " + vectorScoreField + "]"

	pre := buildPrefilter(q.Filters, q.Geo)
	if pre == "" {
		pre = "*"
	} else {
		pre = "(" + pre + ")"
	}

	args := []string{q.IndexName, pre + "=>" + knnPart}

	returns := append([]db.ReturnField{}, q.ReturnFields...)
	if len(returns) > 0 {
		returns = append(returns, db.ReturnField{Path: vectorScoreField})
	}
	args = append(args, buildReturn(returns)...)

	args = append(args,
		"SORTBY", vectorScoreField, "ASC",
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	)
	return args
}

func buildTextArgs(q *db.TextQuery) []string {
	queryStr := "(" + buildTextClause(q) + ")"
	if pre := buildPrefilter(q.Filters, q.Geo); pre != "" {
		queryStr = pre + " " + queryStr
	}

	args := []string{q.IndexName, queryStr}
	args = append(args, buildReturn(q.ReturnFields)...)

	scorer := q.Scorer
	if scorer == "" {
		scorer = db.ScorerBM25
	}
	args = append(args,
		"SCORER", string(scorer),
		"WITHSCORES",
		"LIMIT", "0", strconv.Itoa(q.TopK),
		"DIALECT", "2",
	)
	return args
}

// buildTextClause ORs one weighted group per field; any term in any field matches.
func buildTextClause(q *db.TextQuery) string {
	terms := make([]string, 0, len(q.Terms))
	var keywords []string
	for _, t := range q.Terms {
		term := renderTerm(t)
		if term == "" {
			continue
		}
		terms = append(terms, term)
		if t.Keyword {
			keywords = append(keywords, term)
		}
	}
	group := strings.Join(terms, "|")

	parts := make([]string, 0, len(q.Fields)+1)
	for _, f := range q.Fields {
		p := fmt.Sprintf("(@%s:(%s))", f.Name, group)
		if f.Weight > 0 && f.Weight != 1 {
			p += "=>{$weight: " + strconv.FormatFloat(f.Weight, 'f', -1, 64) + "}"
		}
		parts = append(parts, p)
	}
	if q.KeywordField != "" && len(keywords) > 0 {
		parts = append(parts, fmt.Sprintf("(@%s:(%s))", q.KeywordField, strings.Join(keywords, "|")))
	}
	return strings.Join(parts, " | ")
}

// renderTerm escapes t and wraps it in one % per tolerated edit (max 3).
func renderTerm(t db.Term) string {
	text := escapeQuery(strings.TrimSpace(t.Text))
	if text == "" {
		return ""
	}
	d := t.Distance
	if t.Keyword || d <= 0 {
		return text
	}
	d = min(d, 3)
	pad := strings.Repeat("%", d)
	return pad + text + pad
}

func buildReturn(fields []db.ReturnField) []string {
	if len(fields) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(fields)*3)
	for _, f := range fields {
		tokens = append(tokens, f.Path)
		if f.As != "" {
			tokens = append(tokens, "AS", f.As)
		}
	}
	return append([]string{"RETURN", strconv.Itoa(len(tokens))}, tokens...)
}

// --- Result parsing ---

func parseKNNResult(raw []rueidis.RedisMessage, rawScores bool) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entry := db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		}

		if scoreStr, ok := entry.Fields[vectorScoreField]; ok {
			if s, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				if rawScores {
					entry.Score = s
				} else {
					entry.Score = 1.0 - s // cosine distance in [0,2] to similarity in [-1,1]
				}
			}
			delete(entry.Fields, vectorScoreField)
		}

		entries = append(entries, entry)
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseBM25Result(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/3)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Score:  score,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Filter building ---

// buildPrefilter joins exact-match filters and the geo radius into one intersection.
func buildPrefilter(expr filter.Expression, geo *db.GeoFilter) string {
	var parts []string
	if f := buildFilter(expr); f != "" {
		parts = append(parts, f)
	}
	if geo != nil {
		parts = append(parts, buildGeoFilter(geo))
	}
	return strings.Join(parts, " ")
}

// buildFilter translates filter.Expression into an FT.SEARCH pre-filter query string.
func buildFilter(expr filter.Expression) string {
	if expr.IsEmpty() {
		return ""
	}

	parts := make([]string, 0, len(expr.Must())+len(expr.MustNot()))
	for _, cond := range expr.Must() {
		parts = append(parts, buildCondition(cond))
	}
	for _, cond := range expr.MustNot() {
		parts = append(parts, "-"+buildCondition(cond))
	}

	return strings.Join(parts, " ")
}

func buildCondition(cond filter.Condition) string {
	if cond.IsMatch() {
		return buildTagFilter(cond.Key(), cond.Match())
	}
	if cond.IsRange() {
		return buildNumericFilter(cond.Key(), *cond.Range())
	}
	return ""
}

func buildTagFilter(key, value string) string {
	escaped := tagEscaper.Replace(value)
	return fmt.Sprintf("@%s:{%s}", key, escaped)
}

func buildNumericFilter(key string, r filter.Range) string {
	minBound := "-inf"
	maxBound := "+inf"

	if r.GT() != nil {
		minBound = fmt.Sprintf("(%g", *r.GT())
	} else if r.GTE() != nil {
		minBound = fmt.Sprintf("%g", *r.GTE())
	}

	if r.LT() != nil {
		maxBound = fmt.Sprintf("(%g", *r.LT())
	} else if r.LTE() != nil {
		maxBound = fmt.Sprintf("%g", *r.LTE())
	}

	return fmt.Sprintf("@%s:[%s %s]", key, minBound, maxBound)
}

func buildGeoFilter(g *db.GeoFilter) string {
	unit := g.Unit
	if unit == "" {
		unit = db.UnitKilometers
	}
	return fmt.Sprintf("@%s:[%s %s %s %s]", g.Field,
		strconv.FormatFloat(g.Lon, 'f', -1, 64),
		strconv.FormatFloat(g.Lat, 'f', -1, 64),
		strconv.FormatFloat(g.Radius, 'f', -1, 64),
		unit,
	)
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"/", "\\/",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
	`.`, `\.`,
	`,`, `\,`,
	` `, `\ `,
)

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
