package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/bizdex/internal/domain/business"
	"github.com/kailas-cloud/bizdex/internal/domain/search/filter"
	"github.com/kailas-cloud/bizdex/internal/domain/search/mode"
	"github.com/kailas-cloud/bizdex/internal/domain/search/request"
	"github.com/kailas-cloud/bizdex/internal/domain/search/result"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search establishments by text, meaning and location",
	Long: `Search runs one query against the index. Free text is matched lexically
(Portuguese analysis, fuzzy on longer terms); --semantic adds a vector search
fused by reciprocal rank; --lat/--lon/--radius restrict results to a circle
and, without text, order them by distance.

Examples:
  bizdex search --text "granito mármore pedra" --size 3
  bizdex search --text "materiais para construção de estradas" --semantic-only --size 3
  bizdex search --lat -23.5505 --lon -46.6333 --radius 30
  bizdex search --text "areia cascalho construção" --semantic --lat -23.5505 --lon -46.6333 --radius 50`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		req, err := searchRequestFromFlags(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		a, err := newApp(ctx, &cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		page, err := a.search.Search(ctx, &req)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printPageJSON(cmd.OutOrStdout(), page)
		}
		printPage(cmd.OutOrStdout(), page)
		return nil
	},
}

func searchRequestFromFlags(cmd *cobra.Command) (request.Request, error) {
	f := cmd.Flags()
	text, _ := f.GetString("text")
	semantic, _ := f.GetBool("semantic")
	semanticOnly, _ := f.GetBool("semantic-only")
	size, _ := f.GetInt("size")

	var geoQuery *request.GeoQuery
	if f.Changed("lat") {
		lat, _ := f.GetFloat64("lat")
		lon, _ := f.GetFloat64("lon")
		radius, _ := f.GetFloat64("radius")
		geoQuery = &request.GeoQuery{Latitude: lat, Longitude: lon, RadiusKm: radius}
	}

	var must []filter.Condition
	for _, fl := range []struct{ flag, field string }{
		{"status", business.FieldStatus},
		{"state", business.FieldState},
	} {
		v, _ := f.GetString(fl.flag)
		if v == "" {
			continue
		}
		v, err := business.CanonicalValue(fl.field, v)
		if err != nil {
			return request.Request{}, fmt.Errorf("--%s: %w", fl.flag, err)
		}
		c, err := filter.NewMatch(fl.field, v)
		if err != nil {
			return request.Request{}, fmt.Errorf("--%s: %w", fl.flag, err)
		}
		must = append(must, c)
	}
	filters, err := filter.NewExpression(must, nil)
	if err != nil {
		return request.Request{}, fmt.Errorf("filters: %w", err)
	}

	req, err := request.New(text, mode.FromFlags(semantic, semanticOnly), geoQuery, size, filters)
	if err != nil {
		return request.Request{}, fmt.Errorf("invalid search: %w", err)
	}
	return req, nil
}

func printPage(w io.Writer, page result.Page) {
	fmt.Fprintf(w, "%d of %d results (plan %s", len(page.Items), page.Total, page.Plan)
	if page.Degraded {
		fmt.Fprint(w, ", semantic unavailable")
	}
	fmt.Fprintln(w, ")")

	for i := range page.Items {
		item := &page.Items[i]
		doc := item.Document()

		name := doc.LegalName
		if doc.TradeName != "" {
			name += " (" + doc.TradeName + ")"
		}
		fmt.Fprintf(w, "%2d. %s  score=%.4f", i+1, name, item.Score())
		if d, ok := item.Distance(); ok {
			fmt.Fprintf(w, "  %.2f km", d)
		}
		fmt.Fprintln(w)

		place := strings.Trim(doc.Address.City+"/"+doc.Address.State, "/")
		fmt.Fprintf(w, "    %s  %s  %s\n", doc.ID, place, doc.ActivityDescription)
	}
}

type pageItemJSON struct {
	ID         string   `json:"id"`
	LegalName  string   `json:"razao_social"`
	TradeName  string   `json:"nome_fantasia,omitempty"`
	City       string   `json:"cidade,omitempty"`
	State      string   `json:"uf,omitempty"`
	Activity   string   `json:"cnae_descricao,omitempty"`
	Score      float64  `json:"score"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

func printPageJSON(w io.Writer, page result.Page) error {
	out := struct {
		Total    int            `json:"total"`
		Plan     string         `json:"plan"`
		Degraded bool           `json:"degraded"`
		Items    []pageItemJSON `json:"items"`
	}{Total: page.Total, Plan: page.Plan, Degraded: page.Degraded, Items: make([]pageItemJSON, 0, len(page.Items))}

	for i := range page.Items {
		item := &page.Items[i]
		doc := item.Document()
		j := pageItemJSON{
			ID:        doc.ID,
			LegalName: doc.LegalName,
			TradeName: doc.TradeName,
			City:      doc.Address.City,
			State:     doc.Address.State,
			Activity:  doc.ActivityDescription,
			Score:     item.Score(),
		}
		if d, ok := item.Distance(); ok {
			j.DistanceKm = &d
		}
		out.Items = append(out.Items, j)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}

func registerSearchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("text", "", "free-text query")
	f.Float64("lat", 0, "latitude of the search center")
	f.Float64("lon", 0, "longitude of the search center")
	f.Float64("radius", 0, "search radius in km")
	f.Bool("semantic", false, "add vector search, fused with the lexical results")
	f.Bool("semantic-only", false, "vector search without the lexical clause")
	f.Int("size", request.DefaultSize, fmt.Sprintf("maximum number of results (max %d)", request.MaxSize))
	f.String("status", "", "exact match on situacao_cadastral: ATIVA, BAIXADA, SUSPENSA")
	f.String("state", "", "exact match on UF (e.g. SP)")
	f.Bool("json", false, "print results as JSON")
	cmd.MarkFlagsRequiredTogether("lat", "lon", "radius")
}

func init() {
	registerSearchFlags(searchCmd)
	rootCmd.AddCommand(searchCmd)
}
