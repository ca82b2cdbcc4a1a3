package document

import (
	"github.com/kailas-cloud/bizdex/internal/db"
	"github.com/kailas-cloud/bizdex/internal/domain/analysis"
	"github.com/kailas-cloud/bizdex/internal/domain/business"
	"github.com/kailas-cloud/bizdex/internal/domain/geo"
)

// SchemaConfig holds the tunable parts of the index schema.
type SchemaConfig struct {
	IndexName  string
	KeyPrefix  string
	Dimensions int
	// HNSW breadth: M and EF_CONSTRUCTION at build time, EF_RUNTIME at query time.
	HNSWM           int
	HNSWEFConstruct int
	HNSWEFRuntime   int
}

// Schema declares the index over the stored layout: exact-match tags, analyzed
// text, numerics, the geo point, the embedding and the ECEF geo vector.
func Schema(cfg SchemaConfig, a *analysis.Analyzer) (*db.IndexDefinition, error) {
	return db.NewIndex(cfg.IndexName).
		Prefix(cfg.KeyPrefix).
		Language(analysis.Language).
		Stopwords(a.Stopwords()...).
		Tag("$.doc.id", business.FieldID).
		Tag("$.doc.cnpj", business.FieldTaxID).
		Tag("$.doc.cnae_codigo", business.FieldActivityCode).
		Tag("$.doc.cnae_secao", business.FieldActivitySection).
		Tag("$.doc.situacao_cadastral", business.FieldStatus).
		Tag("$.doc.porte", business.FieldSize).
		TagWithOpts("$.doc.natureza_juridica", business.FieldLegalNature, "|", false).
		TagWithOpts("$.doc.endereco.cidade", business.FieldCity, "|", false).
		Tag("$.doc.endereco.uf", business.FieldState).
		Numeric("$.doc.capital_social", business.FieldCapital).
		SortableNumeric("$.founded_at", business.FieldFoundedAt).
		Numeric("$.indexed_at", business.FieldIndexedAt).
		Text("$.analyzed.razao_social", business.FieldLegalName, 0).
		Text("$.analyzed.nome_fantasia", business.FieldTradeName, 0).
		Text("$.analyzed.cnae_descricao", business.FieldActivityDescription, 0).
		Text("$.analyzed.descricao_atividade", business.FieldDescription, 0).
		Text("$.analyzed.search_text", business.FieldSearchText, 0).
		TextNoStem("$.analyzed.keywords", business.FieldKeywords).
		Geo("$.location", business.FieldLocation).
		VectorHNSW("$.embedding", business.FieldEmbedding, cfg.Dimensions, db.DistanceCosine,
			cfg.HNSWM, cfg.HNSWEFConstruct, cfg.HNSWEFRuntime).
		VectorFlat("$.geo_vector", business.FieldGeoVector, geo.VectorDim, db.DistanceL2).
		Build()
}
