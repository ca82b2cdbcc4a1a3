// Package bizdex provides an embeddable Go client for hybrid search over
// Brazilian business-registry establishments, backed by Redis 8+ (Query Engine
// and JSON).
//
// The client provisions the index, indexes raw registry records (embedding
// their search text through an OpenAI-compatible provider) and answers
// lexical, semantic, geographic and combined queries.
//
//	client, _ := bizdex.New(ctx,
//	    bizdex.WithRedis("localhost:6379", ""),
//	    bizdex.WithOpenAI(bizdex.OpenAIConfig{APIKey: key}),
//	)
//	defer client.Close()
//
//	_, _ = client.Provision(ctx, bizdex.PolicySkip)
//	_, _ = client.Index(ctx, records)
//	res, _ := client.Search(ctx, bizdex.Query{
//	    Text:     "areia cascalho construção",
//	    Semantic: true,
//	    Near:     &bizdex.Near{Lat: -23.5505, Lon: -46.6333, RadiusKm: 50},
//	})
//
// Without an embedder, semantic queries degrade to lexical search and
// Index fails with ErrEmbeddingUnavailable.
package bizdex
